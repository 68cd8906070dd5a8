package source

import "time"

// Category classifies an evidence source
type Category string

const (
	CategoryFactCheck   Category = "fact-check"
	CategoryAcademic    Category = "academic"
	CategoryTrustedNews Category = "trusted-news"
	CategoryUnknown     Category = "unknown"
)

// CategoryPrior returns the default accuracy prior for sources with no
// recorded history. Unknown sources get a deliberately low prior rather
// than failing the lookup.
func CategoryPrior(c Category) float64 {
	switch c {
	case CategoryFactCheck:
		return 0.7
	case CategoryAcademic:
		return 0.75
	case CategoryTrustedNews:
		return 0.6
	default:
		return 0.3
	}
}

// ParseCategory converts a string to a Category, defaulting to unknown
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryFactCheck:
		return CategoryFactCheck
	case CategoryAcademic:
		return CategoryAcademic
	case CategoryTrustedNews:
		return CategoryTrustedNews
	default:
		return CategoryUnknown
	}
}

// Profile holds credibility metadata for one evidence source.
// Profiles are append-only: an update creates a new snapshot entry, never
// a destructive overwrite.
type Profile struct {
	SourceID  string    `json:"source_id" yaml:"source_id"` // Canonical domain or dataset id
	Category  Category  `json:"category" yaml:"category"`
	Accuracy  float64   `json:"accuracy" yaml:"accuracy"` // Historical accuracy prior, [0,1]
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}
