package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/counterfact/veridex/internal/model"
)

// writeReportJSON writes the full report to a file, or stdout for "-"
func writeReportJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// printSummary prints a human-readable verdict summary to stdout
func printSummary(report *model.Report) {
	v := report.Verdict
	fmt.Println(strings.Repeat("═", 60))
	fmt.Printf("Claim:      %s\n", report.Claim.Text)
	fmt.Printf("Verdict:    %s\n", v.Stance)
	fmt.Printf("Confidence: %.2f\n", v.Confidence)
	if report.Partial {
		fmt.Println("Coverage:   partial (some backends did not contribute)")
	}
	fmt.Println(strings.Repeat("═", 60))

	if len(report.Evidence) == 0 {
		fmt.Println("No evidence survived relevance filtering.")
		return
	}

	fmt.Printf("Top evidence (%d of %d retained):\n", len(report.Evidence), len(report.Audit))
	for i, item := range report.Evidence {
		snippet := item.Snippet
		if len(snippet) > 100 {
			snippet = snippet[:97] + "..."
		}
		fmt.Printf("%2d. [%s] %s (cred %.2f, rel %.2f) %s\n",
			i+1, item.Stance, item.SourceID, item.Credibility, item.Relevance, snippet)
	}
}

// printBackendOutcomes reports per-backend diagnostics to stderr
func printBackendOutcomes(report *model.Report) {
	for _, outcome := range report.Backends {
		status := "ok"
		if outcome.Err != "" {
			status = outcome.Err
		}
		fmt.Fprintf(os.Stderr, "backend %-20s hits=%-3d discarded=%-2d %s (%v)\n",
			outcome.Backend, outcome.Hits, outcome.Discarded, status, outcome.Duration)
	}
}
