package cli

import (
	"fmt"

	"github.com/counterfact/veridex/internal/source"
	"github.com/spf13/cobra"
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect the source profile registry",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered source profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.SourcesFile == "" {
			fmt.Println("No sources file configured; unknown sources fall back to category priors.")
			return nil
		}

		registry, err := source.LoadRegistry(cfg.SourcesFile)
		if err != nil {
			return err
		}

		snapshot := registry.Snapshot()
		fmt.Printf("%-30s %-14s %-8s %s\n", "SOURCE", "CATEGORY", "PRIOR", "UPDATED")
		for _, profile := range snapshot.Profiles() {
			fmt.Printf("%-30s %-14s %-8.2f %s\n",
				profile.SourceID, profile.Category, profile.Accuracy,
				profile.UpdatedAt.Format("2006-01-02"))
		}
		fmt.Printf("\n%d sources (snapshot v%d)\n", snapshot.Len(), snapshot.Version)
		return nil
	},
}

var sourcesShowCmd = &cobra.Command{
	Use:   "show <source-id>",
	Short: "Show one source profile, or its category fallback",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		registry := source.NewRegistry()
		if cfg.SourcesFile != "" {
			registry, err = source.LoadRegistry(cfg.SourcesFile)
			if err != nil {
				return err
			}
		}

		snapshot := registry.Snapshot()
		if profile, ok := snapshot.Lookup(args[0]); ok {
			fmt.Printf("Source:   %s\n", profile.SourceID)
			fmt.Printf("Category: %s\n", profile.Category)
			fmt.Printf("Prior:    %.2f\n", profile.Accuracy)
			fmt.Printf("Updated:  %s\n", profile.UpdatedAt.Format("2006-01-02"))
			return nil
		}

		fmt.Printf("Source %q not registered.\n", args[0])
		fmt.Printf("Lookups resolve via category prior: unknown -> %.2f\n",
			source.CategoryPrior(source.CategoryUnknown))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesShowCmd)
}
