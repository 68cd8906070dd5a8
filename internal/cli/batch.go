package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/counterfact/veridex/internal/worker"
	"github.com/spf13/cobra"
)

var (
	batchOutDir  string
	batchWorkers int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <claims-file>",
	Short: "Verify a file of claims concurrently",
	Long: `Batch reads claims from a file (one per line, plain text or JSON
objects; # starts a comment) and verifies them over a bounded worker
pool. Each claim's full report is written to the output directory as
<claim-id>.json.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchOutDir, "out", "reports", "output directory for JSON reports")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent verifications (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	workers := cfg.Concurrency.BatchWorkers
	if batchWorkers > 0 {
		workers = batchWorkers
	}

	verifier, err := buildVerifier(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	batch := worker.NewBatch(verifier, cfg.Verify, workers)
	outcomes, err := batch.ProcessFile(context.Background(), args[0])
	if err != nil {
		return err
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", outcome.Claim.ID, outcome.Err)
			continue
		}

		path := filepath.Join(batchOutDir, outcome.Claim.ID+".json")
		data, err := json.MarshalIndent(outcome.Report, "", "  ")
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: marshal report: %v\n", outcome.Claim.ID, err)
			continue
		}
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", outcome.Claim.ID, err)
			continue
		}

		fmt.Printf("%-14s %-22s confidence %.2f  %s\n",
			outcome.Claim.ID, outcome.Report.Verdict.Stance, outcome.Report.Verdict.Confidence, path)
	}

	fmt.Printf("\n%d claims verified, %d failed\n", len(outcomes)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d claims failed", failed, len(outcomes))
	}
	return nil
}
