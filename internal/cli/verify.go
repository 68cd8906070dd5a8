package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/counterfact/veridex/internal/model"
	"github.com/counterfact/veridex/internal/worker"
	"github.com/spf13/cobra"
)

var (
	outJSON          string
	claimID          string
	claimType        string
	claimEntities    []string
	relevanceFloor   float64
	coverageWeight   float64
	diversityCap     int
	presentationSize int
	backendTimeout   time.Duration
	overallDeadline  time.Duration
	noCache          bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <claim text>",
	Short: "Verify a single claim against all configured evidence backends",
	Long: `Verify dispatches the claim to every configured backend, scores the
returned evidence for relevance and credibility, and resolves an
aggregate verdict: supported, refuted, disputed, or insufficient
evidence.

Example:
  veridex verify "Country X deployed biological weapons in region Y"
  veridex verify "..." --json report.json --floor 0.4 --top 5`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&outJSON, "json", "", "write full JSON report to this path (- for stdout)")
	verifyCmd.Flags().StringVar(&claimID, "claim-id", "", "claim identifier (derived from text when empty)")
	verifyCmd.Flags().StringVar(&claimType, "type", "factual", "claim type (factual, quantitative, causal)")
	verifyCmd.Flags().StringSliceVar(&claimEntities, "entity", nil, "entity associated with the claim (repeatable)")

	verifyCmd.Flags().Float64Var(&relevanceFloor, "floor", 0.35, "relevance floor; evidence below never reaches output")
	verifyCmd.Flags().Float64Var(&coverageWeight, "coverage", 0.5, "minimum cumulative evidence weight for a verdict")
	verifyCmd.Flags().IntVar(&diversityCap, "diversity", 2, "max evidence items per source in the presented set")
	verifyCmd.Flags().IntVar(&presentationSize, "top", 10, "presented evidence size")
	verifyCmd.Flags().DurationVar(&backendTimeout, "backend-timeout", 10*time.Second, "per-backend timeout")
	verifyCmd.Flags().DurationVar(&overallDeadline, "deadline", 30*time.Second, "overall verification deadline")
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the fingerprint verdict cache")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyVerifyFlags(cmd, cfg)

	verifier, err := buildVerifier(cfg)
	if err != nil {
		return err
	}

	claim := model.Claim{
		ID:       claimID,
		Text:     args[0],
		Type:     model.ParseClaimType(claimType),
		Entities: claimEntities,
		Version:  1,
	}
	if claim.ID == "" {
		claim.ID = worker.DeriveClaimID(claim.Text)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying claim %s against %d backends\n", claim.ID, len(cfg.Backends))
	}

	report, err := verifier.Verify(context.Background(), claim, cfg.Verify)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	if verbose {
		printBackendOutcomes(report)
	}

	if outJSON != "" {
		if err := writeReportJSON(report, outJSON); err != nil {
			return err
		}
		if verbose && outJSON != "-" {
			fmt.Fprintf(os.Stderr, "Wrote JSON report: %s\n", outJSON)
		}
	}

	printSummary(report)
	return nil
}

// applyVerifyFlags overrides config values with explicitly set flags
func applyVerifyFlags(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("floor") {
		cfg.Verify.RelevanceFloor = relevanceFloor
	}
	if cmd.Flags().Changed("coverage") {
		cfg.Verify.CoverageWeight = coverageWeight
	}
	if cmd.Flags().Changed("diversity") {
		cfg.Verify.DiversityCap = diversityCap
	}
	if cmd.Flags().Changed("top") {
		cfg.Verify.PresentationSize = presentationSize
	}
	if cmd.Flags().Changed("backend-timeout") {
		cfg.Verify.PerBackendTimeout = backendTimeout
	}
	if cmd.Flags().Changed("deadline") {
		cfg.Verify.OverallDeadline = overallDeadline
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
}
