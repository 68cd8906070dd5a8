package worker

import (
	"context"
	"sync"

	"github.com/counterfact/veridex/internal/model"
)

// Runner verifies a single claim. Satisfied by verify.Verifier.
type Runner interface {
	Verify(ctx context.Context, claim model.Claim, cfg model.VerifyConfig) (*model.Report, error)
}

// Outcome pairs one claim with its verification result
type Outcome struct {
	Claim  model.Claim
	Report *model.Report
	Err    error
}

// Pool runs claim verifications over a fixed number of workers. Runs are
// fully independent, so each worker only ever writes its own outcome slot.
type Pool struct {
	runner  Runner
	cfg     model.VerifyConfig
	workers int
}

// NewPool creates a pool with at least one worker
func NewPool(runner Runner, cfg model.VerifyConfig, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{runner: runner, cfg: cfg, workers: workers}
}

// Run verifies all claims and returns outcomes in input order. Cancelling
// the context stops feeding new claims; claims never started report the
// context error.
func (p *Pool) Run(ctx context.Context, claims []model.Claim) []Outcome {
	outcomes := make([]Outcome, len(claims))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				report, err := p.runner.Verify(ctx, claims[idx], p.cfg)
				outcomes[idx] = Outcome{Claim: claims[idx], Report: report, Err: err}
			}
		}()
	}

feed:
	for i := range claims {
		select {
		case <-ctx.Done():
			// Claims not fed carry the cancellation error
			for j := i; j < len(claims); j++ {
				outcomes[j] = Outcome{Claim: claims[j], Err: ctx.Err()}
			}
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}
