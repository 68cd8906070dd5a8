package worker

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/counterfact/veridex/internal/model"
)

// Batch verifies a whole claims file over a worker pool
type Batch struct {
	pool *Pool
}

// NewBatch creates a batch processor
func NewBatch(runner Runner, cfg model.VerifyConfig, workers int) *Batch {
	return &Batch{pool: NewPool(runner, cfg, workers)}
}

// ProcessFile reads claims from a file and verifies them concurrently
func (b *Batch) ProcessFile(ctx context.Context, path string) ([]Outcome, error) {
	claims, err := ReadClaimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	return b.pool.Run(ctx, claims), nil
}

// ReadClaimsFile parses a claims file. Each non-empty, non-comment line is
// either a JSON claim object or plain claim text; plain lines get a derived
// id and default type. Duplicate claim texts are dropped.
func ReadClaimsFile(path string) ([]model.Claim, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []model.Claim
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		claim, err := parseClaimLine(line)
		if err != nil {
			return nil, err
		}
		if seen[claim.Text] {
			continue
		}
		seen[claim.Text] = true
		claims = append(claims, claim)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return claims, nil
}

func parseClaimLine(line string) (model.Claim, error) {
	if strings.HasPrefix(line, "{") {
		var claim model.Claim
		if err := json.Unmarshal([]byte(line), &claim); err != nil {
			return model.Claim{}, fmt.Errorf("parse claim line: %w", err)
		}
		if claim.Text == "" {
			return model.Claim{}, fmt.Errorf("claim line missing text: %s", line)
		}
		if claim.ID == "" {
			claim.ID = DeriveClaimID(claim.Text)
		}
		if claim.Type == "" {
			claim.Type = model.ClaimTypeFactual
		}
		if claim.Version == 0 {
			claim.Version = 1
		}
		return claim, nil
	}

	return model.Claim{
		ID:      DeriveClaimID(line),
		Text:    line,
		Type:    model.ClaimTypeFactual,
		Version: 1,
	}, nil
}

// DeriveClaimID builds a stable id from claim text, for callers that do
// not bring their own identifiers
func DeriveClaimID(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "claim-" + hex.EncodeToString(sum[:6])
}
