package checker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/khanhnv2901/seca-scan/internal/domain/scan"
)

// Fetcher performs the single outbound request of a scan
type Fetcher interface {
	Fetch(ctx context.Context, target string) (scan.Artifact, error)
}

// Scanner sequences fetch, detectors, scoring and advice into one scan.
// It holds no per-scan state and is safe for concurrent use.
type Scanner struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// NewScanner builds a scanner. A nil logger disables scan logging.
func NewScanner(fetcher Fetcher, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{fetcher: fetcher, logger: logger}
}

// Scan fetches target once and evaluates it. Fetch failures are folded into
// the result as an Error finding; Scan never fails.
func (s *Scanner) Scan(ctx context.Context, target string) scan.Result {
	start := time.Now()

	var findings []scan.Finding
	artifact, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		s.logger.Warn("fetch_failed",
			zap.String("url", target),
			zap.Error(err),
		)
		findings = []scan.Finding{{
			Type:    scan.FindingFetchError,
			Count:   1,
			Details: []string{err.Error()},
		}}
	} else {
		findings = RunDetectors(artifact)
	}

	score := Score(findings)
	result := scan.Result{
		URL:       target,
		Findings:  findings,
		RiskScore: score,
		RiskLevel: LevelForScore(score),
		Tips:      Advise(findings),
	}

	s.logger.Debug("scan_completed",
		zap.String("url", target),
		zap.Int("findings", len(result.Findings)),
		zap.Int("risk_score", result.RiskScore),
		zap.String("risk_level", string(result.RiskLevel)),
		zap.Duration("duration", time.Since(start)),
	)
	return result
}
