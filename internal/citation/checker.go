package citation

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/legalgapdb/gapcheck/internal/config"
	"github.com/legalgapdb/gapcheck/internal/model"
)

// Checker fans citation probes out over a bounded worker pool. This is the
// only component that crosses the process boundary to the network.
type Checker struct {
	prober      Prober
	concurrency int
}

// NewChecker creates a Checker. If prober is nil an HTTPProber built from
// cfg is used.
func NewChecker(prober Prober, cfg config.CheckerConfig) *Checker {
	if prober == nil {
		prober = NewHTTPProber(cfg)
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Checker{prober: prober, concurrency: concurrency}
}

// CheckAll probes every citation and returns one result per citation, in
// input order. Probes run concurrently up to the configured limit. If the
// context expires mid-run, citations still in flight are recorded as
// unreachable rather than dropped: partial results must never block a
// report from being emitted.
func (c *Checker) CheckAll(ctx context.Context, citations []model.Citation) []model.CitationResult {
	results := make([]model.CitationResult, len(citations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, cit := range citations {
		g.Go(func() error {
			results[i] = c.checkOne(gctx, cit)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *Checker) checkOne(ctx context.Context, cit model.Citation) model.CitationResult {
	if ctx.Err() != nil {
		return model.CitationResult{
			URL:    cit.URL,
			Status: model.CitationUnreachable,
			Detail: "run deadline exceeded before probe",
		}
	}

	probe := c.prober.Probe(ctx, cit.URL)

	reachable := probe.Status == model.CitationAccessible || probe.Status == model.CitationRedirected
	if !reachable {
		zap.L().Debug("citation: probe failed",
			zap.String("url", cit.URL),
			zap.String("status", string(probe.Status)),
			zap.Int("http_code", probe.HTTPCode),
		)
	}

	return model.CitationResult{
		URL:       cit.URL,
		Reachable: reachable,
		Status:    probe.Status,
		HTTPCode:  probe.HTTPCode,
		ElapsedMS: probe.Elapsed.Milliseconds(),
		Detail:    probe.Detail,
	}
}
