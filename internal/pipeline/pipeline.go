// Package pipeline wires the validation stages together: schema gate,
// citation probes, statistical analysis, scoring and report emission, for
// single cases and corpus-wide runs.
package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/legalgapdb/gapcheck/internal/analyze"
	"github.com/legalgapdb/gapcheck/internal/citation"
	"github.com/legalgapdb/gapcheck/internal/config"
	"github.com/legalgapdb/gapcheck/internal/corpus"
	"github.com/legalgapdb/gapcheck/internal/model"
	"github.com/legalgapdb/gapcheck/internal/report"
	"github.com/legalgapdb/gapcheck/internal/score"
	"github.com/legalgapdb/gapcheck/internal/store"
	"github.com/legalgapdb/gapcheck/internal/validate"
)

// Pipeline runs the per-case validation flow. All stages are pure in-memory
// computation except the citation checker, which is the single point where
// the process touches the network.
type Pipeline struct {
	cfg       *config.Config
	validator *validate.Validator
	checker   *citation.Checker
	analyzer  *analyze.Analyzer
	scorer    *score.Scorer
	history   store.Store

	// SkipCitations disables network probes entirely (offline runs and CI).
	SkipCitations bool

	// Now supplies the run clock, shared by every stage so one run sees
	// one consistent "current year". Defaults to time.Now.
	Now func() time.Time
}

// New builds a Pipeline. prober may be nil to use the real HTTP prober;
// history may be nil to skip persistence.
func New(cfg *config.Config, prober citation.Prober, history store.Store) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		validator: validate.New(),
		checker:   citation.NewChecker(prober, cfg.Checker),
		analyzer:  analyze.New(cfg.Policy),
		scorer:    score.New(cfg.Policy),
		history:   history,
		Now:       time.Now,
	}
	p.validator.Now = p.now
	p.analyzer.Now = p.now
	return p
}

// CheckCase validates one record against the frozen snapshot and returns
// its report. The schema gate runs first: a structurally invalid record is
// failed immediately, with no network calls and no statistical analysis,
// since its numeric fields cannot be trusted.
func (p *Pipeline) CheckCase(ctx context.Context, rec *model.CaseRecord, snap *corpus.Snapshot) *model.ValidationReport {
	runTS := p.now()

	structural := p.validator.ValidateStructure(rec)
	if len(structural) > 0 {
		s, tier := p.scorer.Score(structural, nil, nil, "")
		return report.Emit(rec.ID, runTS, structural, nil, nil, nil, s, tier)
	}

	var citations []model.CitationResult
	if !p.SkipCitations {
		citations = p.checker.CheckAll(ctx, rec.AllCitations())
	}

	flags, interval := p.analyzer.Analyze(rec, snap)

	authorConfidence := rec.InformalPractice.GapQuantification.Confidence
	s, tier := p.scorer.Score(nil, citations, flags, authorConfidence)

	return report.Emit(rec.ID, runTS, nil, citations, flags, interval, s, tier)
}

// RunCorpus validates every record against a snapshot built once up front,
// processing cases in parallel, and returns the aggregate report. Per-case
// failures never abort the run; loadErrs (unparseable case files) become
// failing reports so the aggregate accounts for every file seen.
func (p *Pipeline) RunCorpus(ctx context.Context, records []model.CaseRecord, loadErrs []corpus.LoadError) *model.AggregateReport {
	runTS := p.now()

	if secs := p.cfg.Run.DeadlineSecs; secs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
		defer cancel()
	}

	// Snapshot is frozen before any analysis begins.
	snap := corpus.NewSnapshot(records)

	zap.L().Info("corpus run starting",
		zap.Int("cases", len(records)),
		zap.Int("unparseable", len(loadErrs)),
		zap.Int("concurrency", p.concurrency()),
		zap.Bool("citations", !p.SkipCitations),
	)

	reports := make([]model.ValidationReport, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency())
	for i := range records {
		g.Go(func() error {
			reports[i] = *p.CheckCase(gctx, &records[i], snap)
			return nil
		})
	}
	_ = g.Wait()

	for _, le := range loadErrs {
		reports = append(reports, *loadFailureReport(le, runTS))
	}

	agg := report.Aggregate(runTS, reports)

	zap.L().Info("corpus run complete",
		zap.String("run_id", agg.RunID),
		zap.Int("passed", agg.Passed),
		zap.Int("failed", agg.Failed),
		zap.Float64("mean_score", agg.MeanScore),
	)

	p.persist(ctx, agg)
	return agg
}

// persist appends the run to the history log. Persistence problems are
// logged, not fatal: the report has already been produced and must reach
// the caller.
func (p *Pipeline) persist(ctx context.Context, agg *model.AggregateReport) {
	if p.history == nil {
		return
	}
	if err := p.history.SaveRun(ctx, agg); err != nil {
		zap.L().Warn("pipeline: failed to persist run history", zap.Error(err))
	}
}

func (p *Pipeline) concurrency() int {
	if p.cfg.Run.Concurrency > 0 {
		return p.cfg.Run.Concurrency
	}
	return 4
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// loadFailureReport converts an unparseable case file into a failing
// report keyed by the filename-derived case ID.
func loadFailureReport(le corpus.LoadError, runTS time.Time) *model.ValidationReport {
	base := filepath.Base(le.Path)
	id := strings.TrimSuffix(base, filepath.Ext(base))
	structural := []model.StructuralError{{
		Field:   "file",
		Message: "unparseable case file: " + le.Err.Error(),
	}}
	return report.Emit(id, runTS, structural, nil, nil, nil, 0.0, model.TierFail)
}
