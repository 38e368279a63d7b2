package pipeline

import (
	"fmt"
	"time"

	"github.com/roach88/linebuild/internal/complexity"
	"github.com/roach88/linebuild/internal/config"
	"github.com/roach88/linebuild/internal/continuity"
	"github.com/roach88/linebuild/internal/duration"
	"github.com/roach88/linebuild/internal/graph"
	"github.com/roach88/linebuild/internal/metrics"
	"github.com/roach88/linebuild/internal/model"
	"github.com/roach88/linebuild/internal/timing"
	"github.com/roach88/linebuild/internal/validate"
)

// Analysis is the derived view of one build.
type Analysis struct {
	BuildID      string                       `json:"build_id"`
	ItemID       string                       `json:"item_id"`
	Version      int                          `json:"version"`
	Fingerprint  string                       `json:"fingerprint"`
	Ordering     graph.Ordering               `json:"ordering"`
	Durations    map[string]duration.Estimate `json:"durations"`
	CriticalPath timing.Path                  `json:"critical_path"`
	Stats        timing.Stats                 `json:"stats"`
	Transfers    []model.DerivedTransfer      `json:"transfers"`
	Continuity   continuity.Stats             `json:"continuity"`
	Complexity   model.ComplexityScore        `json:"complexity"`
	Validation   model.ValidationReport       `json:"validation"`
}

// Analyzer runs the derivations configured by one profile. It holds no
// per-build state and is safe for concurrent use.
type Analyzer struct {
	resolver  *duration.Resolver
	checker   *continuity.Checker
	scorer    *complexity.Scorer
	validator *validate.Validator
	metrics   *metrics.Metrics
}

type options struct {
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures an Analyzer.
type Option func(*options)

// WithMetrics records critical path lengths and validation findings.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock sets the validation report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates an analyzer for a profile.
func New(p config.Profile, opts ...Option) *Analyzer {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	checker := continuity.NewChecker(p.Transfers, p.Pods)
	return &Analyzer{
		resolver:  duration.NewResolver(p.Durations),
		checker:   checker,
		scorer:    complexity.NewScorer(p.Complexity),
		validator: validate.New(checker, validate.WithMetrics(o.metrics), validate.WithClock(o.now)),
		metrics:   o.metrics,
	}
}

// Validator returns the build validator the analyzer uses.
func (a *Analyzer) Validator() *validate.Validator {
	return a.validator
}

// Analyze derives every view of a build. The build is not modified.
//
// Analysis never fails on findings: a cyclic or dangling build still gets a
// best-effort ordering and critical path, and the findings are in the
// validation report, together with any prior findings passed in. The error
// is reserved for fingerprinting failures.
func (a *Analyzer) Analyze(b model.Build, prior ...model.ValidationIssue) (Analysis, error) {
	g, _ := graph.Build(b.WorkUnits)
	estimates := a.resolver.ResolveAll(b.WorkUnits, duration.Context{ItemType: b.ItemType, BuildID: b.ID, BuildName: b.Name})
	path := timing.CriticalPath(g, estimates)
	a.metrics.ObserveCriticalPath(path.TotalSeconds)
	cont := a.checker.Check(b.WorkUnits, b.Assemblies)

	score, err := a.scorer.Score(complexity.Inputs{
		Units:               b.WorkUnits,
		Assemblies:          b.Assemblies,
		CriticalPathSeconds: path.TotalSeconds,
		Transfers:           cont.Transfers,
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze %s: %w", b.ID, err)
	}

	return Analysis{
		BuildID:      b.ID,
		ItemID:       b.ItemID,
		Version:      b.Version,
		Fingerprint:  score.Fingerprint,
		Ordering:     graph.Order(g),
		Durations:    estimates,
		CriticalPath: path,
		Stats:        timing.Summarize(g, estimates),
		Transfers:    cont.Transfers,
		Continuity:   cont.Stats,
		Complexity:   score,
		Validation:   a.validator.Validate(b, prior...),
	}, nil
}

// Normalize returns a copy of b whose units carry their derived ordinals
// and track keys. Normalizing a normalized build changes nothing.
func Normalize(b model.Build) model.Build {
	g, _ := graph.Build(b.WorkUnits)
	b.WorkUnits = graph.ApplyOrdinals(b.WorkUnits, graph.Order(g))
	return b
}

// Splice returns a copy of b in which every derived transfer is an explicit
// transfer unit wired between its producer and consumer.
func (a *Analyzer) Splice(b model.Build) model.Build {
	res := a.checker.Check(b.WorkUnits, b.Assemblies)
	b.WorkUnits = continuity.Splice(b.WorkUnits, res.Transfers)
	return b
}
