package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matst80/council-finder/pkg/catalog"
	"github.com/matst80/council-finder/pkg/source"
	"github.com/matst80/council-finder/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	noLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "councilfinder_scope_loads_total",
		Help: "The total number of scope loads",
	}, []string{"kind", "result"})
	noSourceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "councilfinder_source_failures_total",
		Help: "The total number of municipality sources that failed to load",
	})
	loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "councilfinder_scope_load_seconds",
		Help:    "Time spent loading a scope",
		Buckets: prometheus.DefBuckets,
	})
)

type PartialFailurePolicy uint8

const (
	// PartialFailureSilent drops failed municipalities of a prefecture scope
	// without telling the user.
	PartialFailureSilent PartialFailurePolicy = iota
	// PartialFailureWarn drops them as well but records a warning per failure.
	PartialFailureWarn
)

func ParsePartialFailurePolicy(s string) (PartialFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "silent":
		return PartialFailureSilent, nil
	case "warn":
		return PartialFailureWarn, nil
	}
	return PartialFailureSilent, fmt.Errorf("unknown partial failure policy %q", s)
}

type LoaderOptions struct {
	Policy      PartialFailurePolicy
	Concurrency int
	Logger      *zap.Logger
}

func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		Policy:      PartialFailureSilent,
		Concurrency: 4,
	}
}

type Loader struct {
	Catalog     *catalog.Catalog
	Source      types.DataSource
	Policy      PartialFailurePolicy
	Concurrency int
	logger      *zap.Logger
}

func NewLoader(c *catalog.Catalog, src types.DataSource, opts LoaderOptions) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Loader{
		Catalog:     c,
		Source:      src,
		Policy:      opts.Policy,
		Concurrency: concurrency,
		logger:      logger,
	}
}

func (l *Loader) Resolve(id string) (types.Scope, error) {
	return l.Catalog.Resolve(id)
}

type fetchResult struct {
	members []types.Member
	variant types.Variant
	err     error
}

// Load builds the store of a scope. A prefecture scope fails only when every
// one of its municipalities fails; a municipality scope fails with its source.
func (l *Loader) Load(ctx context.Context, scope types.Scope) (*Store, error) {
	start := time.Now()
	defer func() { loadDuration.Observe(time.Since(start).Seconds()) }()

	municipalities, err := l.Catalog.Members(scope)
	if err != nil {
		noLoads.WithLabelValues(scope.Kind.String(), "not_found").Inc()
		return nil, err
	}

	results := make([]fetchResult, len(municipalities))
	var g errgroup.Group
	g.SetLimit(l.Concurrency)
	for i, m := range municipalities {
		g.Go(func() error {
			results[i] = l.fetch(ctx, m)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		noLoads.WithLabelValues(scope.Kind.String(), "cancelled").Inc()
		return nil, err
	}

	s := &Store{
		scope:    scope,
		members:  make([]types.Member, 0),
		loadedAt: time.Now(),
	}
	errs := make([]error, 0)
	for i, r := range results {
		m := municipalities[i]
		if r.err != nil {
			noSourceFailures.Inc()
			l.logger.Warn("municipality unavailable",
				zap.String("scope", scope.String()),
				zap.String("code", m.Code),
				zap.String("name", m.Name),
				zap.Error(r.err))
			errs = append(errs, r.err)
			s.failed = append(s.failed, m)
			if l.Policy == PartialFailureWarn && scope.IsAggregate() {
				s.warnings = append(s.warnings, fmt.Sprintf("%sのデータを読み込めませんでした", m.Name))
			}
			continue
		}
		if scope.IsAggregate() {
			for _, member := range r.members {
				member.Municipality = m.Name
				member.MunicipalityCode = m.Code
				s.members = append(s.members, member)
			}
		} else {
			s.variant = r.variant
			s.members = append(s.members, r.members...)
		}
	}
	if scope.IsAggregate() {
		s.variant = types.VariantAggregate
	}

	if len(errs) == len(municipalities) {
		noLoads.WithLabelValues(scope.Kind.String(), "failed").Inc()
		return nil, fmt.Errorf("load %s: %w", scope, errors.Join(errs...))
	}
	noLoads.WithLabelValues(scope.Kind.String(), "ok").Inc()
	l.logger.Debug("scope loaded",
		zap.String("scope", scope.String()),
		zap.Int("members", len(s.members)),
		zap.Int("failed", len(s.failed)))
	return s, nil
}

func (l *Loader) fetch(ctx context.Context, m types.Municipality) fetchResult {
	raw, err := l.Source.Fetch(ctx, m)
	if err != nil {
		if !errors.Is(err, types.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %s: %w", types.ErrSourceUnavailable, m.Code, err)
		}
		return fetchResult{err: err}
	}
	members, variant, err := source.Normalize(raw)
	if err != nil {
		return fetchResult{err: fmt.Errorf("%w: %s: %w", types.ErrSourceUnavailable, m.Code, err)}
	}
	return fetchResult{members: members, variant: variant}
}
