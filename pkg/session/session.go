package session

import (
	"context"
	"sync"
	"time"

	"github.com/matst80/council-finder/pkg/facet"
	"github.com/matst80/council-finder/pkg/render"
	"github.com/matst80/council-finder/pkg/search"
	"github.com/matst80/council-finder/pkg/sorting"
	"github.com/matst80/council-finder/pkg/store"
	"github.com/matst80/council-finder/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	noStaleLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "councilfinder_stale_loads_total",
		Help: "The total number of scope loads discarded because a newer load was started",
	})
	noInteractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "councilfinder_interactions_total",
		Help: "The total number of session interactions",
	}, []string{"kind"})
)

type Loader interface {
	Load(ctx context.Context, scope types.Scope) (*store.Store, error)
}

// Ticket identifies one load. Only the ticket of the latest load may commit.
type Ticket struct {
	Generation uint64
	Scope      types.Scope
}

// Session owns the store of the current scope and the interaction state of
// one viewer. Every interaction re-runs filter, sort and render over the
// full store.
type Session struct {
	Id string

	mu         sync.Mutex
	loader     Loader
	sorter     *sorting.Sorter
	collator   sorting.Collator
	logger     *zap.Logger
	generation uint64
	scope      types.Scope
	store      *store.Store
	index      *facet.Index
	loading    bool
	failed     bool
	text       string
	selections types.FacetSelections
	sort       sorting.State
	lastSeen   time.Time
}

type Options struct {
	Collator sorting.Collator
	Logger   *zap.Logger
}

func New(id string, loader Loader, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	collator := opts.Collator
	if collator == nil {
		collator = sorting.DefaultCollator
	}
	return &Session{
		Id:         id,
		loader:     loader,
		sorter:     sorting.NewSorter(collator),
		collator:   collator,
		logger:     logger,
		selections: types.FacetSelections{},
		lastSeen:   time.Now(),
	}
}

// BeginLoad switches the session to scope with an empty store and resets the
// interaction state. The returned ticket must be passed to Commit.
func (s *Session) BeginLoad(scope types.Scope) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.scope = scope
	s.store = store.Empty(scope)
	s.index = nil
	s.loading = true
	s.failed = false
	s.text = ""
	s.selections = types.FacetSelections{}
	s.sort = sorting.State{}
	return Ticket{Generation: s.generation, Scope: scope}
}

// Commit installs the result of a load. Results of superseded loads are
// discarded and Commit reports false.
func (s *Session) Commit(ticket Ticket, st *store.Store, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket.Generation != s.generation || ticket.Scope != s.scope {
		noStaleLoads.Inc()
		s.logger.Debug("discarding stale load",
			zap.String("session", s.Id),
			zap.String("scope", ticket.Scope.String()),
			zap.Uint64("generation", ticket.Generation))
		return false
	}
	s.loading = false
	if err != nil {
		s.failed = true
		s.logger.Warn("scope load failed",
			zap.String("session", s.Id),
			zap.String("scope", ticket.Scope.String()),
			zap.Error(err))
		return true
	}
	s.store = st
	s.index = facet.NewIndex(st, s.collator)
	return true
}

// Load starts an asynchronous load of scope. The channel receives whether the
// result was committed and is then closed. The load outlives ctx cancellation.
func (s *Session) Load(ctx context.Context, scope types.Scope) <-chan bool {
	ticket := s.BeginLoad(scope)
	done := make(chan bool, 1)
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		st, err := s.loader.Load(ctx, scope)
		done <- s.Commit(ticket, st, err)
	}()
	return done
}

// LoadSync loads scope and waits for the commit.
func (s *Session) LoadSync(ctx context.Context, scope types.Scope) *render.DisplayModel {
	<-s.Load(ctx, scope)
	return s.View()
}

func (s *Session) Scope() types.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) Search(text string) *render.DisplayModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	noInteractions.WithLabelValues("search").Inc()
	s.text = text
	return s.viewLocked()
}

// Filter sets or, with an empty value, clears one facet selection.
func (s *Session) Filter(field types.FacetField, value string) *render.DisplayModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	noInteractions.WithLabelValues("filter").Inc()
	s.selections = s.selections.With(field, value)
	return s.viewLocked()
}

// Sort activates a column; activating the active column again flips direction.
func (s *Session) Sort(field types.SortField) (*render.DisplayModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := sorting.CheckField(s.store.Variant(), field); err != nil {
		return nil, err
	}
	noInteractions.WithLabelValues("sort").Inc()
	s.sort = s.sort.Activate(field)
	return s.viewLocked(), nil
}

func (s *Session) View() *render.DisplayModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) visibleLocked() []types.Member {
	return s.sorter.ApplyState(search.Apply(s.store, s.text, s.selections), s.sort)
}

func (s *Session) viewLocked() *render.DisplayModel {
	s.lastSeen = time.Now()
	variant := s.store.Variant()
	if s.failed {
		return render.Failure(s.scope, variant)
	}
	model := render.Render(s.visibleLocked(), variant, s.sort)
	model.Scope = s.scope
	model.Query = s.text
	model.Facets = render.Facets(s.index, variant, s.selections)
	model.Warnings = s.store.Warnings()
	if s.loading {
		model.Loading = true
		model.Message = render.LoadingMessage
	}
	return model
}
