package server

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/matst80/council-finder/pkg/cache"
	"github.com/matst80/council-finder/pkg/catalog"
	"github.com/matst80/council-finder/pkg/session"
	"github.com/matst80/council-finder/pkg/sorting"
	"github.com/matst80/council-finder/pkg/store"
	"github.com/matst80/council-finder/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type ScopeLoader interface {
	Load(ctx context.Context, scope types.Scope) (*store.Store, error)
}

// Invalidator drops cached raw payloads, see source.CachedSource.
type Invalidator interface {
	Invalidate(ctx context.Context, codes ...string) error
}

type Options struct {
	Collator        sorting.Collator
	Cache           cache.Store
	Raw             Invalidator
	Tracking        types.Tracking
	Logger          *zap.Logger
	OverviewExpiry  time.Duration
	SessionLifetime time.Duration
}

// WebServer serves the directory API. Loaded stores are kept per scope and
// shared between stateless views, sessions and the overview until a data
// update drops them.
type WebServer struct {
	Catalog  *catalog.Catalog
	Loader   ScopeLoader
	Sessions *session.Manager
	Collator sorting.Collator
	Tracking types.Tracking
	Raw      Invalidator

	overview        *cache.Helper[overviewResponse]
	cache           cache.Store
	overviewExpiry  time.Duration
	sessionLifetime time.Duration
	logger          *zap.Logger

	mu         sync.RWMutex
	scopes     map[types.Scope]*store.Store
	generation uint64
	group      singleflight.Group
}

func NewWebServer(c *catalog.Catalog, loader ScopeLoader, opts Options) *WebServer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	collator := opts.Collator
	if collator == nil {
		collator = sorting.DefaultCollator
	}
	expiry := opts.OverviewExpiry
	if expiry <= 0 {
		expiry = 10 * time.Minute
	}
	lifetime := opts.SessionLifetime
	if lifetime <= 0 {
		lifetime = 2 * time.Hour
	}
	ws := &WebServer{
		Catalog:         c,
		Loader:          loader,
		Collator:        collator,
		Tracking:        opts.Tracking,
		Raw:             opts.Raw,
		overview:        cache.NewHelper[overviewResponse](opts.Cache),
		cache:           opts.Cache,
		overviewExpiry:  expiry,
		sessionLifetime: lifetime,
		logger:          logger,
		scopes:          map[types.Scope]*store.Store{},
	}
	ws.Sessions = session.NewManager(ws, session.Options{Collator: collator, Logger: logger})
	return ws
}

// Load returns the store of scope, loading it at most once at a time.
// Failed loads are not kept, neither are loads overtaken by a data update.
func (ws *WebServer) Load(ctx context.Context, scope types.Scope) (*store.Store, error) {
	ws.mu.RLock()
	st, ok := ws.scopes[scope]
	generation := ws.generation
	ws.mu.RUnlock()
	if ok {
		return st, nil
	}
	key := fmt.Sprintf("%s@%d", scope, generation)
	v, err, _ := ws.group.Do(key, func() (any, error) {
		st, err := ws.Loader.Load(context.WithoutCancel(ctx), scope)
		if err != nil {
			return nil, err
		}
		ws.mu.Lock()
		if ws.generation == generation {
			ws.scopes[scope] = st
		} else {
			ws.logger.Debug("not keeping store loaded before data update", zap.String("scope", scope.String()))
		}
		ws.mu.Unlock()
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.Store), nil
}

// LoadedScopes lists the scopes currently held in memory.
func (ws *WebServer) LoadedScopes() []types.Scope {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return slices.Collect(maps.Keys(ws.scopes))
}

func (ws *WebServer) scopeContains(scope types.Scope, codes map[string]bool) bool {
	members, err := ws.Catalog.Members(scope)
	if err != nil {
		return true
	}
	for _, m := range members {
		if codes[m.Code] {
			return true
		}
	}
	return false
}

// HandleDataUpdate drops every cached artifact derived from the updated
// municipalities. Sessions keep their committed store until they switch scope.
func (ws *WebServer) HandleDataUpdate(ctx context.Context, update types.DataUpdate) error {
	codes := update.Codes
	if len(codes) == 0 {
		for _, m := range ws.Catalog.Municipalities() {
			codes = append(codes, m.Code)
		}
	}
	changed := make(map[string]bool, len(codes))
	for _, code := range codes {
		changed[code] = true
	}

	ws.mu.Lock()
	ws.generation++
	for scope := range ws.scopes {
		if ws.scopeContains(scope, changed) {
			delete(ws.scopes, scope)
		}
	}
	ws.mu.Unlock()
	noDataUpdates.Inc()
	ws.logger.Info("data updated", zap.Strings("codes", codes))

	var err error
	if ws.Raw != nil {
		err = ws.Raw.Invalidate(ctx, codes...)
	}
	if ws.cache != nil {
		if cerr := ws.cache.Delete(ctx, overviewKey); err == nil {
			err = cerr
		}
	}
	return err
}

// PruneSessions drops sessions idle for longer than the session lifetime.
func (ws *WebServer) PruneSessions() int {
	n := ws.Sessions.Prune(ws.sessionLifetime)
	if n > 0 {
		ws.logger.Debug("pruned sessions", zap.Int("count", n))
	}
	return n
}
