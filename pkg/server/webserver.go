package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/matst80/council-finder/pkg/catalog"
	"github.com/matst80/council-finder/pkg/common"
	"github.com/matst80/council-finder/pkg/common/jsoncompat"
	"github.com/matst80/council-finder/pkg/facet"
	"github.com/matst80/council-finder/pkg/overview"
	"github.com/matst80/council-finder/pkg/render"
	"github.com/matst80/council-finder/pkg/search"
	"github.com/matst80/council-finder/pkg/session"
	"github.com/matst80/council-finder/pkg/sorting"
	"github.com/matst80/council-finder/pkg/store"
	"github.com/matst80/council-finder/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	noViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "councilfinder_views_total",
		Help: "The total number of stateless views",
	})
	noSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "councilfinder_sessions_total",
		Help: "The total number of created sessions",
	})
	noDataUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "councilfinder_data_updates_total",
		Help: "The total number of handled data updates",
	})
)

const overviewKey = "council:overview"

type overviewResponse = overview.Overview

type catalogResponse struct {
	Prefectures []catalog.Prefecture `json:"prefectures"`
}

type sessionResponse struct {
	Id    string               `json:"id"`
	Model *render.DisplayModel `json:"model"`
}

func defaultHeaders(w http.ResponseWriter, r *http.Request, cacheTime string) {
	w.Header().Set("Cache-Control", "private, stale-while-revalidate="+cacheTime)
	genericHeaders(w, r)
}

func publicHeaders(w http.ResponseWriter, r *http.Request, cacheTime string) {
	w.Header().Set("Cache-Control", "public, max-age="+cacheTime)
	genericHeaders(w, r)
}

func noCacheHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	genericHeaders(w, r)
}

func genericHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
}

// BuildView runs filter, sort and render for one stateless request.
func BuildView(st *store.Store, req *ViewRequest, collator sorting.Collator) (*render.DisplayModel, error) {
	state, err := req.SortState()
	if err != nil {
		return nil, common.WithStatus(http.StatusBadRequest, err)
	}
	if state.IsActive() {
		if err := sorting.CheckField(st.Variant(), state.Field); err != nil {
			return nil, common.WithStatus(http.StatusBadRequest, err)
		}
	}
	selections := req.Selections()
	visible := sorting.NewSorter(collator).ApplyState(search.Apply(st, req.Query, selections), state)
	model := render.Render(visible, st.Variant(), state)
	model.Scope = st.Scope()
	model.Query = req.Query
	model.Facets = render.Facets(facet.NewIndex(st, collator), st.Variant(), selections)
	model.Warnings = st.Warnings()
	return model, nil
}

func (ws *WebServer) GetCatalog(w http.ResponseWriter, r *http.Request, visitorId string, enc jsoncompat.Encoder) error {
	publicHeaders(w, r, "600")
	w.WriteHeader(http.StatusOK)
	return enc.Encode(catalogResponse{Prefectures: ws.Catalog.Prefectures()})
}

func (ws *WebServer) GetOverview(w http.ResponseWriter, r *http.Request, visitorId string, enc jsoncompat.Encoder) error {
	var result overviewResponse
	err := ws.overview.Handle(r.Context(), overviewKey, &result, func() (overviewResponse, error) {
		ov, err := overview.Build(r.Context(), ws.Catalog, ws, ws.logger)
		if err != nil {
			return overviewResponse{}, err
		}
		return *ov, nil
	}, ws.overviewExpiry)
	if err != nil && result.Prefectures == nil {
		return err
	}
	publicHeaders(w, r, "120")
	w.WriteHeader(http.StatusOK)
	return enc.Encode(result)
}

func (ws *WebServer) GetView(w http.ResponseWriter, r *http.Request, visitorId string, enc jsoncompat.Encoder) error {
	scope, err := ws.Catalog.Resolve(r.PathValue("scope"))
	if err != nil {
		return err
	}
	req, err := decodeQuery[ViewRequest](r.URL.Query())
	if err != nil {
		return err
	}
	st, err := ws.Load(r.Context(), scope)
	if err != nil {
		return err
	}
	model, err := BuildView(st, req, ws.Collator)
	if err != nil {
		return err
	}
	noViews.Inc()
	if ws.Tracking != nil {
		go ws.Tracking.TrackSearch(visitorId, scope, req.Query, req.Selections(), model.Stats.Total, r)
	}
	defaultHeaders(w, r, "120")
	w.Header().Set("Last-Modified", st.LoadedAt().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	return enc.Encode(model)
}

func (ws *WebServer) CreateSession(w http.ResponseWriter, r *http.Request, visitorId string, enc jsoncompat.Encoder) error {
	req, err := decodeQuery[ScopeRequest](r.URL.Query())
	if err != nil {
		return err
	}
	scope, err := ws.Catalog.Resolve(req.Scope)
	if err != nil {
		return err
	}
	s, _ := ws.Sessions.Create(r.Context(), scope)
	noSessions.Inc()
	noCacheHeaders(w, r)
	w.WriteHeader(http.StatusCreated)
	return enc.Encode(sessionResponse{Id: s.Id, Model: s.View()})
}

func (ws *WebServer) getSession(r *http.Request) (*session.Session, error) {
	s, err := ws.Sessions.Get(r.PathValue("id"))
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil, common.WithStatus(http.StatusNotFound, err)
	}
	return s, err
}

func (ws *WebServer) respond(w http.ResponseWriter, r *http.Request, enc jsoncompat.Encoder, s *session.Session, model *render.DisplayModel) error {
	noCacheHeaders(w, r)
	w.WriteHeader(http.StatusOK)
	return enc.Encode(sessionResponse{Id: s.Id, Model: model})
}

func (ws *WebServer) GetSession(w http.ResponseWriter, r *http.Request, visitorId string, enc jsoncompat.Encoder) error {
	s, err := ws.getSession(r)
	if err != nil {
		return err
	}
	return ws.respond(w, r, enc, s, s.View())
}

func (ws *WebServer) SessionSearch(w http.ResponseWriter, r *http.Request, visitorId string, enc jsoncompat.Encoder) error {
	s, err := ws.getSession(r)
	if err != nil {
		return err
	}
	req, err := decodeQuery[SearchRequest](r.URL.Query())
	if err != nil {
		return err
	}
	model := s.Search(req.Query)
	if ws.Tracking != nil {
		go ws.Tracking.TrackSearch(visitorId, model.Scope, req.Query, nil, model.Stats.Total, r)
	}
	return ws.respond(w, r, enc, s, model)
}

func (ws *WebServer) SessionFilter(w http.ResponseWriter, r *http.Request, visitorId string, enc jsoncompat.Encoder) error {
	s, err := ws.getSession(r)
	if err != nil {
		return err
	}
	var model *render.DisplayModel
	for field, value := range filterUpdates(r.URL.Query()) {
		model = s.Filter(field, value)
	}
	if model == nil {
		model = s.View()
	}
	return ws.respond(w, r, enc, s, model)
}

func (ws *WebServer) SessionSort(w http.ResponseWriter, r *http.Request, visitorId string, enc jsoncompat.Encoder) error {
	s, err := ws.getSession(r)
	if err != nil {
		return err
	}
	req, err := decodeQuery[SortRequest](r.URL.Query())
	if err != nil {
		return err
	}
	field, ok := types.ParseSortField(req.Field)
	if !ok {
		return common.WithStatus(http.StatusBadRequest, fmt.Errorf("unknown sort field %q", req.Field))
	}
	model, err := s.Sort(field)
	if err != nil {
		return common.WithStatus(http.StatusBadRequest, err)
	}
	return ws.respond(w, r, enc, s, model)
}

func (ws *WebServer) SessionScope(w http.ResponseWriter, r *http.Request, visitorId string, enc jsoncompat.Encoder) error {
	s, err := ws.getSession(r)
	if err != nil {
		return err
	}
	req, err := decodeQuery[ScopeRequest](r.URL.Query())
	if err != nil {
		return err
	}
	scope, err := ws.Catalog.Resolve(req.Scope)
	if err != nil {
		return err
	}
	s.Load(r.Context(), scope)
	return ws.respond(w, r, enc, s, s.View())
}

func (ws *WebServer) handle(fn common.HandlerFunc) http.HandlerFunc {
	return common.JsonHandler(ws.Tracking, ws.logger, fn)
}

func (ws *WebServer) Routes() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("GET /api/catalog", ws.handle(ws.GetCatalog))
	srv.HandleFunc("GET /api/overview", ws.handle(ws.GetOverview))
	srv.HandleFunc("GET /api/scope/{scope}/view", ws.handle(ws.GetView))
	srv.HandleFunc("POST /api/session", ws.handle(ws.CreateSession))
	srv.HandleFunc("GET /api/session/{id}", ws.handle(ws.GetSession))
	srv.HandleFunc("POST /api/session/{id}/search", ws.handle(ws.SessionSearch))
	srv.HandleFunc("POST /api/session/{id}/filter", ws.handle(ws.SessionFilter))
	srv.HandleFunc("POST /api/session/{id}/sort", ws.handle(ws.SessionSort))
	srv.HandleFunc("POST /api/session/{id}/scope", ws.handle(ws.SessionScope))
	srv.HandleFunc("OPTIONS /api/", common.RespondToOptions)
	return srv
}

func DebugRoutes() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	srv.Handle("/metrics", promhttp.Handler())
	return srv
}
