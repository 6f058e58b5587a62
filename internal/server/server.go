// Package server exposes the grid, sibling resolution and detail-view
// sessions over a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/dyluth/artmatrix/internal/address"
	"github.com/dyluth/artmatrix/internal/config"
	"github.com/dyluth/artmatrix/internal/cursor"
	"github.com/dyluth/artmatrix/internal/resolver"
	"github.com/dyluth/artmatrix/internal/session"
	"github.com/dyluth/artmatrix/internal/view"
	"github.com/dyluth/artmatrix/pkg/catalog"
	"github.com/google/uuid"
)

const maxBodySize = 1 << 16

// Store is what the server needs from the document store.
type Store interface {
	catalog.Getter
	Ping(ctx context.Context) error
}

// Server is the HTTP API.
type Server struct {
	mux      *http.ServeMux
	store    Store
	resolver *resolver.Resolver
	cfg      *config.Config

	cursorOpts []cursor.Option
	now        func() time.Time

	mu    sync.Mutex
	views map[string]*openView
}

// openView is a detail session plus the last time a request touched it.
type openView struct {
	detail   *session.Detail
	lastUsed time.Time
}

// New creates a server. cursorOpts are applied to every view session's cursor.
func New(store Store, cfg *config.Config, cursorOpts ...cursor.Option) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		store:      store,
		resolver:   resolver.New(store, resolver.WithStrictImages(cfg.StrictImages())),
		cfg:        cfg,
		cursorOpts: cursorOpts,
		now:        time.Now,
		views:      make(map[string]*openView),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/grid", s.handleGrid)
	s.mux.HandleFunc("GET /api/cells/{parent}", s.handleCell)
	s.mux.HandleFunc("GET /api/details/{key}", s.handleDetail)

	// Detail-view sessions
	s.mux.HandleFunc("POST /api/views", s.handleCreateView)
	s.mux.HandleFunc("GET /api/views/{id}", s.handleGetView)
	s.mux.HandleFunc("POST /api/views/{id}/input", s.handleInput)
	s.mux.HandleFunc("DELETE /api/views/{id}", s.handleDeleteView)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	s.mux.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	reapCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go s.reapIdleViews(reapCtx, s.cfg.Server.ViewTTL)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("[Server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close ends every open view session.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range s.views {
		v.detail.Close()
		delete(s.views, id)
	}
}

// reapIdleViews evicts views idle for longer than ttl until ctx is cancelled.
func (s *Server) reapIdleViews(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	interval := ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evictIdle(s.now().Add(-ttl)); n > 0 {
				log.Printf("[Server] closed %d idle views", n)
			}
		}
	}
}

// evictIdle closes every view last used before cutoff and returns how many.
func (s *Server) evictIdle(cutoff time.Time) int {
	s.mu.Lock()
	var idle []*session.Detail
	for id, v := range s.views {
		if v.lastUsed.Before(cutoff) {
			idle = append(idle, v.detail)
			delete(s.views, id)
		}
	}
	s.mu.Unlock()

	for _, d := range idle {
		d.Close()
	}
	return len(idle)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		jsonError(w, "store unreachable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, view.NewGrid(s.cfg.Grid.Rows, s.cfg.Grid.Cols))
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	parent, err := address.ParseParent(r.PathValue("parent"), s.cfg.Grid.Rows, s.cfg.Grid.Cols)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	set := s.resolver.ResolveParent(r.Context(), parent)
	writeJSON(w, http.StatusOK, struct {
		SubGrid  view.SubGrid         `json:"subGrid"`
		Siblings *resolver.SiblingSet `json:"siblings"`
	}{
		SubGrid:  view.NewSubGrid(parent),
		Siblings: set,
	})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	entry, lookup := s.resolver.ResolveSingle(r.Context(), r.PathValue("key"))
	if entry == nil {
		writeJSON(w, http.StatusNotFound, struct {
			Error  string          `json:"error"`
			Lookup resolver.Lookup `json:"lookup"`
		}{Error: "entry not found", Lookup: lookup})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Entry  *catalog.Entry  `json:"entry"`
		Lookup resolver.Lookup `json:"lookup"`
	}{Entry: entry, Lookup: lookup})
}

type viewResponse struct {
	ID   string      `json:"id"`
	View view.Detail `json:"view"`
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		jsonError(w, "field 'address' is required", http.StatusBadRequest)
		return
	}

	detail := session.NewDetail(s.resolver, s.cfg.CursorConfig(), s.cursorOpts...)
	if err := detail.Open(r.Context(), req.Address); err != nil {
		detail.Close()
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// A client that left mid-resolve gets no view
	if r.Context().Err() != nil {
		detail.Close()
		return
	}

	id := uuid.New().String()
	s.mu.Lock()
	s.views[id] = &openView{detail: detail, lastUsed: s.now()}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, viewResponse{ID: id, View: s.render(detail)})
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	detail := s.lookupView(id)
	if detail == nil {
		jsonError(w, "view not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{ID: id, View: s.render(detail)})
}

// remoteRegion reports the client's nested scroll area. The client scrolls
// it itself, so ScrollBy has nothing to do here.
type remoteRegion struct {
	canScroll bool
}

func (r remoteRegion) CanScroll(cursor.Direction) bool { return r.canScroll }
func (r remoteRegion) ScrollBy(float64)                {}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	detail := s.lookupView(id)
	if detail == nil {
		jsonError(w, "view not found", http.StatusNotFound)
		return
	}

	var req struct {
		Delta           float64 `json:"delta"`
		RegionCanScroll bool    `json:"regionCanScroll"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid input body", http.StatusBadRequest)
		return
	}

	outcome := detail.Handle(req.Delta, remoteRegion{canScroll: req.RegionCanScroll})
	writeJSON(w, http.StatusOK, struct {
		Outcome string      `json:"outcome"`
		View    view.Detail `json:"view"`
	}{Outcome: outcome.String(), View: s.render(detail)})
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	v, ok := s.views[id]
	delete(s.views, id)
	s.mu.Unlock()

	if !ok {
		jsonError(w, "view not found", http.StatusNotFound)
		return
	}
	v.detail.Close()
	w.WriteHeader(http.StatusNoContent)
}

// lookupView returns the view's session and marks it as used.
func (s *Server) lookupView(id string) *session.Detail {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[id]
	if !ok {
		return nil
	}
	v.lastUsed = s.now()
	return v.detail
}

func (s *Server) render(d *session.Detail) view.Detail {
	return view.NewDetail(d.Snapshot(), s.cfg.StrictImages())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] failed to write response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
