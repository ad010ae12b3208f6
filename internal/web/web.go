// Package web serves the browser search form, a JSON search API, health and metrics.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pfrederiksen/cfp-search/internal/event"
	"github.com/pfrederiksen/cfp-search/internal/filter"
	"github.com/pfrederiksen/cfp-search/internal/logger"
	"github.com/pfrederiksen/cfp-search/internal/scraper"
	"github.com/pfrederiksen/cfp-search/internal/search"
)

// Searcher runs one search
type Searcher interface {
	Search(ctx context.Context, q scraper.Query, f *filter.Filter) (*search.Result, error)
}

// Options configures a Server
type Options struct {
	// Defaults preselects the type and region inputs. Nil selects everything.
	Defaults *filter.Filter
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Now      func() time.Time
}

// Server holds the HTTP handlers
type Server struct {
	searcher Searcher
	defaults *filter.Filter
	gatherer prometheus.Gatherer
	now      func() time.Time
}

// New creates a Server
func New(searcher Searcher, opts Options) *Server {
	s := &Server{
		searcher: searcher,
		defaults: opts.Defaults,
		gatherer: opts.Gatherer,
		now:      opts.Now,
	}
	if s.defaults == nil {
		s.defaults = filter.NewFilter()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/api/search", s.handleAPISearch)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     logger.Default().StdLogger(logger.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Web UI listening", logger.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down web UI", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// searchRequest is the parsed form or API query
type searchRequest struct {
	query     scraper.Query
	filter    *filter.Filter
	submitted bool
}

// parseRequest reads keyword, year, type and region parameters. Once a keyword has been
// submitted, missing type or region parameters mean an empty selection.
func (s *Server) parseRequest(r *http.Request) (*searchRequest, error) {
	values := r.URL.Query()
	req := &searchRequest{
		query:     scraper.Query{Keyword: strings.TrimSpace(values.Get("keyword"))},
		filter:    &filter.Filter{Types: []event.Type{}, Regions: []string{}},
		submitted: values.Has("keyword"),
	}

	year, err := scraper.ParseYearFilter(values.Get("year"), s.now())
	if err != nil {
		return req, err
	}
	req.query.Year = year

	if !req.submitted {
		req.filter = s.defaults
		return req, nil
	}

	for _, v := range values["type"] {
		t, err := event.ParseType(v)
		if err != nil {
			return req, err
		}
		req.filter.Types = append(req.filter.Types, t)
	}
	for _, v := range values["region"] {
		region, err := filter.ParseRegion(v)
		if err != nil {
			return req, err
		}
		req.filter.Regions = append(req.filter.Regions, region)
	}

	return req, nil
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err == nil && req.query.Keyword == "" {
		err = errors.New("keyword is required")
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// The API selects everything unless types or regions are given.
	values := r.URL.Query()
	if !values.Has("type") {
		req.filter.Types = append([]event.Type(nil), event.AllTypes...)
	}
	if !values.Has("region") {
		req.filter.Regions = append([]string(nil), filter.AllRegions...)
	}

	result, err := s.searcher.Search(r.Context(), req.query, req.filter)
	if err != nil {
		status := http.StatusInternalServerError
		var upstream *search.UpstreamError
		if errors.As(err, &upstream) {
			status = http.StatusBadGateway
		}
		logger.Error("Search failed", logger.Fields{"keyword": req.query.Keyword}, err)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	data := s.pageData(req)

	status := http.StatusOK
	switch {
	case err != nil:
		status = http.StatusBadRequest
		data.Error = err.Error()
	case req.submitted && req.query.Keyword != "":
		result, err := s.searcher.Search(r.Context(), req.query, req.filter)
		if err != nil {
			logger.Error("Search failed", logger.Fields{"keyword": req.query.Keyword}, err)
			status = http.StatusBadGateway
			data.Error = err.Error()
			break
		}
		if result.NoResults {
			data.Message = search.NoResultsMessage
			break
		}
		data.Shown = true
		data.Summary = fmt.Sprintf("%d of %d events shown", len(result.Events), result.Total)
		data.Table = tableData{Columns: event.Columns, Events: result.Events}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "page", data); err != nil {
		logger.Error("Rendering page failed", nil, err)
	}
}

// pageData fills the form inputs from the request
func (s *Server) pageData(req *searchRequest) pageData {
	data := pageData{Keyword: req.query.Keyword}

	for _, opt := range scraper.YearLabels(s.now()) {
		data.Years = append(data.Years, option{
			Value:    string(opt.Year),
			Label:    opt.Label,
			Selected: opt.Year == req.query.Year,
		})
	}

	f := req.filter
	if f == nil {
		f = s.defaults
	}
	for _, t := range event.AllTypes {
		data.Types = append(data.Types, option{
			Value:    string(t),
			Label:    string(t),
			Selected: containsType(f.Types, t),
		})
	}
	for _, region := range filter.AllRegions {
		data.Regions = append(data.Regions, option{
			Value:    region,
			Label:    region,
			Selected: containsString(f.Regions, region),
		})
	}

	return data
}

func containsType(types []event.Type, t event.Type) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Encoding response failed", nil, err)
	}
}
