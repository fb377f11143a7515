// Package api exposes the property search engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/property-intel/internal/activity"
	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/model"
	"github.com/sells-group/property-intel/internal/records"
	"github.com/sells-group/property-intel/internal/savedsearch"
)

// UserHeader names the acting user of a request.
const UserHeader = "X-User-ID"

// Options tunes the HTTP surface.
type Options struct {
	DefaultUser    string
	DefaultSort    filter.SortKey
	PageSize       int
	MaxPageSize    int
	RateLimitRPS   float64
	RateLimitBurst int
	// RateLimitClients bounds how many client buckets are tracked at once.
	RateLimitClients int
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable it only behind a proxy that overwrites those headers.
	TrustProxy  bool
	CORSOrigins []string
	// MapCacheEntries bounds the rendered marker layer cache; zero disables it.
	MapCacheEntries int
	MapCacheTTL     time.Duration
	// Users attributes recorded entries with a display name and role.
	Users []model.User
	Now   func() time.Time
}

func (o *Options) applyDefaults() {
	if o.DefaultSort == "" {
		o.DefaultSort = filter.SortValueDesc
	}
	if o.PageSize <= 0 {
		o.PageSize = 50
	}
	if o.MaxPageSize < o.PageSize {
		o.MaxPageSize = o.PageSize
	}
	if len(o.CORSOrigins) == 0 {
		o.CORSOrigins = []string{"*"}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Server holds the collaborators behind the API routes.
type Server struct {
	source   records.Source
	searches *savedsearch.Manager
	log      activity.Repository
	recorder activity.Recorder
	sources  []model.DataSource
	mapCache *mapCache
	opts     Options
}

// New wires a Server. log receives property views and exports and serves
// the activity feed; it should be the same recorder the manager writes to.
func New(source records.Source, searches *savedsearch.Manager, log activity.Repository, sources []model.DataSource, opts Options) *Server {
	opts.applyDefaults()
	s := &Server{
		source:   source,
		searches: searches,
		log:      log,
		recorder: activity.Attribute(log, opts.Users),
		sources:  sources,
		opts:     opts,
	}
	if opts.MapCacheEntries > 0 {
		s.mapCache = newMapCache(opts.MapCacheEntries, opts.MapCacheTTL, opts.Now)
	}
	return s
}

// Handler builds the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", UserHeader},
		MaxAge:         300,
	}))
	if s.opts.RateLimitRPS > 0 {
		r.Use(newClientLimiter(s.opts.RateLimitRPS, s.opts.RateLimitBurst, s.opts.RateLimitClients, s.opts.Now).middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/properties", s.handleListProperties)
		r.Get("/properties/{id}", s.handleGetProperty)
		r.Get("/map", s.handleMap)
		r.Get("/export.csv", s.handleExport("csv"))
		r.Get("/export.xlsx", s.handleExport("xlsx"))

		r.Route("/searches", func(r chi.Router) {
			r.Get("/", s.handleListSearches)
			r.Post("/", s.handleCreateSearch)
			r.Get("/{id}", s.handleGetSearch)
			r.Delete("/{id}", s.handleDeleteSearch)
			r.Get("/{id}/results", s.handleSearchResults)
		})

		r.Get("/activity", s.handleActivity)
		r.Get("/sources", s.handleSources)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":     "ok",
		"properties": len(s.source.GetAll()),
	}
	if s.mapCache != nil {
		body["map_cache"] = s.mapCache.stats()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	out := s.sources
	if out == nil {
		out = []model.DataSource{}
	}
	writeJSON(w, http.StatusOK, out)
}

// userOf returns the acting user for r.
func (s *Server) userOf(r *http.Request) string {
	if u := r.Header.Get(UserHeader); u != "" {
		return u
	}
	return s.opts.DefaultUser
}
