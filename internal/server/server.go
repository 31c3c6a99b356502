// Package server implements HexMem's HTTP+JSON API (§6), grounded on the
// teacher's chi-router Server{db,router} shape, generalized with CORS
// (go-chi/cors) and bearer-token auth middleware the teacher never needed
// for its single-user local daemon.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hexmem/hexmem/internal/analytics"
	"github.com/hexmem/hexmem/internal/auth"
	"github.com/hexmem/hexmem/internal/decay"
	"github.com/hexmem/hexmem/internal/embedding"
	"github.com/hexmem/hexmem/internal/extraction"
	"github.com/hexmem/hexmem/internal/graph"
	"github.com/hexmem/hexmem/internal/ingest"
	"github.com/hexmem/hexmem/internal/recall"
	"github.com/hexmem/hexmem/internal/store"
)

// Server is HexMem's HTTP API server. It composes every internal package
// into one chi router; construction happens once, at process start, in
// cmd/hexmemd.
type Server struct {
	db       *store.DB
	embedder embedding.Embedder
	auth     *auth.Authenticator
	pipeline *ingest.Pipeline
	planner  *recall.Planner
	graph    *graph.Graph
	expander *graph.Expander
	decay    *decay.Engine
	analytics *analytics.Logger
	log      *zap.SugaredLogger
	version  string
	started  time.Time
	router   chi.Router
}

// Deps bundles the collaborators a Server needs. All fields are required
// except Embedder, which may be nil (the embedder is an optional capability
// per §4.2 — its absence degrades search/recall rather than failing startup).
type Deps struct {
	DB         *store.DB
	Embedder   embedding.Embedder
	Extractor  extraction.Extractor
	Summarizer extraction.Summarizer
	Auth       *auth.Authenticator
	Decay      *decay.Engine
	Analytics  *analytics.Logger
	Log        *zap.SugaredLogger
	Version    string
}

// New wires Deps into a Server and builds its route table.
func New(d Deps) *Server {
	s := &Server{
		db:       d.DB,
		embedder: d.Embedder,
		auth:     d.Auth,
		pipeline: &ingest.Pipeline{DB: d.DB, Embedder: d.Embedder, Extractor: d.Extractor, Summarizer: d.Summarizer, Log: d.Log},
		planner:  &recall.Planner{DB: d.DB, Embedder: d.Embedder},
		graph:    &graph.Graph{DB: d.DB},
		expander: &graph.Expander{DB: d.DB},
		decay:    d.Decay,
		analytics: d.Analytics,
		log:      d.Log,
		version:  d.Version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.accessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireAuth)
		read := s.requirePerm("read")
		write := s.requirePerm("write")

		r.Route("/agents", func(r chi.Router) {
			r.With(write).Post("/", s.handleCreateAgent)
			r.With(read).Get("/", s.handleListAgents)
			r.With(read).Get("/{id}", s.handleGetAgent)
			r.With(write).Patch("/{id}", s.handleUpdateAgent)
			r.With(write).Patch("/{id}/core-memory", s.handlePatchCoreMemory)
		})

		r.Route("/keys", func(r chi.Router) {
			r.With(s.requirePerm("admin")).Post("/", s.handleCreateKey)
			r.With(s.requirePerm("admin")).Get("/", s.handleListKeys)
			r.With(s.requirePerm("admin")).Delete("/{id}", s.handleRevokeKey)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.With(write).Post("/", s.handleCreateSession)
			r.With(read).Get("/", s.handleListSessions)
			r.With(read).Get("/{id}", s.handleGetSession)
			r.With(write).Post("/{id}/messages", s.handleAddMessage)
			r.With(read).Get("/{id}/messages", s.handleListMessages)
			r.With(write).Post("/{id}/end", s.handleEndSession)
		})

		r.Route("/facts", func(r chi.Router) {
			r.With(write).Post("/", s.handleCreateFact)
			r.With(read).Get("/", s.handleListFacts)
			r.With(read).Get("/{id}", s.handleGetFact)
			r.With(write).Put("/{id}", s.handleSupersedeFact)
			r.With(write).Delete("/{id}", s.handleDeleteFact)
		})

		r.Route("/decisions", func(r chi.Router) {
			r.With(write).Post("/", s.handleCreateDecision)
			r.With(read).Get("/", s.handleListDecisions)
			r.With(read).Get("/{id}", s.handleGetDecision)
			r.With(write).Put("/{id}", s.handleUpdateDecision)
			r.With(write).Delete("/{id}", s.handleDeleteDecision)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.With(write).Post("/", s.handleCreateTask)
			r.With(read).Get("/", s.handleListTasks)
			r.With(read).Get("/{id}", s.handleGetTask)
			r.With(write).Put("/{id}", s.handleUpdateTaskStatus)
			r.With(write).Delete("/{id}", s.handleDeleteTask)
		})

		r.Route("/events", func(r chi.Router) {
			r.With(write).Post("/", s.handleCreateEvent)
			r.With(read).Get("/", s.handleListEvents)
			r.With(read).Get("/{id}", s.handleGetEvent)
			r.With(write).Put("/{id}", s.handleResolveEvent)
			r.With(write).Delete("/{id}", s.handleDeleteEvent)
		})

		r.Route("/projects", func(r chi.Router) {
			r.With(write).Post("/", s.handleCreateProject)
			r.With(read).Get("/", s.handleListProjects)
			r.With(read).Get("/{id}", s.handleGetProject)
			r.With(write).Put("/{id}", s.handleUpdateProjectStatus)
			r.With(write).Delete("/{id}", s.handleDeleteProject)
		})

		r.With(read).Post("/search", s.handleSearch)
		r.With(read).Post("/recall", s.handleRecall)

		r.Route("/edges", func(r chi.Router) {
			r.With(write).Post("/", s.handleCreateEdge)
			r.With(read).Get("/", s.handleListEdges)
			r.With(write).Delete("/{id}", s.handleDeleteEdge)
			r.With(read).Get("/graph/{type}/{id}", s.handleNodeGraph)
		})

		r.Route("/decay", func(r chi.Router) {
			r.With(read).Get("/status", s.handleDecayStatus)
			r.With(write).Post("/sweep", s.handleDecaySweep)
		})

		r.With(read).Get("/analytics/queries", s.handleAnalyticsQueries)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}
	embedderName := "none"
	if s.embedder != nil {
		embedderName = s.embedder.Model()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"uptime_s": time.Since(s.started).Seconds(),
		"db":       dbOK,
		"embedder": embedderName,
	})
}
