package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/MalithGihan/mindmap-service/internal/ingest"
	"github.com/MalithGihan/mindmap-service/internal/store"
	"github.com/MalithGihan/mindmap-service/pkg/types"
)

// Extractor turns uploaded files into documents.
type Extractor interface {
	ExtractAll(ctx context.Context, files []ingest.File) ([]types.Document, error)
}

// Synthesizer builds a mind map from a corpus and a prompt.
type Synthesizer interface {
	Synthesize(ctx context.Context, corpus, prompt string) (*types.MindMap, error)
	Provider() string
}

type Options struct {
	StaticDir      string
	MaxUploadBytes int64
	AllowedOrigins []string
	// Pinger, when set, backs /llm/ping.
	Pinger interface{ Ping(ctx context.Context) error }
}

type Server struct {
	extractor Extractor
	synth     Synthesizer
	docs      store.DocumentStore
	views     store.ViewStore
	cache     *store.ExtractCache
	logger    *zap.Logger
	validate  *validator.Validate
	opts      Options
}

func New(ex Extractor, synth Synthesizer, st store.Store, cache *store.ExtractCache, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 64 << 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Server{
		extractor: ex,
		synth:     synth,
		docs:      st,
		views:     st,
		cache:     cache,
		logger:    logger,
		validate:  v,
		opts:      opts,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Get("/llm/ping", s.llmPing)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.upload)
		r.Get("/documents", s.listDocuments)
		r.Delete("/documents", s.clearDocuments)
		r.Post("/generate", s.generate)
		r.Get("/views", s.listViews)
		r.Post("/views", s.saveView)
		r.Get("/views/{id}", s.getView)
		r.Delete("/views/{id}", s.deleteView)
	})

	if s.opts.StaticDir != "" {
		if fi, err := os.Stat(s.opts.StaticDir); err == nil && fi.IsDir() {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.ServeFile(w, r, filepath.Join(s.opts.StaticDir, "index.html"))
			})
			r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.opts.StaticDir))))
		}
	}
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func requestFields(r *http.Request, status int, err error) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	}
}
