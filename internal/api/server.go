package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/soochol/filechat/internal/chat"
	"github.com/soochol/filechat/internal/storage"
)

const (
	defaultMaxUploadSize = 10 << 20 // 10MB
	defaultMaxFiles      = 5
)

// FrontendInfo is the browser-visible subset of the deployment settings.
// It never carries API keys.
type FrontendInfo struct {
	AzureEndpoint  string
	DeploymentName string
	APIVersion     string
	APIURL         string
}

type Server struct {
	storage       storage.Storage
	analyzer      *chat.Analyzer
	frontend      FrontendInfo
	maxUploadSize int64
	maxFiles      int
	staticDir     string
}

func NewServer(store storage.Storage, analyzer *chat.Analyzer) *Server {
	return &Server{
		storage:       store,
		analyzer:      analyzer,
		maxUploadSize: defaultMaxUploadSize,
		maxFiles:      defaultMaxFiles,
	}
}

// SetFrontendInfo configures the payload of GET /api/frontend-config.
func (s *Server) SetFrontendInfo(info FrontendInfo) {
	s.frontend = info
}

// SetUploadLimits overrides the per-file size cap and the file count allowed
// on multi-file uploads. Non-positive values keep the current limit.
func (s *Server) SetUploadLimits(maxSize int64, maxFiles int) {
	if maxSize > 0 {
		s.maxUploadSize = maxSize
	}
	if maxFiles > 0 {
		s.maxFiles = maxFiles
	}
}

// SetStaticDir enables serving the built frontend from dir.
func (s *Server) SetStaticDir(dir string) {
	s.staticDir = dir
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))
	r.Use(noCache)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Post("/upload", s.uploadFile)
		r.Post("/upload/multiple", s.uploadFiles)
		r.Route("/files", func(r chi.Router) {
			r.Post("/process", s.processFile)
			r.Post("/chat", s.chatWithFile)
		})
		r.Post("/azure-openai/chat", s.chatCompletion)
		r.Get("/frontend-config", s.frontendConfig)
		r.Get("/config/frontend-config", s.frontendConfig)
		r.Post("/fn-conversationsave", s.saveConversation)
		r.NotFound(apiNotFound)
	})

	if s.staticDir != "" {
		r.Handle("/*", StaticHandler(s.staticDir))
	}

	return r
}

// noCache stops browsers from caching API responses and the SPA shell.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "-1")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
