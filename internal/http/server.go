package httpapp

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/benderchat/bender/internal/admin"
	"github.com/benderchat/bender/internal/auth"
	"github.com/benderchat/bender/internal/config"
	"github.com/benderchat/bender/internal/content"
	apperrors "github.com/benderchat/bender/internal/errors"
	"github.com/benderchat/bender/internal/metrics"
	"github.com/benderchat/bender/internal/store"

	_ "github.com/benderchat/bender/docs" // swagger docs

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

const msgInternal = "Internal server error"

// Store hands out request-scoped connections.
type Store interface {
	Acquire() store.Conn
	Ping(ctx context.Context) error
}

type Server struct {
	store    Store
	auth     *auth.Service
	content  *content.Service
	admin    *admin.Service
	cfg      config.Config
	logger   *zap.Logger
	metrics  *metrics.HTTPMetrics
	registry *prometheus.Registry
	router   chi.Router
}

func NewServer(st Store, authSvc *auth.Service, contentSvc *content.Service, adminSvc *admin.Service, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Server{
		store:    st,
		auth:     authSvc,
		content:  contentSvc,
		admin:    adminSvc,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics.NewHTTPMetrics(reg),
		registry: reg,
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the route tree, for documentation.
func (s *Server) Router() chi.Router {
	return s.router
}

// Registry is the Prometheus registry served on /metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(s.logger))
	r.Use(cors(s.cfg.AllowAllOrigins(), s.cfg.CORSOrigins))
	r.Use(s.metrics.Middleware)
	r.Use(s.recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, apperrors.ErrorResponse{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, apperrors.ErrorResponse{Error: "Method not allowed"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", s.scoped(s.handleSignup))
		r.Post("/login", s.scoped(s.handleLogin))
		r.Get("/skins", s.scoped(s.handleListSkins))

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", s.scoped(s.handleListArticles))
			r.Post("/", s.scoped(s.handleCreateArticle))
			r.Get("/{id:[0-9]+}", s.scoped(s.handleGetArticle))
			r.Put("/{id:[0-9]+}", s.scoped(s.handleEditArticle))
			r.Delete("/{id:[0-9]+}", s.scoped(s.handleDeleteArticle))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", s.scoped(s.handleAdminListUsers))
			r.Delete("/users/{id:[0-9]+}", s.scoped(s.handleAdminDeleteUser))
			r.Put("/users/{id:[0-9]+}", s.scoped(s.handleAdminUpdateUser))
			r.Get("/articles", s.scoped(s.handleAdminListArticles))
			r.Delete("/articles/{id:[0-9]+}", s.scoped(s.handleAdminDeleteArticle))
			r.Get("/version", s.handleVersion)
		})

		r.Get("/admins", s.scoped(s.handleListAdmins))
		r.Get("/openapi.json", s.serveOpenAPIJSON)
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	return r
}

// apiHandler serves one request with an explicitly passed store connection.
// A returned error is written as the JSON error response.
type apiHandler func(w http.ResponseWriter, r *http.Request, conn store.Conn) error

// scoped acquires a lazy connection for the request and always releases it.
func (s *Server) scoped(h apiHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn := s.store.Acquire()
		defer func() {
			if err := conn.Close(); err != nil {
				s.logger.Warn("release connection", zap.Error(err), zap.String("request_id", middleware.GetReqID(r.Context())))
			}
		}()
		if err := h(w, r, conn); err != nil {
			s.writeError(w, r, err)
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	se := apperrors.AsStructuredError(err)
	s.metrics.CountError(string(se.Type))
	s.logError(r, se)
	writeJSON(w, r, se.HTTPStatus(), se.ToResponse())
}

func (s *Server) logError(r *http.Request, err *apperrors.Error) {
	fields := []zap.Field{
		zap.String("error_type", string(err.Type)),
		zap.String("message", err.Message),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Int("status", err.HTTPStatus()),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	}
	for k, v := range err.Context {
		fields = append(fields, zap.Any(k, v))
	}

	switch err.Type {
	case apperrors.TypeValidation, apperrors.TypeNotFound, apperrors.TypeAuth, apperrors.TypeForbidden:
		s.logger.Info("request rejected", fields...)
	case apperrors.TypeConflict:
		s.logger.Warn("conflict", fields...)
	default:
		if err.Cause != nil {
			fields = append(fields, zap.NamedError("cause", err.Cause))
		}
		s.logger.Error("storage error", fields...)
	}
}

// handleVersion godoc
//
//	@Summary		API version
//	@Description	Version, build date and environment of the running server
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/api/admin/version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"version":     s.cfg.APIVersion,
		"build_date":  s.cfg.BuildDate.Format(time.RFC3339),
		"environment": s.cfg.Env,
		"go_version":  runtime.Version(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	render.Status(r, status)
	render.JSON(w, r, payload)
}

func success(w http.ResponseWriter, r *http.Request, status int) error {
	writeJSON(w, r, status, map[string]any{"success": true})
	return nil
}

// pathID reads the numeric {id} segment. The route pattern only admits
// digits, so the only failure left is overflow, reported as not found.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apperrors.NotFoundError("Not found")
	}
	return id, nil
}

// requesterID reads the caller's self-reported id from X-User-ID.
func requesterID(r *http.Request) (*int64, error) {
	raw := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.ValidationError("Invalid X-User-ID header")
	}
	return &id, nil
}
