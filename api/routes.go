package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"rightswatch/api/routegroups"
	"rightswatch/core/uploads"
)

const healthTimeout = 2 * time.Second

func (s *Server) registerRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h := s.newRouteHandlers()

	r.MethodFunc("GET", "/healthz", s.healthz)
	r.Method("GET", "/metrics", s.metrics.Handler())
	r.Method("GET", uploads.URLPrefix+"*", http.StripPrefix(uploads.URLPrefix, noDirListing(http.FileServer(http.Dir(s.uploads.Dir())))))
	routegroups.RegisterUploads(r, h.uploads)

	r.Group(func(apiRouter chi.Router) {
		apiRouter.Use(s.jsonMiddleware)
		apiRouter.Use(s.bodyLimitMiddleware)
		routegroups.RegisterCases(apiRouter, h.cases)
		routegroups.RegisterReports(apiRouter, h.reports)
		routegroups.RegisterAnalytics(apiRouter, h.analytics)
		routegroups.RegisterIndividuals(apiRouter, routegroups.Guards{RequirePermission: s.requirePermission}, h.individuals)
	})
	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "detail": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
