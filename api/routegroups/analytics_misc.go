package routegroups

import (
	"rightswatch/api/handlers"
	"rightswatch/core/rbac"

	"github.com/go-chi/chi/v5"
)

func RegisterAnalytics(apiRouter chi.Router, analytics *handlers.AnalyticsHandler) {
	apiRouter.Route("/analytics", func(analyticsRouter chi.Router) {
		analyticsRouter.MethodFunc("GET", "/violations", analytics.Violations)
		analyticsRouter.MethodFunc("GET", "/timeline", analytics.Timeline)
		analyticsRouter.MethodFunc("GET", "/geodata", analytics.Geodata)
	})
}

func RegisterIndividuals(apiRouter chi.Router, g Guards, individuals *handlers.IndividualsHandler) {
	apiRouter.Route("/individuals", func(individualsRouter chi.Router) {
		individualsRouter.MethodFunc("POST", "/", g.Perm(rbac.PermIndividualsCreate, individuals.Create))
		individualsRouter.MethodFunc("GET", "/", individuals.List)
		individualsRouter.MethodFunc("GET", "/{id}", individuals.Get)
		individualsRouter.MethodFunc("PATCH", "/{id}/risk", individuals.UpdateRisk)
	})
}

func RegisterUploads(apiRouter chi.Router, uploads *handlers.UploadsHandler) {
	apiRouter.MethodFunc("POST", "/upload/", uploads.Upload)
}
