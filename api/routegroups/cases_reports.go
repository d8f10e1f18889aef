package routegroups

import (
	"rightswatch/api/handlers"

	"github.com/go-chi/chi/v5"
)

func RegisterCases(apiRouter chi.Router, cases *handlers.CasesHandler) {
	apiRouter.Route("/cases", func(casesRouter chi.Router) {
		casesRouter.MethodFunc("POST", "/", cases.Create)
		casesRouter.MethodFunc("GET", "/", cases.List)
		casesRouter.MethodFunc("GET", "/{case_id}", cases.Get)
		casesRouter.MethodFunc("PATCH", "/{case_id}", cases.UpdateStatus)
		casesRouter.MethodFunc("PUT", "/{case_id}", cases.Replace)
		casesRouter.MethodFunc("DELETE", "/{case_id}", cases.Delete)
		casesRouter.MethodFunc("GET", "/{case_id}/history", cases.History)
	})
}

func RegisterReports(apiRouter chi.Router, reports *handlers.ReportsHandler) {
	apiRouter.Route("/reports", func(reportsRouter chi.Router) {
		reportsRouter.MethodFunc("POST", "/", reports.Create)
		reportsRouter.MethodFunc("GET", "/", reports.List)
		reportsRouter.MethodFunc("GET", "/analytics", reports.Analytics)
		reportsRouter.MethodFunc("GET", "/{report_id}", reports.Get)
		reportsRouter.MethodFunc("PATCH", "/{report_id}", reports.UpdateStatus)
		reportsRouter.MethodFunc("PUT", "/{report_id}", reports.Replace)
		reportsRouter.MethodFunc("DELETE", "/{report_id}", reports.Delete)
	})
}
