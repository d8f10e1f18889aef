package api

import "rightswatch/api/handlers"

type routeHandlers struct {
	cases       *handlers.CasesHandler
	reports     *handlers.ReportsHandler
	analytics   *handlers.AnalyticsHandler
	individuals *handlers.IndividualsHandler
	uploads     *handlers.UploadsHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		cases:       handlers.NewCasesHandler(s.cases, s.statusHistory, s.logger),
		reports:     handlers.NewReportsHandler(s.reports, s.analytics, s.logger),
		analytics:   handlers.NewAnalyticsHandler(s.analytics, s.cfg.Analytics),
		individuals: handlers.NewIndividualsHandler(s.individuals),
		uploads:     handlers.NewUploadsHandler(s.uploads, s.cfg.Uploads.MaxBytes, s.logger),
	}
}
