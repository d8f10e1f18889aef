package handlers

import (
	"errors"
	"net/http"
	"time"

	"rightswatch/core/records"
	"rightswatch/core/store"
	"rightswatch/core/utils"
)

// reportAnalyticsLimit caps the violation summary served under /reports/analytics.
const reportAnalyticsLimit = 10

type ReportsHandler struct {
	reports   store.ReportsStore
	analytics store.AnalyticsStore
	logger    *utils.Logger
	now       func() time.Time
}

func NewReportsHandler(reports store.ReportsStore, analytics store.AnalyticsStore, logger *utils.Logger) *ReportsHandler {
	return &ReportsHandler{reports: reports, analytics: analytics, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	rep, err := records.DecodeReport(r.Body, h.now())
	if err != nil {
		writeError(w, err, "")
		return
	}
	id, err := h.reports.CreateReport(r.Context(), rep)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeDetail(w, http.StatusConflict, "Report "+rep.ReportID+" already exists")
			return
		}
		h.logger.Errorf("create report %s: %v", rep.ReportID, err)
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "report_id": rep.ReportID})
}

func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.reports.ListReports(r.Context(), store.FilterFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, err, "")
		return
	}
	if items == nil {
		items = []records.IncidentReport{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.GetReport(r.Context(), urlParam(r, "report_id"))
	if err != nil {
		writeError(w, err, "Report not found")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	status, err := requestedStatus(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if status == "" {
		writeError(w, &records.ValidationError{Fields: []records.FieldError{{Field: "status", Message: "is required"}}}, "")
		return
	}
	if err := h.reports.UpdateReportStatus(r.Context(), urlParam(r, "report_id"), status); err != nil {
		writeError(w, err, "Report not updated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Report status updated"})
}

func (h *ReportsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	reportID := urlParam(r, "report_id")
	rep, err := records.DecodeReport(r.Body, h.now())
	if err != nil {
		writeError(w, err, "")
		return
	}
	if err := h.reports.ReplaceReport(r.Context(), reportID, rep); err != nil {
		writeError(w, err, "Report not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Report updated", "report_id": reportID})
}

func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reports.DeleteReport(r.Context(), urlParam(r, "report_id")); err != nil {
		writeError(w, err, "Report not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Report deleted"})
}

// Analytics is the short violation summary kept on the reports resource.
func (h *ReportsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	items, err := h.analytics.ViolationCounts(r.Context(), reportAnalyticsLimit)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if items == nil {
		items = []store.ViolationCount{}
	}
	writeJSON(w, http.StatusOK, items)
}
