package handlers

import (
	"net/http"

	"rightswatch/config"
	"rightswatch/core/store"
)

type AnalyticsHandler struct {
	store store.AnalyticsStore
	cfg   config.AnalyticsConfig
}

func NewAnalyticsHandler(st store.AnalyticsStore, cfg config.AnalyticsConfig) *AnalyticsHandler {
	return &AnalyticsHandler{store: st, cfg: cfg}
}

// limit lets ?limit= lower a configured cap but never raise it.
func limit(r *http.Request, ceiling int) int {
	n := parseIntDefault(r.URL.Query().Get("limit"), ceiling)
	if n <= 0 || n > ceiling {
		return ceiling
	}
	return n
}

func (h *AnalyticsHandler) Violations(w http.ResponseWriter, r *http.Request) {
	ceiling, _, _ := h.cfg.Limits()
	items, err := h.store.ViolationCounts(r.Context(), limit(r, ceiling))
	if err != nil {
		writeError(w, err, "")
		return
	}
	if items == nil {
		items = []store.ViolationCount{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AnalyticsHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	_, ceiling, _ := h.cfg.Limits()
	items, err := h.store.MonthlyTimeline(r.Context(), limit(r, ceiling))
	if err != nil {
		writeError(w, err, "")
		return
	}
	if items == nil {
		items = []store.TimelineBucket{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AnalyticsHandler) Geodata(w http.ResponseWriter, r *http.Request) {
	_, _, ceiling := h.cfg.Limits()
	items, err := h.store.CityClusters(r.Context(), limit(r, ceiling))
	if err != nil {
		writeError(w, err, "")
		return
	}
	if items == nil {
		items = []store.CityCluster{}
	}
	writeJSON(w, http.StatusOK, items)
}
