package handlers

import (
	"errors"
	"net/http"
	"time"

	"rightswatch/core/records"
	"rightswatch/core/store"
	"rightswatch/core/utils"
)

type CasesHandler struct {
	cases   store.CasesStore
	history store.StatusHistoryStore
	logger  *utils.Logger
	now     func() time.Time
}

func NewCasesHandler(cases store.CasesStore, history store.StatusHistoryStore, logger *utils.Logger) *CasesHandler {
	return &CasesHandler{cases: cases, history: history, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (h *CasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := records.DecodeCase(r.Body, h.now())
	if err != nil {
		writeError(w, err, "")
		return
	}
	id, err := h.cases.CreateCase(r.Context(), c)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeDetail(w, http.StatusConflict, "Case "+c.CaseID+" already exists")
			return
		}
		h.logger.Errorf("create case %s: %v", c.CaseID, err)
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "case_id": c.CaseID})
}

func (h *CasesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.cases.ListCases(r.Context(), store.FilterFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, err, "")
		return
	}
	if items == nil {
		items = []records.Case{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CasesHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.GetCase(r.Context(), urlParam(r, "case_id"))
	if err != nil {
		writeError(w, err, "Case not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CasesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caseID := urlParam(r, "case_id")
	status, err := requestedStatus(r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	if err := records.ValidateCaseStatus(status); err != nil {
		writeError(w, err, "")
		return
	}
	if err := h.cases.UpdateCaseStatus(r.Context(), caseID, status); err != nil {
		writeError(w, err, "Case not updated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Case status updated and tracked."})
}

func (h *CasesHandler) Replace(w http.ResponseWriter, r *http.Request) {
	caseID := urlParam(r, "case_id")
	c, err := records.DecodeCase(r.Body, h.now())
	if err != nil {
		writeError(w, err, "")
		return
	}
	if err := h.cases.ReplaceCase(r.Context(), caseID, c); err != nil {
		writeError(w, err, "Case not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Case updated", "case_id": caseID})
}

func (h *CasesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.cases.DeleteCase(r.Context(), urlParam(r, "case_id")); err != nil {
		writeError(w, err, "Case not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Case archived"})
}

func (h *CasesHandler) History(w http.ResponseWriter, r *http.Request) {
	items, err := h.history.ListStatusHistory(r.Context(), urlParam(r, "case_id"))
	if err != nil {
		writeError(w, err, "")
		return
	}
	if items == nil {
		items = []records.StatusHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, items)
}
