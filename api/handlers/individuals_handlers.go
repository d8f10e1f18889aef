package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"rightswatch/core/records"
	"rightswatch/core/store"
)

type IndividualsHandler struct {
	store store.IndividualsStore
	now   func() time.Time
}

func NewIndividualsHandler(st store.IndividualsStore) *IndividualsHandler {
	return &IndividualsHandler{store: st, now: func() time.Time { return time.Now().UTC() }}
}

func (h *IndividualsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ind, err := records.DecodeIndividual(r.Body, h.now())
	if err != nil {
		writeError(w, err, "")
		return
	}
	id, err := h.store.CreateIndividual(r.Context(), ind)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *IndividualsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListIndividuals(r.Context())
	if err != nil {
		writeError(w, err, "")
		return
	}
	if items == nil {
		items = []records.Individual{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *IndividualsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ind, err := h.store.GetIndividual(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, err, "Individual not found")
		return
	}
	writeJSON(w, http.StatusOK, ind)
}

func (h *IndividualsHandler) UpdateRisk(w http.ResponseWriter, r *http.Request) {
	var risk map[string]any
	if err := json.NewDecoder(r.Body).Decode(&risk); err != nil || risk == nil {
		writeError(w, &records.ValidationError{Fields: []records.FieldError{{Field: "risk_assessment", Message: "expected a JSON object"}}}, "")
		return
	}
	if err := h.store.UpdateIndividualRisk(r.Context(), urlParam(r, "id"), risk); err != nil {
		writeError(w, err, "Individual not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Risk assessment updated"})
}
