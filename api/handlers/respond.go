package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"rightswatch/core/rbac"
	"rightswatch/core/records"
	"rightswatch/core/store"
	"rightswatch/core/uploads"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeError maps the error taxonomy onto a status code. notFound replaces
// the store message on a miss so callers can name the missing record.
func writeError(w http.ResponseWriter, err error, notFound string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, uploads.ErrTooLarge):
		writeDetail(w, http.StatusRequestEntityTooLarge, "Payload too large")
	case records.IsValidation(err), errors.Is(err, uploads.ErrEmptyName):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		if notFound == "" {
			notFound = "Not found"
		}
		writeDetail(w, http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrConflict):
		writeDetail(w, http.StatusConflict, err.Error())
	case errors.Is(err, rbac.ErrInvalidRole):
		writeDetail(w, http.StatusForbidden, "Invalid role")
	case errors.Is(err, rbac.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "Forbidden")
	default:
		writeDetail(w, http.StatusInternalServerError, err.Error())
	}
}

type statusPayload struct {
	Status string `json:"status"`
}

// requestedStatus reads the new status from ?status= or a JSON body.
func requestedStatus(r *http.Request) (string, error) {
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		return v, nil
	}
	if r.Body == nil || r.ContentLength == 0 {
		return "", nil
	}
	var p statusPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", err
		}
		return "", &records.ValidationError{Fields: []records.FieldError{{Field: "body", Message: "expected {\"status\": string}"}}}
	}
	return strings.TrimSpace(p.Status), nil
}

func parseIntDefault(val string, def int) int {
	if val == "" {
		return def
	}
	if n, err := strconv.Atoi(val); err == nil {
		return n
	}
	return def
}
