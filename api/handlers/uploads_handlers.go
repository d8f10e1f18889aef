package handlers

import (
	"errors"
	"net/http"

	"rightswatch/core/records"
	"rightswatch/core/uploads"
	"rightswatch/core/utils"
)

// multipartOverhead leaves room for boundaries and part headers on top of the file cap.
const multipartOverhead = 1 << 20

type UploadsHandler struct {
	storage  *uploads.Storage
	maxBytes int64
	logger   *utils.Logger
}

func NewUploadsHandler(storage *uploads.Storage, maxBytes int64, logger *utils.Logger) *UploadsHandler {
	return &UploadsHandler{storage: storage, maxBytes: maxBytes, logger: logger}
}

func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	}
	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, &records.ValidationError{Fields: []records.FieldError{{Field: "file", Message: "expected multipart/form-data"}}}, "")
		return
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, err, "")
				return
			}
			writeError(w, &records.ValidationError{Fields: []records.FieldError{{Field: "file", Message: "is required"}}}, "")
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}
		stored, err := h.storage.Save(r.Context(), part.FileName(), part)
		part.Close()
		if err != nil {
			h.logger.Errorf("upload %q: %v", part.FileName(), err)
			writeError(w, err, "")
			return
		}
		h.logger.Printf("upload stored %s size=%d", stored.Filename, stored.Size)
		writeJSON(w, http.StatusOK, stored)
		return
	}
}
