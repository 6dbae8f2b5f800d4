package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campaignkit/slotpool/internal/domain/contact"
	"github.com/campaignkit/slotpool/internal/domain/search"
	"github.com/campaignkit/slotpool/internal/domain/slot"
)

// errorResponse is the JSON shape for every non-2xx reply.
type errorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Required  int    `json:"required,omitempty"`
	Available int    `json:"available,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

// writeDomainError maps the error taxonomy onto HTTP status codes:
// validation and shortfall are 400, missing entities 404, retryable
// conflicts 409, anything else (store unavailable) 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var insufficient *slot.InsufficientPoolError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Success:   false,
			Message:   insufficient.Error(),
			Required:  insufficient.Required,
			Available: insufficient.Available,
		})
	case errors.Is(err, contact.ErrInvalidChannel),
		errors.Is(err, contact.ErrEmptyLabel),
		errors.Is(err, contact.ErrNoValues),
		errors.Is(err, slot.ErrInvalidCount),
		errors.Is(err, slot.ErrInvalidFreshness),
		errors.Is(err, search.ErrEmptyQuery):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contact.ErrContactNotFound),
		errors.Is(err, slot.ErrSlotNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, slot.ErrConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}
