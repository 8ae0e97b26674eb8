package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON body with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError writes a JSON error body. The underlying error, when present,
// goes to the log rather than the client.
func respondError(log logrus.FieldLogger, w http.ResponseWriter, status int, userMsg string, err error) {
	if err != nil && log != nil {
		log.WithError(err).Error(userMsg)
	}
	respondJSON(w, status, errorResponse{Error: userMsg})
}
