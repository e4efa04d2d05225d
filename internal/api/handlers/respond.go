package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/carevox/carevox/internal/pipeline"
)

// Every endpoint answers with one of two envelope shapes:
// {"success":true,"data":{...}} or {"success":false,"error":{...}}.

type successEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type errorBody struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	pe := pipeline.Classify(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(pe.HTTPStatus())
	json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorBody{
			Kind:       string(pe.Kind),
			Message:    pe.Message,
			Details:    pe.Details,
			RetryAfter: pe.RetryAfter,
		},
	})
}
