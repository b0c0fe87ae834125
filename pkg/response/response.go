package response

import (
	"encoding/json"
	"net/http"
)

type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func SuccessResponse(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, Envelope{Status: "success", Data: data})
}

func ErrorResponse(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, Envelope{Status: "error", Message: message})
}

func writeJSON(w http.ResponseWriter, code int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
