package middleware

import (
	"encoding/json"
	"net/http"
)

// errorBody matches the handler package's error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// writeJSONError rejects a request before it reaches a handler.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
