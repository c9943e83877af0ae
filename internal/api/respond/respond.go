// Package respond normalizes the API's JSON responses: success payloads are
// written as-is, every failure carries an explicit status and a
// {"error": {"kind", "message"}} body.
package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorBody is the standardized error object.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// JSON writes a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode: %v", err)
	}
}

// Error writes a standardized error response.
func Error(w http.ResponseWriter, r *http.Request, status int, kind, message string) {
	log.Printf("http error: status=%d kind=%s path=%s method=%s msg=%s",
		status, kind, r.URL.Path, r.Method, message)
	JSON(w, status, ErrorResponse{Error: ErrorBody{Kind: kind, Message: message}})
}
