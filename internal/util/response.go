package util

import (
	"encoding/json"
	"net/http"

	"odyssey/internal/model/requestresponse"
)

// HandleError : writes the standard {"error":{"code","text"}} body
func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(requestresponse.ErrorResponse{
		Error: requestresponse.ErrorDetail{
			Code: statusCode,
			Text: message,
		},
	})
}

// NotFound : fallback for unknown routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	HandleError(w, "route not found", http.StatusNotFound)
}

// MethodNotAllowed : fallback for known routes hit with the wrong verb
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	HandleError(w, "method not allowed", http.StatusMethodNotAllowed)
}
