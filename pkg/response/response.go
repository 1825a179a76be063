package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// Response represents a standard API response structure
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful JSON response
func Success(w http.ResponseWriter, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	resp := Response{
		Status:  "success",
		Message: message,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// Error sends an error JSON response with the given status code
func Error(w http.ResponseWriter, statusCode int, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := Response{
		Status: "error",
		Error:  errMsg,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// BadRequest sends a 400 Bad Request response
func BadRequest(w http.ResponseWriter, errMsg string) {
	Error(w, http.StatusBadRequest, errMsg)
}

// NotFound sends a 404 Not Found response
func NotFound(w http.ResponseWriter, errMsg string) {
	Error(w, http.StatusNotFound, errMsg)
}

// InternalError sends a 500 Internal Server Error response
func InternalError(w http.ResponseWriter, errMsg string) {
	Error(w, http.StatusInternalServerError, errMsg)
}
