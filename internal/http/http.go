// Package http holds small helpers shared by the JSON API handlers
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// maxBodySize caps request bodies accepted by the API (1 MiB)
const maxBodySize = 1 << 20

// RespondJSON writes data as a JSON response
func RespondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// ErrorResponse sends a JSON error response
func ErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	log.Printf("Error: %s (status %d)", message, statusCode)
	RespondJSON(w, statusCode, map[string]string{"error": message})
}

// DecodeJSON reads and decodes a JSON request body into dst
func DecodeJSON(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("request body is empty")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
