// Package analytics serves the computed analytics snapshot
package analytics

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apihttp "subkeeper/internal/http"
	"subkeeper/internal/services/analytics"
	"subkeeper/internal/services/store"
)

var subscriptions *store.Store

// Initialize sets up the analytics package with required dependencies
func Initialize(s *store.Store) {
	subscriptions = s
}

// RegisterRoutes registers all analytics routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/analytics", handleAnalytics)
}

func handleAnalytics(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	subs, err := subscriptions.Load(now)
	if err != nil {
		log.Printf("Error loading subscriptions: %v", err)
		apihttp.ErrorResponse(w, "Error loading subscriptions", http.StatusInternalServerError)
		return
	}

	apihttp.RespondJSON(w, http.StatusOK, analytics.Compute(subs, now))
}
