// Package subscriptions serves the subscription CRUD API
package subscriptions

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apihttp "subkeeper/internal/http"
	"subkeeper/internal/models"
	"subkeeper/internal/services/store"
)

var subscriptions *store.Store

// Initialize sets up the subscriptions package with required dependencies
func Initialize(s *store.Store) {
	subscriptions = s
}

// RegisterRoutes registers all subscription routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/subscriptions", handleList)
	r.Post("/api/subscriptions", handleCreate)
	r.Delete("/api/subscriptions/{id}", handleDelete)
	r.Post("/api/subscriptions/reset", handleReset)
}

func handleList(w http.ResponseWriter, r *http.Request) {
	subs, err := subscriptions.Load(time.Now())
	if err != nil {
		log.Printf("Error loading subscriptions: %v", err)
		apihttp.ErrorResponse(w, "Error loading subscriptions", http.StatusInternalServerError)
		return
	}
	apihttp.RespondJSON(w, http.StatusOK, subs)
}

func handleCreate(w http.ResponseWriter, r *http.Request) {
	var sub models.Subscription
	if err := apihttp.DecodeJSON(r, &sub); err != nil {
		apihttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := subscriptions.Add(sub, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateID):
			apihttp.ErrorResponse(w, err.Error(), http.StatusConflict)
		case errors.Is(err, store.ErrInvalid):
			apihttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Error adding subscription: %v", err)
			apihttp.ErrorResponse(w, "Error saving subscription", http.StatusInternalServerError)
		}
		return
	}

	apihttp.RespondJSON(w, http.StatusCreated, added)
}

func handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := subscriptions.Remove(id, time.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apihttp.ErrorResponse(w, "Subscription not found", http.StatusNotFound)
			return
		}
		log.Printf("Error deleting subscription %s: %v", id, err)
		apihttp.ErrorResponse(w, "Error deleting subscription", http.StatusInternalServerError)
		return
	}

	apihttp.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func handleReset(w http.ResponseWriter, r *http.Request) {
	defaults, err := subscriptions.Reset(time.Now())
	if err != nil {
		log.Printf("Error resetting subscriptions: %v", err)
		apihttp.ErrorResponse(w, "Error resetting subscriptions", http.StatusInternalServerError)
		return
	}
	apihttp.RespondJSON(w, http.StatusOK, defaults)
}
