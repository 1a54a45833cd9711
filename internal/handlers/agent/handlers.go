// Package agent serves the AI advisor endpoints
package agent

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	apihttp "subkeeper/internal/http"
	"subkeeper/internal/models"
	"subkeeper/internal/services/advisor"
)

var adv *advisor.Advisor

// Initialize sets up the agent package with required dependencies
func Initialize(a *advisor.Advisor) {
	adv = a
}

// RegisterRoutes registers all advisor routes
func RegisterRoutes(r chi.Router) {
	r.Post("/api/ai/agent", handleAgent)
	r.Post("/api/ai/categorize", handleCategorize)
	r.Post("/api/ai/chat", handleChat)
}

func handleAgent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subscriptions []models.Subscription `json:"subscriptions"`
	}
	if err := apihttp.DecodeJSON(r, &body); err != nil {
		apihttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Keep records the agent can reason about; malformed entries are dropped
	// rather than failing the whole request.
	valid := make([]models.Subscription, 0, len(body.Subscriptions))
	for _, sub := range body.Subscriptions {
		if sub.ID != "" && sub.Name != "" && sub.MonthlyCost() > 0 {
			valid = append(valid, sub)
		}
	}
	if len(valid) == 0 {
		apihttp.ErrorResponse(w, "Provide at least one valid subscription", http.StatusBadRequest)
		return
	}

	result, err := adv.Analyze(r.Context(), valid)
	if err != nil {
		log.Printf("Error running agent: %v", err)
		apihttp.ErrorResponse(w, "Error running agent", http.StatusInternalServerError)
		return
	}

	apihttp.RespondJSON(w, http.StatusOK, result)
}

func handleCategorize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Notes string `json:"notes"`
		URL   string `json:"url"`
	}
	if err := apihttp.DecodeJSON(r, &body); err != nil {
		apihttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.Name == "" {
		apihttp.ErrorResponse(w, "'name' is required", http.StatusBadRequest)
		return
	}

	result, err := adv.Categorize(r.Context(), body.Name, body.Notes, body.URL)
	if err != nil {
		log.Printf("Error categorizing %q: %v", body.Name, err)
		apihttp.ErrorResponse(w, "Error categorizing subscription", http.StatusInternalServerError)
		return
	}

	apihttp.RespondJSON(w, http.StatusOK, result)
}

func handleChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	if err := apihttp.DecodeJSON(r, &body); err != nil {
		apihttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	reply, err := adv.Chat(r.Context(), body.Messages)
	if err != nil {
		apihttp.ErrorResponse(w, "Provide at least one user message", http.StatusBadRequest)
		return
	}

	apihttp.RespondJSON(w, http.StatusOK, models.ChatReply{Reply: reply})
}
