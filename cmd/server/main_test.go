package main

import (
	"path/filepath"
	"testing"

	"subkeeper/internal/config"
	"subkeeper/internal/models"
	"subkeeper/internal/services/storage"
	"subkeeper/internal/testutil"
)

// setupTestServer initializes dependencies on a temp data directory
func setupTestServer(t *testing.T) *testutil.TestServer {
	t.Helper()

	dataDir := t.TempDir()
	cfg := &config.Config{
		ListenAddr:        ":0",
		Debug:             true,
		DataDirectory:     dataDir,
		SubscriptionsFile: filepath.Join(dataDir, "subscriptions.json"),
		AIMock:            true,
		OpenAIURL:         "https://api.openai.com/v1",
		OpenAIModel:       "gpt-4o-mini",
	}

	backend, err := storage.New(cfg.DataDirectory)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	deps := SetupDependencies(cfg, backend)
	return testutil.NewTestServer(t, SetupRouter(deps))
}

// TestHealthEndpoint tests the /api/health endpoint
func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/api/health")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		Contains(`"status":"ok"`)
}

// TestVersionEndpoint tests the /api/version endpoint
func TestVersionEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/api/version")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		Contains(`"version"`)
}

// TestSubscriptionsDefaults tests that a fresh server serves the seed list
func TestSubscriptionsDefaults(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/api/subscriptions")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		ContainsAll("Netflix Premium", "Spotify Family", "Adobe Creative Cloud")
}

// TestSubscriptionCreateAndDelete tests the full CRUD cycle
func TestSubscriptionCreateAndDelete(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.PostJSON("/api/subscriptions", models.Subscription{
		Name:            "iCloud 200GB",
		Cost:            149,
		Currency:        "₽",
		Months:          1,
		NextPaymentDate: "2026-04-01",
	})
	testutil.AssertResponse(t, resp).Status(201).ContentTypeJSON()

	var created models.Subscription
	resp = ts.GET("/api/subscriptions")
	var subs []models.Subscription
	testutil.DecodeBody(t, resp, &subs)

	// Defaults get materialized on first write, plus the new record
	if len(subs) != 4 {
		t.Fatalf("got %d subscriptions, want 4", len(subs))
	}
	for _, sub := range subs {
		if sub.Name == "iCloud 200GB" {
			created = sub
		}
	}
	if created.ID == "" {
		t.Fatal("created subscription has no id")
	}
	if created.FrequencyLabel != "Ежемесячно" {
		t.Errorf("frequency label = %q", created.FrequencyLabel)
	}

	resp = ts.DELETE("/api/subscriptions/" + created.ID)
	testutil.AssertResponse(t, resp).StatusOK().Contains(`"deleted"`)

	resp = ts.DELETE("/api/subscriptions/" + created.ID)
	testutil.AssertResponse(t, resp).Status(404)
}

// TestSubscriptionCreateInvalid tests validation failures
func TestSubscriptionCreateInvalid(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	tests := []struct {
		name string
		sub  models.Subscription
	}{
		{"empty name", models.Subscription{Cost: 100, Currency: "₽", Months: 1}},
		{"zero cost", models.Subscription{Name: "X", Currency: "₽", Months: 1}},
		{"no currency", models.Subscription{Name: "X", Cost: 100, Months: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.PostJSON("/api/subscriptions", tt.sub)
			testutil.AssertResponse(t, resp).Status(400).Contains(`"error"`)
		})
	}
}

// TestSubscriptionsReset tests restoring the default list
func TestSubscriptionsReset(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.PostJSON("/api/subscriptions", models.Subscription{
		Name: "Extra", Cost: 100, Currency: "₽", Months: 1, NextPaymentDate: "2026-04-01",
	})
	testutil.AssertResponse(t, resp).Status(201)

	resp = ts.POST("/api/subscriptions/reset", "application/json", nil)
	testutil.AssertResponse(t, resp).StatusOK().NotContains("Extra")

	resp = ts.GET("/api/subscriptions")
	var subs []models.Subscription
	testutil.DecodeBody(t, resp, &subs)
	if len(subs) != 3 {
		t.Errorf("got %d subscriptions after reset, want 3", len(subs))
	}
}

// TestAnalyticsEndpoint tests the analytics snapshot
func TestAnalyticsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/api/analytics")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		ContainsAll(
			`"monthlyTotals"`,
			`"monthlyForecast"`,
			`"upcomingPayments"`,
			`"topSubscriptions"`,
			`"frequencyDistribution"`,
			`"calendar"`,
		)
}

// TestAgentEndpoint tests the optimization agent in mock mode
func TestAgentEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	payload := map[string]interface{}{
		"subscriptions": []models.Subscription{
			{ID: "1", Name: "Netflix", Cost: 599, Currency: "₽", Months: 1},
			{ID: "2", Name: "Кинопоиск", Cost: 300, Currency: "₽", Months: 1},
		},
	}

	resp := ts.PostJSON("/api/ai/agent", payload)
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContentTypeJSON().
		ContainsAll(`"conflicts"`, `"advice"`, `"monthlyBefore":899`, `"savingPerMonth":599`)
}

// TestAgentEndpointRejectsEmpty tests agent input validation
func TestAgentEndpointRejectsEmpty(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.PostJSON("/api/ai/agent", map[string]interface{}{
		"subscriptions": []models.Subscription{},
	})
	testutil.AssertResponse(t, resp).Status(400)

	// Records the agent can't reason about are dropped; all-invalid is a 400
	resp = ts.PostJSON("/api/ai/agent", map[string]interface{}{
		"subscriptions": []models.Subscription{{Name: "no id or cost"}},
	})
	testutil.AssertResponse(t, resp).Status(400)
}

// TestCategorizeEndpoint tests the categorizer in mock mode
func TestCategorizeEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.PostJSON("/api/ai/categorize", map[string]string{"name": "Netflix"})
	testutil.AssertResponse(t, resp).
		StatusOK().
		Contains(`"category":"Other"`)

	resp = ts.PostJSON("/api/ai/categorize", map[string]string{"notes": "no name"})
	testutil.AssertResponse(t, resp).Status(400)
}

// TestChatEndpoint tests the chat advisor in mock mode
func TestChatEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.PostJSON("/api/ai/chat", map[string]interface{}{
		"messages": []models.ChatMessage{
			{Role: "user", Content: "Плачу за Netflix и Spotify"},
		},
	})
	testutil.AssertResponse(t, resp).
		StatusOK().
		Contains(`"reply"`)

	resp = ts.PostJSON("/api/ai/chat", map[string]interface{}{
		"messages": []models.ChatMessage{},
	})
	testutil.AssertResponse(t, resp).Status(400)
}

// TestStorageLifecycle tests the encrypted-storage endpoints
func TestStorageLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp := ts.GET("/api/storage/status")
	testutil.AssertResponse(t, resp).
		StatusOK().
		ContainsAll(`"encrypted":false`, `"unlocked":true`)

	// Materialize the subscriptions file so there is something to encrypt
	resp = ts.POST("/api/subscriptions/reset", "application/json", nil)
	testutil.AssertResponse(t, resp).StatusOK()

	resp = ts.PostJSON("/api/storage/encrypt", map[string]string{"passphrase": "correct horse battery"})
	testutil.AssertResponse(t, resp).StatusOK().Contains(`"encrypted"`)

	resp = ts.GET("/api/storage/status")
	testutil.AssertResponse(t, resp).StatusOK().Contains(`"encrypted":true`)

	resp = ts.PostJSON("/api/storage/decrypt", map[string]string{"passphrase": "not the right one"})
	testutil.AssertResponse(t, resp).Status(401)

	resp = ts.POST("/api/storage/lock", "application/json", nil)
	testutil.AssertResponse(t, resp).StatusOK().Contains(`"locked"`)

	// Data is unreadable while locked
	resp = ts.GET("/api/subscriptions")
	testutil.AssertResponse(t, resp).Status(500)

	resp = ts.PostJSON("/api/storage/unlock", map[string]string{"passphrase": "correct horse battery"})
	testutil.AssertResponse(t, resp).StatusOK().Contains(`"unlocked"`)

	resp = ts.GET("/api/subscriptions")
	testutil.AssertResponse(t, resp).StatusOK()
}
