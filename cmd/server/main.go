package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/term"

	"subkeeper/internal/config"
	"subkeeper/internal/handlers/agent"
	analyticsapi "subkeeper/internal/handlers/analytics"
	"subkeeper/internal/handlers/subscriptions"
	apihttp "subkeeper/internal/http"
	"subkeeper/internal/services/advisor"
	"subkeeper/internal/services/ai"
	"subkeeper/internal/services/storage"
	"subkeeper/internal/services/store"
	"subkeeper/internal/version"
)

// Dependencies holds everything the router needs
type Dependencies struct {
	Config  *config.Config
	Backend *storage.Storage
	Store   *store.Store
	Advisor *advisor.Advisor
}

func main() {
	cfg := config.Load()
	log.Printf("Starting subkeeper on %s", cfg.ListenAddr)

	if warning := version.Get().Check(); warning != "" {
		log.Println(warning)
	}
	if cfg.AIMock {
		log.Println("AI mock mode enabled, no LLM calls will be made")
	}

	backend, err := storage.New(cfg.DataDirectory)
	if err != nil {
		log.Fatalf("Could not open data directory: %v", err)
	}
	log.Printf("Data directory: %s", backend.BaseDir())

	if backend.IsEncrypted() && !backend.IsUnlocked() {
		if err := unlockInteractive(backend); err != nil {
			log.Fatalf("Could not unlock data directory: %v", err)
		}
		log.Println("Data directory unlocked")
	}

	deps := SetupDependencies(cfg, backend)
	r := SetupRouter(deps)

	log.Printf("Server starting on %s", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}

// SetupDependencies wires the services from configuration
func SetupDependencies(cfg *config.Config, backend *storage.Storage) *Dependencies {
	llm := ai.New(cfg.OpenAIURL, cfg.OpenAIModel, cfg.OpenAIKey, cfg.AIMock)
	return &Dependencies{
		Config:  cfg,
		Backend: backend,
		Store:   store.New(cfg.SubscriptionsFile, backend),
		Advisor: advisor.New(llm),
	}
}

// SetupRouter builds the chi router with all routes registered
func SetupRouter(deps *Dependencies) chi.Router {
	subscriptions.Initialize(deps.Store)
	analyticsapi.Initialize(deps.Store)
	agent.Initialize(deps.Advisor)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	subscriptions.RegisterRoutes(r)
	analyticsapi.RegisterRoutes(r)
	agent.RegisterRoutes(r)

	r.Get("/api/health", handleHealth)
	r.Get("/api/version", handleVersion)

	// Encrypted-storage management
	r.Get("/api/storage/status", handleStorageStatus(deps.Backend))
	r.Post("/api/storage/unlock", handleStorageUnlock(deps.Backend))
	r.Post("/api/storage/lock", handleStorageLock(deps.Backend))
	r.Post("/api/storage/encrypt", handleStorageEncrypt(deps.Backend))
	r.Post("/api/storage/decrypt", handleStorageDecrypt(deps.Backend))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	apihttp.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	apihttp.RespondJSON(w, http.StatusOK, version.Get())
}

func handleStorageStatus(backend *storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apihttp.RespondJSON(w, http.StatusOK, map[string]bool{
			"encrypted": backend.IsEncrypted(),
			"unlocked":  backend.IsUnlocked(),
		})
	}
}

type passphraseRequest struct {
	Passphrase string `json:"passphrase"`
}

func handleStorageUnlock(backend *storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body passphraseRequest
		if err := apihttp.DecodeJSON(r, &body); err != nil {
			apihttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := backend.Unlock(body.Passphrase); err != nil {
			apihttp.ErrorResponse(w, "Incorrect passphrase", http.StatusUnauthorized)
			return
		}
		apihttp.RespondJSON(w, http.StatusOK, map[string]string{"status": "unlocked"})
	}
}

func handleStorageLock(backend *storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backend.Lock()
		apihttp.RespondJSON(w, http.StatusOK, map[string]string{"status": "locked"})
	}
}

func handleStorageEncrypt(backend *storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body passphraseRequest
		if err := apihttp.DecodeJSON(r, &body); err != nil {
			apihttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := backend.EnableEncryption(body.Passphrase); err != nil {
			apihttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		apihttp.RespondJSON(w, http.StatusOK, map[string]string{"status": "encrypted"})
	}
}

func handleStorageDecrypt(backend *storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body passphraseRequest
		if err := apihttp.DecodeJSON(r, &body); err != nil {
			apihttp.ErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := backend.DisableEncryption(body.Passphrase); err != nil {
			apihttp.ErrorResponse(w, "Incorrect passphrase", http.StatusUnauthorized)
			return
		}
		apihttp.RespondJSON(w, http.StatusOK, map[string]string{"status": "decrypted"})
	}
}

// unlockInteractive prompts for the passphrase on the terminal, three tries
func unlockInteractive(backend *storage.Storage) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("data directory is encrypted; unlock via POST /api/storage/unlock or run from a terminal")
	}

	for attempt := 0; attempt < 3; attempt++ {
		fmt.Fprint(os.Stderr, "Passphrase: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read passphrase: %w", err)
		}
		if err := backend.Unlock(string(raw)); err != nil {
			log.Printf("Unlock failed: %v", err)
			continue
		}
		return nil
	}

	return fmt.Errorf("too many failed attempts")
}
