// Package store persists the subscription list as a single JSON document
// in the data directory, going through the storage layer so encryption at
// rest is transparent.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"subkeeper/internal/models"
	"subkeeper/internal/services/storage"
)

var (
	// ErrNotFound is returned when no subscription has the requested id
	ErrNotFound = errors.New("subscription not found")

	// ErrDuplicateID is returned when adding a subscription whose id is taken
	ErrDuplicateID = errors.New("subscription id already exists")

	// ErrInvalid wraps validation failures on Add
	ErrInvalid = errors.New("invalid subscription")
)

// Store manages the persisted subscription list
type Store struct {
	path    string
	backend *storage.Storage
	mu      sync.Mutex
}

// New creates a Store persisting to the given file path through backend
func New(path string, backend *storage.Storage) *Store {
	return &Store{path: path, backend: backend}
}

// Load reads the subscription list. A missing file seeds the default list
// (anchored relative to now) without creating it on disk; a file that fails
// to parse or validate is an error, never silently replaced.
func (s *Store) Load(now time.Time) ([]models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(now)
}

func (s *Store) load(now time.Time) ([]models.Subscription, error) {
	if _, err := s.backend.Stat(s.path); os.IsNotExist(err) {
		return models.DefaultSubscriptions(now), nil
	}

	data, err := s.backend.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var subs []models.Subscription
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	for i := range subs {
		if err := subs[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid record in %s: %w", s.path, err)
		}
	}

	return subs, nil
}

// Save writes the full subscription list
func (s *Store) Save(subs []models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(subs)
}

func (s *Store) save(subs []models.Subscription) error {
	if subs == nil {
		subs = []models.Subscription{}
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode subscriptions: %w", err)
	}
	if err := s.backend.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// Add validates and appends a subscription, assigning an id and a frequency
// label when they are missing, and persists the updated list.
func (s *Store) Add(sub models.Subscription, now time.Time) (models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.FrequencyLabel == "" {
		sub.FrequencyLabel = models.FrequencyLabelForMonths(sub.Months)
	}
	if err := sub.Validate(); err != nil {
		return models.Subscription{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	subs, err := s.load(now)
	if err != nil {
		return models.Subscription{}, err
	}
	for _, existing := range subs {
		if existing.ID == sub.ID {
			return models.Subscription{}, fmt.Errorf("%s: %w", sub.ID, ErrDuplicateID)
		}
	}

	subs = append(subs, sub)
	if err := s.save(subs); err != nil {
		return models.Subscription{}, err
	}
	return sub, nil
}

// Remove deletes the subscription with the given id and persists the list
func (s *Store) Remove(id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load(now)
	if err != nil {
		return err
	}

	kept := subs[:0:0]
	for _, sub := range subs {
		if sub.ID != id {
			kept = append(kept, sub)
		}
	}
	if len(kept) == len(subs) {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	return s.save(kept)
}

// Reset replaces the stored list with the defaults and returns them
func (s *Store) Reset(now time.Time) ([]models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := models.DefaultSubscriptions(now)
	if err := s.save(defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}
