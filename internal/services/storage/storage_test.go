package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	// Write unencrypted file
	testFile := filepath.Join(dir, "subscriptions.json")
	original := []byte(`[{"id":"1","name":"Netflix Premium","cost":599,"currency":"₽","months":1}]`)

	if err := store.WriteFile(testFile, original, 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	read, err := store.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch before encryption")
	}

	// Enable encryption
	passphrase := "testpassphrase123"
	if err := store.EnableEncryption(passphrase); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}
	if !store.IsEncrypted() {
		t.Error("Expected IsEncrypted() to return true")
	}

	// Verify file is encrypted on disk
	rawData, _ := os.ReadFile(testFile)
	if !isAgeEncrypted(rawData) {
		t.Error("File should be encrypted on disk")
	}

	// Read should still return original content (decrypted)
	read, err = store.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read encrypted file: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch after encryption: got %q, want %q", string(read), string(original))
	}

	// Lock and unlock
	store.Lock()
	if store.IsUnlocked() {
		t.Error("Expected storage to be locked")
	}
	if err := store.Unlock(passphrase); err != nil {
		t.Fatalf("Failed to unlock: %v", err)
	}

	read, err = store.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read after unlock: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch after unlock")
	}

	// Disable encryption
	if err := store.DisableEncryption(passphrase); err != nil {
		t.Fatalf("Failed to disable encryption: %v", err)
	}
	if store.IsEncrypted() {
		t.Error("Expected IsEncrypted() to return false after disable")
	}

	rawData, _ = os.ReadFile(testFile)
	if isAgeEncrypted(rawData) {
		t.Error("File should be decrypted on disk")
	}
	if string(rawData) != string(original) {
		t.Errorf("Raw content mismatch after decryption")
	}
}

func TestWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	testFile := filepath.Join(dir, "subscriptions.json")
	if err := store.WriteFile(testFile, []byte(`[]`), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := store.EnableEncryption("correctpassphrase"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	store.Lock()

	if err := store.Unlock("wrongpassphrase"); err == nil {
		t.Error("Expected error with wrong passphrase")
	}
}

func TestPassphraseTooShort(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	if err := store.EnableEncryption("short"); err == nil {
		t.Error("Expected error for short passphrase")
	}
}

func TestMarkerFilesStayPlain(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	if err := store.EnableEncryption("testpassphrase123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	markerData, err := os.ReadFile(filepath.Join(dir, markerFile))
	if err != nil {
		t.Fatalf("Failed to read marker file: %v", err)
	}
	if isAgeEncrypted(markerData) {
		t.Error("Marker file should never be encrypted")
	}
}

func TestNewFilesEncrypted(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	if err := store.EnableEncryption("testpassphrase123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	// Files written after enabling encryption are encrypted on disk
	newFile := filepath.Join(dir, "subscriptions.json")
	content := []byte(`[{"id":"1","name":"Spotify Family","cost":269,"currency":"₽","months":1}]`)
	if err := store.WriteFile(newFile, content, 0644); err != nil {
		t.Fatalf("Failed to write new file: %v", err)
	}

	rawData, _ := os.ReadFile(newFile)
	if !isAgeEncrypted(rawData) {
		t.Error("New file should be encrypted on disk")
	}

	read, err := store.ReadFile(newFile)
	if err != nil {
		t.Fatalf("Failed to read new file: %v", err)
	}
	if string(read) != string(content) {
		t.Errorf("Content mismatch: got %q, want %q", string(read), string(content))
	}
}

func TestReopenDetectsEncryption(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	if err := store.EnableEncryption("testpassphrase123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	// A fresh Storage over the same directory sees the marker and starts locked
	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	if !reopened.IsEncrypted() {
		t.Error("Reopened storage should detect encryption")
	}
	if reopened.IsUnlocked() {
		t.Error("Reopened storage should start locked")
	}
}
