// subctl inspects and exports subscription analytics from the command line.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"subkeeper/internal/models"
	"subkeeper/internal/services/analytics"
	"subkeeper/internal/services/storage"
	"subkeeper/internal/services/store"
)

var flagDataDir string

var rootCmd = &cobra.Command{
	Use:           "subctl",
	Short:         "Subscription tracker CLI",
	Long:          "Inspect the subscription list, its cost projections, and export everything to a spreadsheet.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	wd, _ := os.Getwd()
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data", "d", filepath.Join(wd, "data"), "Data directory")
}

// loadSnapshot is the shared loading path used by all commands
func loadSnapshot() ([]models.Subscription, *models.Analytics, error) {
	backend, err := storage.New(flagDataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open data directory: %w", err)
	}

	if backend.IsEncrypted() && !backend.IsUnlocked() {
		if err := unlock(backend); err != nil {
			return nil, nil, err
		}
	}

	now := time.Now()
	subs, err := store.New(filepath.Join(flagDataDir, "subscriptions.json"), backend).Load(now)
	if err != nil {
		return nil, nil, err
	}

	return subs, analytics.Compute(subs, now), nil
}

func unlock(backend *storage.Storage) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("data directory is encrypted; run from a terminal to enter the passphrase")
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	return backend.Unlock(string(raw))
}
