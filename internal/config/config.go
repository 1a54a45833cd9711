package config

import (
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
	Debug      bool   `yaml:"debug" json:"debug"`

	// Directories
	DataDirectory string `yaml:"data_directory" json:"data_directory"`

	// File paths
	SubscriptionsFile string `yaml:"subscriptions_file" json:"subscriptions_file"`

	// AI settings
	AIMock      bool   `yaml:"ai_mock" json:"ai_mock"`
	OpenAIKey   string `yaml:"-" json:"-"`
	OpenAIURL   string `yaml:"openai_url" json:"openai_url"`
	OpenAIModel string `yaml:"openai_model" json:"openai_model"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:        ":8080",
		Debug:             false,
		DataDirectory:     filepath.Join(wd, "data"),
		SubscriptionsFile: filepath.Join(wd, "data", "subscriptions.json"),
		OpenAIURL:         "https://api.openai.com/v1",
		OpenAIModel:       "gpt-4o-mini",
	}
}

// Load builds configuration from defaults, an optional YAML file and
// environment variables, in that order of precedence (env wins).
func Load() *Config {
	cfg := DefaultConfig()

	// Optional config file: SUBKEEPER_CONFIG, or subkeeper.yaml next to the binary
	configPath := os.Getenv("SUBKEEPER_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("subkeeper.yaml"); err == nil {
			configPath = "subkeeper.yaml"
		}
	}
	if configPath != "" {
		if err := cfg.applyFile(configPath); err != nil {
			log.Printf("Warning: could not load config file %s: %v", configPath, err)
		}
	}

	// Override with environment variables
	if addr := os.Getenv("SUBKEEPER_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if debug := os.Getenv("SUBKEEPER_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
	}
	if dataDir := os.Getenv("SUBKEEPER_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
		cfg.SubscriptionsFile = filepath.Join(dataDir, "subscriptions.json")
	}
	if mock := os.Getenv("SUBKEEPER_AI_MOCK"); mock == "true" || mock == "1" {
		cfg.AIMock = true
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAIKey = key
	}
	if url := os.Getenv("OPENAI_API_URL"); url != "" {
		cfg.OpenAIURL = url
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.OpenAIModel = model
	}

	cfg.ensureDirectories()

	return cfg
}

// applyFile overlays settings from a YAML config file
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	// A file that moves the data directory moves the subscriptions file with it
	if c.SubscriptionsFile == "" || filepath.Dir(c.SubscriptionsFile) != c.DataDirectory {
		c.SubscriptionsFile = filepath.Join(c.DataDirectory, "subscriptions.json")
	}
	return nil
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() {
	if err := os.MkdirAll(c.DataDirectory, 0755); err != nil {
		log.Printf("Warning: could not create directory %s: %v", c.DataDirectory, err)
	}
}
