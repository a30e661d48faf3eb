package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Save original env and restore after test
	originalEnv := os.Environ()
	defer func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i, c := range env {
				if c == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}()

	// Clear env to test defaults
	os.Clearenv()

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"StoreProvider", cfg.StoreProvider, "postgres"},
		{"QueueProvider", cfg.QueueProvider, "nats"},
		{"CacheProvider", cfg.CacheProvider, "noop"},
		{"TokenizerEncoding", cfg.TokenizerEncoding, "cl100k_base"},
		{"MaxTokens", cfg.MaxTokens, 1200},
		{"MaxSplitDepth", cfg.MaxSplitDepth, 5},
		{"MinSectionChars", cfg.MinSectionChars, 16},
		{"EmbeddingModel", cfg.EmbeddingModel, "text-embedding-3-small"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}

	if len(cfg.IgnoreSections) != 0 {
		t.Errorf("expected empty ignore list by default, got %v", cfg.IgnoreSections)
	}
}

func TestLoadFromEnv(t *testing.T) {
	// Save and restore env
	originalMax := os.Getenv("MAX_TOKENS")
	originalIgnore := os.Getenv("IGNORE_SECTIONS")
	defer func() {
		os.Setenv("MAX_TOKENS", originalMax)
		os.Setenv("IGNORE_SECTIONS", originalIgnore)
	}()

	os.Setenv("MAX_TOKENS", "1600")
	os.Setenv("IGNORE_SECTIONS", "References,External links")

	cfg := Load()

	if cfg.MaxTokens != 1600 {
		t.Errorf("expected max tokens 1600, got %d", cfg.MaxTokens)
	}
	if len(cfg.IgnoreSections) != 2 || cfg.IgnoreSections[1] != "External links" {
		t.Errorf("expected parsed ignore list, got %v", cfg.IgnoreSections)
	}
}
