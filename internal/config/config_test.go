package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	or, ok := cfg.GetLLMProvider("openrouter")
	if !ok {
		t.Fatal("expected default openrouter provider")
	}
	if or.APIKey != "${OPENROUTER_API_KEY}" {
		t.Errorf("expected env var placeholder, got %s", or.APIKey)
	}
	if !or.Enabled {
		t.Error("openrouter should be enabled by default")
	}

	if cfg.Defaults.LLMProvider != "openrouter" {
		t.Errorf("default LLM provider = %s", cfg.Defaults.LLMProvider)
	}
	if cfg.Quota.Backend != "memory" {
		t.Errorf("default quota backend = %s", cfg.Quota.Backend)
	}

	enabled := cfg.EnabledLLMProviders()
	if _, ok := enabled["openai"]; ok {
		t.Error("openai should be disabled by default")
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		os.Setenv("TEST_API_KEY", "secret123")
		defer os.Unsetenv("TEST_API_KEY")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestToProviderRegistryConfig(t *testing.T) {
	os.Setenv("TEST_OPENROUTER_KEY", "or-key-123")
	defer os.Unsetenv("TEST_OPENROUTER_KEY")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:    "openrouter",
				Model:   "anthropic/claude-sonnet-4",
				APIKey:  "${TEST_OPENROUTER_KEY}",
				Enabled: true,
			},
			"literal": {
				Type:   "openai",
				APIKey: "direct-key",
			},
		},
	}

	reg := cfg.ToProviderRegistryConfig()
	if reg.LLMProviders["openrouter"].APIKey != "or-key-123" {
		t.Errorf("env var reference not resolved: %s", reg.LLMProviders["openrouter"].APIKey)
	}
	if reg.LLMProviders["literal"].APIKey != "direct-key" {
		t.Errorf("literal key changed: %s", reg.LLMProviders["literal"].APIKey)
	}
}

func TestToQuotaConfig(t *testing.T) {
	cfg := &Config{Quota: QuotaCfg{Limit: 5, WindowHours: 12}}
	qc := cfg.ToQuotaConfig()
	if qc.Limit != 5 {
		t.Errorf("Limit = %d", qc.Limit)
	}
	if qc.Window != 12*time.Hour {
		t.Errorf("Window = %v", qc.Window)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		configContent := `
llm_providers:
  custom:
    type: mock
    enabled: true
quota:
  limit: 7
`
		if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		custom, ok := cfg.GetLLMProvider("custom")
		if !ok || custom.Type != "mock" {
			t.Errorf("custom provider not loaded: %+v", cfg.LLMProviders)
		}
		if cfg.Quota.Limit != 7 {
			t.Errorf("Quota.Limit = %d, want 7", cfg.Quota.Limit)
		}
	})
}

func TestWriteDefault(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "llm_providers:") {
		t.Error("written config missing llm_providers section")
	}
	if !strings.Contains(content, "${OPENROUTER_API_KEY}") {
		t.Error("written config missing env var placeholder")
	}

	// The written file must load back cleanly.
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("failed to load written config: %v", err)
	}
	if mgr.Get().Defaults.LLMProvider != "openrouter" {
		t.Errorf("round trip lost defaults: %+v", mgr.Get().Defaults)
	}
}
