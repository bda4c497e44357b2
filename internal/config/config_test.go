package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LLM.Provider != "genai" {
		t.Errorf("expected Provider=genai, got %s", cfg.LLM.Provider)
	}
	if cfg.MaxDepthHint != 3 {
		t.Errorf("expected MaxDepthHint=3, got %d", cfg.MaxDepthHint)
	}
	if cfg.RootDir != "." {
		t.Errorf("expected RootDir=., got %s", cfg.RootDir)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.APIKey = "sk-test"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.LLM.Provider != "anthropic" {
		t.Errorf("expected Provider=anthropic, got %s", loaded.LLM.Provider)
	}
	if loaded.LLM.APIKey != "sk-test" {
		t.Errorf("expected APIKey=sk-test, got %s", loaded.LLM.APIKey)
	}
}

func TestConfig_Load_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "does-not-exist.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Provider != "genai" {
		t.Errorf("expected defaults, got provider=%s", cfg.LLM.Provider)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	os.Setenv("GEMINI_API_KEY", "env-gemini-key")
	defer os.Unsetenv("GEMINI_API_KEY")

	os.Setenv("HERMES_ROOT", "/tmp/some-root")
	defer os.Unsetenv("HERMES_ROOT")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.LLM.APIKey != "env-gemini-key" {
		t.Errorf("expected APIKey=env-gemini-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.RootDir != "/tmp/some-root" {
		t.Errorf("expected RootDir override, got %s", cfg.RootDir)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing API key")
	}

	cfg.LLM.APIKey = "test-key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}

	cfg.LLM.Provider = "invalid-provider"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}

	cfg.LLM.Provider = "genai"
	cfg.MaxDepthHint = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for non-positive max depth hint")
	}
}

func TestConfig_GetLLMTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GetLLMTimeout() == 0 {
		t.Error("GetLLMTimeout should return non-zero duration")
	}

	cfg.LLM.Timeout = "not-a-duration"
	if cfg.GetLLMTimeout().Seconds() != 120 {
		t.Errorf("expected fallback of 120s, got %v", cfg.GetLLMTimeout())
	}
}
