package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsWhenNoFile(t *testing.T) {
	cm, err := NewManager(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		// viper errors on an explicit missing file; fall through to defaults
		// only when no file was named.
		t.Skip("explicit missing file accepted")
	}

	cm, err = NewManager("")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	cfg := cm.Get()
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o" {
		t.Fatalf("llm defaults: %+v", cfg.LLM)
	}
	if cfg.LLM.MaxRetries != 10 {
		t.Fatalf("max_retries default = %d", cfg.LLM.MaxRetries)
	}
	if cfg.Server.Port != 8000 {
		t.Fatalf("server port default = %d", cfg.Server.Port)
	}
	if len(cfg.OCR.Languages) != 1 || cfg.OCR.Languages[0] != "eng" {
		t.Fatalf("ocr languages default: %v", cfg.OCR.Languages)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `llm:
  provider: azure
  endpoint: https://example.openai.azure.com
  api_version: 2024-06-01
  model: gpt-4o-mini
  timeout: 90s
server:
  port: 9000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	cfg := cm.Get()
	if cfg.LLM.Provider != "azure" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("llm: %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != 90*time.Second {
		t.Fatalf("timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("SURVAIZE_TEST_KEY", "secret")
	tests := []struct {
		in, want string
	}{
		{"${SURVAIZE_TEST_KEY}", "secret"},
		{"plain", "plain"},
		{"", ""},
		{"prefix-${SURVAIZE_TEST_KEY}", "prefix-secret"},
		{"${UNSET_VARIABLE_XYZ}", ""},
	}
	for _, tt := range tests {
		if got := ResolveEnvVars(tt.in); got != tt.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProviderConfigResolvesKey(t *testing.T) {
	t.Setenv("SURVAIZE_TEST_API_KEY", "sk-test")
	cfg := &Config{LLM: LLMCfg{APIKey: "${SURVAIZE_TEST_API_KEY}", Model: "gpt-4o"}}
	pc := cfg.ProviderConfig()
	if pc.APIKey != "sk-test" || pc.Model != "gpt-4o" {
		t.Fatalf("provider config: %+v", pc)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("write default: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("empty config written")
	}
}
