package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hanabi.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log defaults = %+v", cfg.Log)
	}
	if cfg.DatabasePath != "./hanabi.db" {
		t.Errorf("database path = %q", cfg.DatabasePath)
	}
	if cfg.MaxContextMessages != 15 {
		t.Errorf("max context messages = %d, want 15", cfg.MaxContextMessages)
	}
	if cfg.LLM.Model != "gpt-4.1" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if !cfg.Moderation.Enabled {
		t.Error("moderation disabled by default")
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
log:
  level: debug
max_context_messages: 30
llm:
  model: gpt-4o-mini
  api_key: file-key
moderation:
  enabled: false
matrix:
  homeserver: https://matrix.example.com
  user_id: "@hanabi:example.com"
  access_token: tok
  rooms:
    - "!room1:example.com"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.MaxContextMessages != 30 {
		t.Errorf("max context messages = %d", cfg.MaxContextMessages)
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.APIKey != "file-key" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Moderation.Enabled {
		t.Error("moderation not disabled by file")
	}
	if !cfg.MatrixEnabled() {
		t.Error("MatrixEnabled() = false with full matrix config")
	}
	// Fields the file omits keep their defaults.
	if cfg.DatabasePath != "./hanabi.db" {
		t.Errorf("database path = %q", cfg.DatabasePath)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
llm:
  api_key: file-key
  model: from-file
`)
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("HANABI_LLM_MODEL", "from-env")
	t.Setenv("HANABI_MAX_CONTEXT_MESSAGES", "7")
	t.Setenv("MATRIX_ROOMS", "!a:example.com, !b:example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("api key = %q, want env value", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "from-env" {
		t.Errorf("model = %q, want env value", cfg.LLM.Model)
	}
	if cfg.MaxContextMessages != 7 {
		t.Errorf("max context messages = %d", cfg.MaxContextMessages)
	}
	if len(cfg.Matrix.Rooms) != 2 || cfg.Matrix.Rooms[1] != "!b:example.com" {
		t.Errorf("rooms = %v", cfg.Matrix.Rooms)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/no/such/file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate passed without an API key")
	}
	cfg.LLM.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate_RejectsTinyContextWindow(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "k"

	cfg.MaxContextMessages = 2
	if err := cfg.Validate(); err == nil {
		t.Error("Validate passed with a window too small to hold a tool round")
	}
	cfg.MaxContextMessages = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate passed with a negative window")
	}
	cfg.MaxContextMessages = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate rejected the default selector: %v", err)
	}
}

func TestDescribeAndSecrets(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "sk-test-1234"
	cfg.Matrix.AccessToken = "syt_abcdef"

	desc := cfg.Describe()
	for _, want := range []string{"api_key=sk-test-1234", "access_token=syt_abcdef", "model=gpt-4.1"} {
		if !strings.Contains(desc, want) {
			t.Errorf("Describe() missing %q: %q", want, desc)
		}
	}

	secrets := cfg.Secrets()
	for _, want := range []string{"sk-test-1234", "syt_abcdef"} {
		found := false
		for _, s := range secrets {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Secrets() missing %q: %v", want, secrets)
		}
	}
}

func TestModerationAPIKeyFallsBackToLLMKey(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "llm-key"
	if got := cfg.ModerationAPIKey(); got != "llm-key" {
		t.Errorf("ModerationAPIKey() = %q", got)
	}
	cfg.Moderation.APIKey = "mod-key"
	if got := cfg.ModerationAPIKey(); got != "mod-key" {
		t.Errorf("ModerationAPIKey() = %q", got)
	}
}
