package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Name != "tripsmith" {
		t.Errorf("app name = %q", cfg.App.Name)
	}
	if cfg.App.MaxRounds != 5 {
		t.Errorf("max rounds = %d, want 5", cfg.App.MaxRounds)
	}
	if cfg.Mode() != ModeMock {
		t.Errorf("mode = %s, want mock", cfg.Mode())
	}
	if cfg.Export.RetryLimit != 2 {
		t.Errorf("retry limit = %d, want 2", cfg.Export.RetryLimit)
	}
	if cfg.Memory.Path != "tripsmith.db" {
		t.Errorf("memory path = %q", cfg.Memory.Path)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  name: tripsmith-test
  max_rounds: 7
tools:
  mode: gateway
  gateway_url: http://localhost:9000
provider:
  name: openrouter
  model: some-model
export:
  auto: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Name != "tripsmith-test" || cfg.App.MaxRounds != 7 {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Mode() != ModeGateway {
		t.Errorf("mode = %s, want gateway", cfg.Mode())
	}
	if cfg.Tools.GatewayURL != "http://localhost:9000" {
		t.Errorf("gateway url = %q", cfg.Tools.GatewayURL)
	}
	if !cfg.Export.Auto {
		t.Error("export.auto not loaded")
	}
	if cfg.Provider.Name != "openrouter" {
		t.Errorf("provider = %q", cfg.Provider.Name)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tools:\n  mode: local\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TRIPSMITH_TOOLS_MODE", "gateway")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode() != ModeGateway {
		t.Errorf("mode = %s, want gateway from env", cfg.Mode())
	}
}

func TestInvalidModeFallsBackToMock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tools:\n  mode: quantum\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode() != ModeMock {
		t.Errorf("mode = %s, want mock fallback", cfg.Mode())
	}
}
