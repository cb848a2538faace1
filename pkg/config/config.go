package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// RouterMode selects how the tool router reaches backends. It is threaded
// into the router at construction; nothing reads it from ambient state at
// call time.
type RouterMode string

const (
	ModeMock    RouterMode = "mock"    // deterministic canned backends, no network
	ModeLocal   RouterMode = "local"   // in-process live adapters
	ModeGateway RouterMode = "gateway" // forward over HTTP to a tool gateway
)

type Config struct {
	App      AppConfig      `koanf:"app"`
	Tools    ToolsConfig    `koanf:"tools"`
	Provider ProviderConfig `koanf:"provider"`
	Gateways GatewaysConfig `koanf:"gateways"`
	Memory   MemoryConfig   `koanf:"memory"`
	Export   ExportConfig   `koanf:"export"`
}

type AppConfig struct {
	Name       string `koanf:"name"`
	PromptsDir string `koanf:"prompts_dir"`
	MaxRounds  int    `koanf:"max_rounds"`
}

type ToolsConfig struct {
	Mode          string `koanf:"mode"` // mock | local | gateway
	GatewayURL    string `koanf:"gateway_url"`
	GatewayAPIKey string `koanf:"gateway_api_key"`
	GatewayListen string `koanf:"gateway_listen"` // bind address for cmd/toolgw
}

type ProviderConfig struct {
	Name    string `koanf:"name"` // openai | openrouter
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

type GatewaysConfig struct {
	Telegram TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	Token   string `koanf:"token"`
	Enabled bool   `koanf:"enabled"`
}

type MemoryConfig struct {
	Path string `koanf:"path"`
}

type ExportConfig struct {
	Auto       bool `koanf:"auto"`        // export to calendar after execute
	RetryLimit int  `koanf:"retry_limit"` // additional attempts for failed events
}

// Load reads the YAML config file (if present) and overlays TRIPSMITH_*
// environment variables (TRIPSMITH_TOOLS_MODE -> tools.mode).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("TRIPSMITH_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "TRIPSMITH_")), "_", ".")
	}), nil); err != nil {
		return nil, err
	}

	// Defaults
	if !k.Exists("app.name") {
		k.Set("app.name", "tripsmith")
	}
	if !k.Exists("app.prompts_dir") {
		k.Set("app.prompts_dir", "./prompts")
	}
	if !k.Exists("app.max_rounds") {
		k.Set("app.max_rounds", 5)
	}
	if !k.Exists("tools.mode") {
		k.Set("tools.mode", string(ModeMock))
	}
	if !k.Exists("tools.gateway_listen") {
		k.Set("tools.gateway_listen", ":9000")
	}
	if !k.Exists("memory.path") {
		k.Set("memory.path", "tripsmith.db")
	}
	if !k.Exists("export.retry_limit") {
		k.Set("export.retry_limit", 2)
	}
	if !k.Exists("provider.name") {
		k.Set("provider.name", "openai")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Mode returns the validated router mode, defaulting to mock.
func (c *Config) Mode() RouterMode {
	switch RouterMode(c.Tools.Mode) {
	case ModeLocal:
		return ModeLocal
	case ModeGateway:
		return ModeGateway
	}
	return ModeMock
}
