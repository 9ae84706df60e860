package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	// Try []interface{} to handle mixed types
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Channels ChannelsConfig `json:"channels"`
	Gateway  GatewayConfig  `json:"gateway,omitzero"`
}

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	Discord  DiscordConfig  `json:"discord"`
}

type TelegramConfig struct {
	Enabled   bool                `env:"CLAWBRIDGE_CHANNELS_TELEGRAM_ENABLED"    json:"enabled"`
	Token     string              `env:"CLAWBRIDGE_CHANNELS_TELEGRAM_TOKEN"      json:"token"`
	AllowFrom FlexibleStringSlice `env:"CLAWBRIDGE_CHANNELS_TELEGRAM_ALLOW_FROM" json:"allow_from"`
}

type DiscordConfig struct {
	Enabled     bool                `env:"CLAWBRIDGE_CHANNELS_DISCORD_ENABLED"      json:"enabled"`
	Token       string              `env:"CLAWBRIDGE_CHANNELS_DISCORD_TOKEN"        json:"token"`
	AllowFrom   FlexibleStringSlice `env:"CLAWBRIDGE_CHANNELS_DISCORD_ALLOW_FROM"   json:"allow_from"`
	MentionOnly bool                `env:"CLAWBRIDGE_CHANNELS_DISCORD_MENTION_ONLY" json:"mention_only"`
}

type GatewayConfig struct {
	// LogInbound echoes every normalized message at info level. Useful
	// when running the gateway standalone without an application handler.
	LogInbound bool `env:"CLAWBRIDGE_GATEWAY_LOG_INBOUND" json:"log_inbound"`
}

func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{LogInbound: true},
	}
}

// LoadConfig reads the JSON config at path and applies environment
// overrides. A missing file is not an error; defaults plus environment
// still apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}
