package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds the base URLs of the backend services. Every
// service URL falls back to the API gateway when left empty.
type ServerConfig struct {
	// GatewayURL is the root URL of the API gateway. The realtime
	// endpoint and the notification listing are always reached through
	// the gateway.
	GatewayURL string `mapstructure:"gateway_url" yaml:"gateway_url"`

	// Per-service overrides for deployments that expose the
	// microservices directly instead of through the gateway.
	AuthURL     string `mapstructure:"auth_url" yaml:"auth_url"`
	StudentURL  string `mapstructure:"student_url" yaml:"student_url"`
	TeacherURL  string `mapstructure:"teacher_url" yaml:"teacher_url"`
	ClassURL    string `mapstructure:"class_url" yaml:"class_url"`
	ScheduleURL string `mapstructure:"schedule_url" yaml:"schedule_url"`
	GradeURL    string `mapstructure:"grade_url" yaml:"grade_url"`
}

// ServiceURL resolves a per-service override, falling back to the gateway.
func (s ServerConfig) ServiceURL(override string) string {
	if override != "" {
		return override
	}
	return s.GatewayURL
}

// RealtimeConfig holds tunables for the realtime push channel.
type RealtimeConfig struct {
	// HeartbeatSec is the interval between outbound ping frames while
	// connected. Zero disables the heartbeat.
	HeartbeatSec int `mapstructure:"heartbeat_sec" yaml:"heartbeat_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// RefreshIntervalSec is how often the notification listing is
	// re-fetched as a fallback alongside the push channel.
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`
}

// LogConfig holds logging preferences. The log goes to a file because
// the TUI owns the terminal.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Realtime RealtimeConfig `mapstructure:"realtime" yaml:"realtime"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// ConfigDir returns the directory holding the configuration, log and
// cache files, located at ~/.config/schoolctl.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "schoolctl")
}

// DefaultConfigPath returns the default path for the configuration file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			GatewayURL: "http://localhost:8080",
		},
		Realtime: RealtimeConfig{HeartbeatSec: 30},
		Display: DisplayConfig{
			Theme:              "default",
			RefreshIntervalSec: 30,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(ConfigDir(), "schoolctl.log"),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. Keys may be overridden through SCHOOLCTL_* environment
// variables (e.g. SCHOOLCTL_SERVER_GATEWAY_URL). A missing file yields
// the default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("schoolctl")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.gateway_url", "http://localhost:8080")
	v.SetDefault("realtime.heartbeat_sec", 30)
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.refresh_interval_sec", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(ConfigDir(), "schoolctl.log"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("realtime", cfg.Realtime)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
