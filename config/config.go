// ABOUTME: viper-backed configuration for the conversion service, client, editor and logging.
// ABOUTME: Reads defaults, an optional YAML file and MDPREVIEW_ environment overrides into Config.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. MDPREVIEW_SERVER_ADDR.
const EnvPrefix = "MDPREVIEW"

// Config is the effective configuration of every mdpreview component.
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Render RenderConfig `mapstructure:"render" yaml:"render"`
	Client ClientConfig `mapstructure:"client" yaml:"client"`
	Editor EditorConfig `mapstructure:"editor" yaml:"editor"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// ServerConfig configures the conversion service.
type ServerConfig struct {
	Addr          string `mapstructure:"addr" yaml:"addr"`
	AllowedOrigin string `mapstructure:"allowed_origin" yaml:"allowed_origin"`
	MaxBodyBytes  int64  `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

// RenderConfig configures the goldmark renderer.
type RenderConfig struct {
	Sanitize  bool `mapstructure:"sanitize" yaml:"sanitize"`
	HardWraps bool `mapstructure:"hard_wraps" yaml:"hard_wraps"`
}

// ClientConfig configures how editors reach the conversion service.
type ClientConfig struct {
	APIURL  string        `mapstructure:"api_url" yaml:"api_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// EditorConfig configures the editor state controller.
type EditorConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
	ViewMode string        `mapstructure:"view_mode" yaml:"view_mode"`
	DarkMode bool          `mapstructure:"dark_mode" yaml:"dark_mode"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:3001")
	v.SetDefault("server.allowed_origin", "http://localhost:3000")
	v.SetDefault("server.max_body_bytes", int64(10<<20))
	v.SetDefault("render.sanitize", true)
	v.SetDefault("render.hard_wraps", false)
	v.SetDefault("client.api_url", "http://localhost:3001")
	v.SetDefault("client.timeout", 5*time.Second)
	v.SetDefault("editor.debounce", 300*time.Millisecond)
	v.SetDefault("editor.view_mode", "split")
	v.SetDefault("editor.dark_mode", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// NewViper returns a viper instance with defaults and environment binding.
// When configFile is non-empty it is read as YAML; a missing explicit file is an error.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
		return v, nil
	}

	v.SetConfigName(".mdpreview")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations no component can run with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if strings.TrimSpace(c.Server.AllowedOrigin) == "" {
		errs = append(errs, errors.New("server.allowed_origin must not be empty"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}
	if strings.TrimSpace(c.Client.APIURL) == "" {
		errs = append(errs, errors.New("client.api_url must not be empty"))
	}
	if c.Client.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("client.timeout must be positive, got %s", c.Client.Timeout))
	}
	if c.Editor.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("editor.debounce must be positive, got %s", c.Editor.Debounce))
	}
	switch c.Editor.ViewMode {
	case "edit", "split", "preview":
	default:
		errs = append(errs, fmt.Errorf("editor.view_mode must be edit, split or preview, got %q", c.Editor.ViewMode))
	}

	return errors.Join(errs...)
}

// YAML renders the configuration as YAML for display.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return out, nil
}
