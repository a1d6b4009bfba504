package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
)

// EnvConfigPath names the environment variable that points at a config file
const EnvConfigPath = "SEXPR_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Parser  ParserConfig  `toml:"parser" yaml:"parser"`
	Output  OutputConfig  `toml:"output" yaml:"output"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Cache   CacheConfig   `toml:"cache" yaml:"cache"`
	Watch   WatchConfig   `toml:"watch" yaml:"watch"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name" yaml:"name"`
	DataDir   string `toml:"data_dir" yaml:"data_dir"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// ParserConfig controls how expressions are accepted
type ParserConfig struct {
	Strict         bool `toml:"strict" yaml:"strict"`
	MaxInputLength int  `toml:"max_input_length" yaml:"max_input_length"`
}

// OutputConfig controls terminal rendering
type OutputConfig struct {
	NoColor bool `toml:"no_color" yaml:"no_color"`
}

// ServerConfig holds the network endpoints started by "sexpr serve"
type ServerConfig struct {
	GRPC GRPCConfig `toml:"grpc" yaml:"grpc"`
	HTTP HTTPConfig `toml:"http" yaml:"http"`
}

// GRPCConfig holds the Converter service endpoint
type GRPCConfig struct {
	Host       string `toml:"host" yaml:"host"`
	Port       int    `toml:"port" yaml:"port"`
	Reflection bool   `toml:"reflection" yaml:"reflection"`
}

// HTTPConfig holds the websocket and health endpoint
type HTTPConfig struct {
	Host         string   `toml:"host" yaml:"host"`
	Port         int      `toml:"port" yaml:"port"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
}

// HistoryConfig holds the conversion history store
type HistoryConfig struct {
	Enabled   bool     `toml:"enabled" yaml:"enabled"`
	Path      string   `toml:"path" yaml:"path"`
	Retention Duration `toml:"retention" yaml:"retention"`
}

// CacheConfig holds the server-side result cache
type CacheConfig struct {
	MaxItems int      `toml:"max_items" yaml:"max_items"`
	TTL      Duration `toml:"ttl" yaml:"ttl"`
}

// WatchConfig holds file watcher settings
type WatchConfig struct {
	Debounce Duration `toml:"debounce" yaml:"debounce"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.expandEnvVars()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, mdwerror.Newf("config file not found: %s", path).
			WithCode(mdwerror.CodeMissingFile).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, mdwerror.Wrap(err, "failed to read config").
				WithCode(mdwerror.CodeConfigError).
				WithOperation("config.Load")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, mdwerror.Wrap(err, "failed to parse config").
				WithCode(mdwerror.CodeConfigError).
				WithOperation("config.Load")
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, mdwerror.Wrap(err, "failed to parse config").
				WithCode(mdwerror.CodeConfigError).
				WithOperation("config.Load")
		}
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from SEXPR_CONFIG or one of the default
// locations. Without any file the defaults are returned.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		path = findDefault()
	}

	if path == "" {
		return Default(), nil
	}

	return Load(path)
}

func findDefault() string {
	defaultPaths := []string{
		"./configs/config.toml",
		"./config.toml",
		"./config.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		defaultPaths = append(defaultPaths, filepath.Join(home, ".config/sexpr/config.toml"))
	}

	for _, p := range defaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "sexpr"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "warn"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "console"
	}

	// Parser
	if c.Parser.MaxInputLength == 0 {
		c.Parser.MaxInputLength = 4096
	}

	// Server
	if c.Server.GRPC.Host == "" {
		c.Server.GRPC.Host = "0.0.0.0"
	}
	if c.Server.GRPC.Port == 0 {
		c.Server.GRPC.Port = 9310
	}
	if c.Server.HTTP.Host == "" {
		c.Server.HTTP.Host = "0.0.0.0"
	}
	if c.Server.HTTP.Port == 0 {
		c.Server.HTTP.Port = 8310
	}
	if c.Server.HTTP.ReadTimeout.Duration == 0 {
		c.Server.HTTP.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.HTTP.WriteTimeout.Duration == 0 {
		c.Server.HTTP.WriteTimeout.Duration = 30 * time.Second
	}

	// History
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.History.Retention.Duration == 0 {
		c.History.Retention.Duration = 30 * 24 * time.Hour
	}

	// Cache
	if c.Cache.MaxItems == 0 {
		c.Cache.MaxItems = 1000
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 10 * time.Minute
	}

	// Watch
	if c.Watch.Debounce.Duration == 0 {
		c.Watch.Debounce.Duration = 500 * time.Millisecond
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// Validate rejects values the components cannot work with
func (c *Config) Validate() error {
	invalid := func(field string, value interface{}) error {
		return mdwerror.Newf("invalid value for %s: %v", field, value).
			WithCode(mdwerror.CodeInvalidValue).
			WithOperation("config.Validate").
			WithDetail("field", field)
	}

	if c.Parser.MaxInputLength < 0 {
		return invalid("parser.max_input_length", c.Parser.MaxInputLength)
	}
	if c.Server.GRPC.Port < 0 || c.Server.GRPC.Port > 65535 {
		return invalid("server.grpc.port", c.Server.GRPC.Port)
	}
	if c.Server.HTTP.Port < 0 || c.Server.HTTP.Port > 65535 {
		return invalid("server.http.port", c.Server.HTTP.Port)
	}
	if c.Cache.MaxItems < 0 {
		return invalid("cache.max_items", c.Cache.MaxItems)
	}
	return nil
}

// GRPCAddress returns the listen address of the Converter service
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.GRPC.Host, c.Server.GRPC.Port)
}

// HTTPAddress returns the listen address of the websocket endpoint
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.HTTP.Host, c.Server.HTTP.Port)
}
