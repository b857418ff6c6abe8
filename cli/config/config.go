package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// ErrNotInitialized is returned when no config file exists yet.
var ErrNotInitialized = errors.New("configuration not initialized")

const (
	dirEnv    = "RMP_CONFIG_DIR"
	envPrefix = "RMP_"

	DefaultServerURL = "http://localhost:8000"
)

type ServerConfig struct {
	BaseURL   string        `yaml:"base_url" koanf:"base_url"`
	Timeout   time.Duration `yaml:"timeout" koanf:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl" koanf:"cache_ttl"`
	RateLimit float64       `yaml:"rate_limit" koanf:"rate_limit"`
}

type UserConfig struct {
	Email string `yaml:"email" koanf:"email"`
	Token string `yaml:"token" koanf:"token"`
}

type CompareConfig struct {
	MaxSize int `yaml:"max_size" koanf:"max_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
	// Path is a directory for rmp.log; empty logs to stderr.
	Path string `yaml:"path" koanf:"path"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	User    UserConfig    `yaml:"user" koanf:"user"`
	Compare CompareConfig `yaml:"compare" koanf:"compare"`
	Logging LoggingConfig `yaml:"logging" koanf:"logging"`
}

// Default is the configuration written by Init.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:  DefaultServerURL,
			Timeout:  10 * time.Second,
			CacheTTL: 30 * time.Second,
		},
		Logging: LoggingConfig{Level: "warn", Format: "text"},
	}
}

// envKeys maps environment variables (lower-cased, prefix stripped) to
// config keys. Anything else with the prefix is ignored.
var envKeys = map[string]string{
	"server_url":  "server.base_url",
	"timeout":     "server.timeout",
	"cache_ttl":   "server.cache_ttl",
	"rate_limit":  "server.rate_limit",
	"token":       "user.token",
	"email":       "user.email",
	"compare_max": "compare.max_size",
	"log_level":   "logging.level",
	"log_format":  "logging.format",
	"log_path":    "logging.path",
}

func GetConfigDir() (string, error) {
	if dir := os.Getenv(dirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".rmp"), nil
}

func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// Load layers the defaults, the config file and RMP_* environment
// variables, in that order.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, configPath)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return envKeys[strings.ToLower(strings.TrimPrefix(s, envPrefix))]
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// loadFile reads only the file, so that values coming from the
// environment are never written back by Save.
func loadFile() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yamlv3.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to the config file. The file holds the session token, so
// it is only readable by the owner.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tempPath := configPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tempPath, configPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Init creates the config directory and writes the default config with the
// given server URL. An existing file is kept unless force is set.
func Init(serverURL string, force bool) (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if !force {
		if existing, err := loadFile(); err == nil {
			return existing, nil
		}
	}

	cfg := Default()
	if serverURL != "" {
		cfg.Server.BaseURL = strings.TrimRight(serverURL, "/")
	}
	return cfg, Save(cfg)
}

func UpdateUserToken(email, token string) error {
	cfg, err := loadFile()
	if err != nil {
		return err
	}
	cfg.User.Email = email
	cfg.User.Token = token
	return Save(cfg)
}

func ClearUserToken() error {
	cfg, err := loadFile()
	if err != nil {
		return err
	}
	cfg.User.Email = ""
	cfg.User.Token = ""
	return Save(cfg)
}

func GetServerURL() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.Server.BaseURL, nil
}

// LogFile is where the CLI writes its log when logging.path is set.
func (c *Config) LogFile() string {
	if c.Logging.Path == "" {
		return ""
	}
	return filepath.Join(c.Logging.Path, "rmp.log")
}

// Set updates one "section.key" value in the file.
func Set(key, value string) error {
	cfg, err := loadFile()
	if err != nil {
		return err
	}
	if err := cfg.set(key, value); err != nil {
		return err
	}
	return Save(cfg)
}

func (c *Config) set(key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "server.base_url":
		c.Server.BaseURL = strings.TrimRight(value, "/")
	case "server.timeout":
		c.Server.Timeout, err = time.ParseDuration(value)
	case "server.cache_ttl":
		c.Server.CacheTTL, err = time.ParseDuration(value)
	case "server.rate_limit":
		_, err = fmt.Sscanf(value, "%g", &c.Server.RateLimit)
	case "compare.max_size":
		_, err = fmt.Sscanf(value, "%d", &c.Compare.MaxSize)
	case "logging.level":
		c.Logging.Level = value
	case "logging.format":
		if value != "text" && value != "json" {
			return fmt.Errorf("invalid value for logging.format: %q (text or json)", value)
		}
		c.Logging.Format = value
	case "logging.path":
		c.Logging.Path = value
	case "user.token", "user.email":
		return fmt.Errorf("%s is managed by rmp auth", key)
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// Keys lists the settable keys with their current values, in file order.
func (c *Config) Keys() [][2]string {
	return [][2]string{
		{"server.base_url", c.Server.BaseURL},
		{"server.timeout", c.Server.Timeout.String()},
		{"server.cache_ttl", c.Server.CacheTTL.String()},
		{"server.rate_limit", fmt.Sprintf("%g", c.Server.RateLimit)},
		{"compare.max_size", fmt.Sprintf("%d", c.Compare.MaxSize)},
		{"logging.level", c.Logging.Level},
		{"logging.format", c.Logging.Format},
		{"logging.path", c.Logging.Path},
	}
}
