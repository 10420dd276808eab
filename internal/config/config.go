package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"nhgate/internal/repository/api/nicehash"
)

const (
	EnvConfigPath = "CONFIG_PATH"
	EnvKey        = "KEY"
	EnvSecret     = "SECRET"
	EnvOrgID      = "ORG_ID"
	EnvPort       = "PORT"

	DefaultPort = 80
)

type Config struct {
	NiceHash NiceHashConfig `yaml:"nicehash"`
	Server   ServerConfig   `yaml:"server"`
	Bot      BotConfig      `yaml:"bot"`
	DBConn   DBConnConfig   `yaml:"db-conn"`
	Streams  StreamsConfig  `yaml:"streams"`
}

type NiceHashConfig struct {
	Host           string        `yaml:"host" validate:"omitempty,url"`
	StreamURL      string        `yaml:"stream-url" validate:"omitempty,url"`
	OrganizationID string        `yaml:"organization-id" validate:"required"`
	Key            string        `yaml:"key" validate:"required"`
	Secret         string        `yaml:"secret" validate:"required"`
	CacheTTL       time.Duration `yaml:"cache-ttl" validate:"gte=0"`
	Timeout        time.Duration `yaml:"timeout" validate:"gte=0"`
}

// Credentials returns the API key triple.
func (c NiceHashConfig) Credentials() nicehash.Credentials {
	return nicehash.Credentials{
		Key:            c.Key,
		Secret:         c.Secret,
		OrganizationID: c.OrganizationID,
	}
}

// LogValue keeps the secret out of logs.
func (c NiceHashConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", c.Host),
		slog.String("streamUrl", c.StreamURL),
		slog.String("organizationId", c.OrganizationID),
		slog.String("key", c.Key),
	)
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
}

type BotConfig struct {
	Token string `yaml:"token"`
}

type DBConnConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gte=0,lte=65535"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Enabled reports whether a database was configured.
func (c DBConnConfig) Enabled() bool {
	return c.Host != ""
}

type StreamsConfig struct {
	Names      []string `yaml:"names" validate:"dive,oneof=candlesticks orders mytrades orderbook trades"`
	Resolution int      `yaml:"resolution" validate:"omitempty,oneof=1 60 1440"`
}

var validate = validator.New()

// InitConfig reads the YAML file named by CONFIG_PATH, applies environment
// overrides and validates the result.
func InitConfig() (*Config, error) {
	loadDotEnv()

	cfgPath := os.Getenv(EnvConfigPath)
	if cfgPath == "" {
		// credentials may come from the environment alone
		return FromEnv(&Config{})
	}

	return Load(cfgPath)
}

// Load reads path and applies environment overrides.
func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	return FromEnv(cfg)
}

// FromEnv overrides cfg with KEY, SECRET, ORG_ID and PORT when set, fills
// defaults and validates.
func FromEnv(cfg *Config) (*Config, error) {
	if v := os.Getenv(EnvKey); v != "" {
		cfg.NiceHash.Key = v
	}
	if v := os.Getenv(EnvSecret); v != "" {
		cfg.NiceHash.Secret = v
	}
	if v := os.Getenv(EnvOrgID); v != "" {
		cfg.NiceHash.OrganizationID = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, &nicehash.ConfigError{Field: EnvPort, Reason: "is not a number"}
		}
		cfg.Server.Port = port
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.NiceHash.Host == "" {
		c.NiceHash.Host = nicehash.DefaultHost
	}
	if c.NiceHash.Timeout == 0 {
		c.NiceHash.Timeout = nicehash.DefaultTimeout
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Streams.Resolution == 0 {
		c.Streams.Resolution = 1
	}
}

// Validate returns a *nicehash.ConfigError naming the first bad field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return &nicehash.ConfigError{Field: verrs[0].Namespace(), Reason: "failed " + verrs[0].Tag()}
	}
	return &nicehash.ConfigError{Field: "config", Reason: err.Error()}
}

func loadDotEnv() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		slog.Warn("err loading .env", "error", err)
	}
}
