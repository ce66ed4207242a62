package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Query       QueryConfig       `mapstructure:"query"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Data        DatabaseConfig    `mapstructure:"data"`
	Keys        KeysConfig        `mapstructure:"keys"`
	Tables      TablesConfig      `mapstructure:"tables"`
	Audit       AuditConfig       `mapstructure:"audit"`
}

// ---- Leaf structs ----

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	Prefix       string        `mapstructure:"prefix"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ExposeErrors returns raw upstream error text to callers instead of a
	// generic message.
	ExposeErrors bool `mapstructure:"expose_errors"`
}

type QueryConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	MaxRows int           `mapstructure:"max_rows"`
}

type CredentialsConfig struct {
	Provider              string `mapstructure:"provider"`
	Dir                   string `mapstructure:"dir"`
	GoogleCredentialsFile string `mapstructure:"google_credentials_file"`
	Version               string `mapstructure:"version"`
}

// DatabaseConfig locates one connection: either a secret (project+secret)
// or, with the static provider, a DSN.
type DatabaseConfig struct {
	Project         string        `mapstructure:"project"`
	Secret          string        `mapstructure:"secret"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type KeysConfig struct {
	DatabaseConfig `mapstructure:",squash"`
	Table          string `mapstructure:"table"`
}

type TablesConfig struct {
	Items    string `mapstructure:"items"`
	Products string `mapstructure:"products"`
}

type AuditConfig struct {
	Sink           string           `mapstructure:"sink"`
	Buffer         int              `mapstructure:"buffer"`
	PublishTimeout time.Duration    `mapstructure:"publish_timeout"`
	Kafka          AuditKafkaConfig `mapstructure:"kafka"`
	Redis          AuditRedisConfig `mapstructure:"redis"`
}

type AuditKafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type AuditRedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Stream      string        `mapstructure:"stream"`
	MaxLen      int64         `mapstructure:"max_len"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies
// env overrides (BTAPI_*, nested keys joined by "_", e.g. BTAPI_KEYS_TABLE).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("BTAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if c.Keys.Table == "" {
		return fmt.Errorf("keys.table is required")
	}
	if c.Tables.Items == "" || c.Tables.Products == "" {
		return fmt.Errorf("tables.items and tables.products are required")
	}

	switch c.Credentials.Provider {
	case "static":
		if c.Data.DSN == "" || c.Keys.DSN == "" {
			return fmt.Errorf("static credentials need data.dsn and keys.dsn")
		}
	case "file", "secretmanager":
		if c.Data.Project == "" || c.Data.Secret == "" {
			return fmt.Errorf("%s credentials need data.project and data.secret", c.Credentials.Provider)
		}
		if c.Keys.Project == "" || c.Keys.Secret == "" {
			return fmt.Errorf("%s credentials need keys.project and keys.secret", c.Credentials.Provider)
		}
	default:
		return fmt.Errorf("unknown credentials provider %q", c.Credentials.Provider)
	}

	switch c.Audit.Sink {
	case "", "none":
	case "kafka":
		if len(c.Audit.Kafka.Brokers) == 0 || c.Audit.Kafka.Topic == "" {
			return fmt.Errorf("kafka audit sink needs brokers and topic")
		}
	case "redis":
		if c.Audit.Redis.Addr == "" || c.Audit.Redis.Stream == "" {
			return fmt.Errorf("redis audit sink needs addr and stream")
		}
	default:
		return fmt.Errorf("unknown audit sink %q", c.Audit.Sink)
	}
	return nil
}
