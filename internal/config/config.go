package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dkeye/signalmaster/internal/app/turn"
	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/joho/godotenv"
	"github.com/pion/stun/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	LogLevel   string        `mapstructure:"log_level"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`
	// UID to switch to once the listener is bound; 0 keeps the current user.
	UID int `mapstructure:"uid"`

	SessionCookie    string     `mapstructure:"session_cookie"`
	EnforceClaimRoom bool       `mapstructure:"enforce_claim_room"`
	JoinRate         RateConfig `mapstructure:"join_rate"`
	Auth             AuthConfig `mapstructure:"auth"`

	StunServers       []domain.StunServer `mapstructure:"stun_servers"`
	TurnServers       []turn.Server       `mapstructure:"turn_servers"`
	TurnDefaultExpiry int64               `mapstructure:"turn_default_expiry"`
}

type RateConfig struct {
	Limit    int           `mapstructure:"limit"`
	Interval time.Duration `mapstructure:"interval"`
}

type AuthConfig struct {
	Driver  string        `mapstructure:"driver"`
	Timeout time.Duration `mapstructure:"timeout"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Badger  BadgerConfig  `mapstructure:"badger"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

type BadgerConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads config/config.<CONFIG_ENV>.yaml (CONFIG_ENV defaults to dev).
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName on top of the defaults. A missing file is not an error.
// Environment variables prefixed with SIGNAL_ override both.
func LoadFile(fileName string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg("failed to read .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("SIGNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("port", "SIGNAL_PORT", "PORT")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("auth", cfg.Auth.Driver).Int("stun", len(cfg.StunServers)).Int("turn", len(cfg.TurnServers)).
		Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8888)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "5s")
	v.SetDefault("pong_wait", "20s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("uid", 0)
	v.SetDefault("session_cookie", "vroomsession")
	v.SetDefault("enforce_claim_room", false)
	v.SetDefault("join_rate.limit", 10)
	v.SetDefault("join_rate.interval", "10s")
	v.SetDefault("auth.driver", "mysql")
	v.SetDefault("auth.timeout", "5s")
	v.SetDefault("auth.mysql.dsn", "vroom:vroom@tcp(localhost:3306)/vroom")
	v.SetDefault("auth.mysql.max_open_conns", 10)
	v.SetDefault("auth.mysql.conn_max_lifetime", "5m")
	v.SetDefault("auth.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("auth.mongo.database", "vroom")
	v.SetDefault("auth.mongo.collection", "participants")
	v.SetDefault("auth.mongo.connect_timeout", "10s")
	v.SetDefault("auth.mongo.max_pool_size", 100)
	v.SetDefault("auth.badger.path", "./data/access")
	v.SetDefault("stun_servers", []map[string]any{{"url": "stun:stun.l.google.com:19302"}})
	v.SetDefault("turn_servers", []map[string]any{})
	v.SetDefault("turn_default_expiry", turn.DefaultExpiry)
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.SessionCookie == "" {
		return errors.New("session_cookie must not be empty")
	}
	if c.PongWait <= c.PingPeriod {
		return fmt.Errorf("pong_wait (%s) must exceed ping_period (%s)", c.PongWait, c.PingPeriod)
	}
	switch c.Auth.Driver {
	case "mysql", "mongo", "badger":
	default:
		return fmt.Errorf("unknown auth.driver %q", c.Auth.Driver)
	}
	for i, s := range c.StunServers {
		if err := checkURI(s.URL, stun.SchemeTypeSTUN, stun.SchemeTypeSTUNS); err != nil {
			return fmt.Errorf("stun_servers[%d]: %w", i, err)
		}
	}
	for i, s := range c.TurnServers {
		if err := checkURI(s.URL, stun.SchemeTypeTURN, stun.SchemeTypeTURNS); err != nil {
			return fmt.Errorf("turn_servers[%d]: %w", i, err)
		}
		if s.Secret == "" {
			return fmt.Errorf("turn_servers[%d]: secret is required", i)
		}
	}
	return nil
}

func checkURI(raw string, allowed ...stun.SchemeType) error {
	uri, err := stun.ParseURI(raw)
	if err != nil {
		return fmt.Errorf("%q: %w", raw, err)
	}
	for _, s := range allowed {
		if uri.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%q: unexpected scheme %s", raw, uri.Scheme)
}
