package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App   AppConfig   `mapstructure:"app"`
	Log   LogConfig   `mapstructure:"log"`
	DB    DBConfig    `mapstructure:"db"`
	Redis RedisConfig `mapstructure:"redis"`
	Feed  FeedConfig  `mapstructure:"feed"`
	Sync  SyncConfig  `mapstructure:"sync"`
	GRPC  GRPCConfig  `mapstructure:"grpc"`
	HTTP  HTTPConfig  `mapstructure:"http"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// DBConfig selects the store. An empty DSN runs on the in-memory store.
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig backs the run lease. An empty Addr falls back to an in-process lock.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type FeedConfig struct {
	Host    string        `mapstructure:"host"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SyncConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	TaskName string        `mapstructure:"task_name"`
	Interval time.Duration `mapstructure:"interval"`
	Workers  int           `mapstructure:"workers"`
	LeaseKey string        `mapstructure:"lease_key"`
	LeaseTTL time.Duration `mapstructure:"lease_ttl"`
}

type GRPCConfig struct {
	Addr     string `mapstructure:"addr"`
	APIToken string `mapstructure:"api_token"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads config from path (YAML) layered under MF_* environment variables.
// A .env file in the working directory is loaded first when present.
// With envOnly the file is not read and only defaults + environment apply.
func Load(path string, envOnly bool) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	// Credential names used by existing deployments
	_ = v.BindEnv("feed.api_key", "MF_FEED_API_KEY", "RAPIDAPI_KEY")
	_ = v.BindEnv("feed.host", "MF_FEED_HOST", "RAPID_API_HOST")

	v.SetDefault("app.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("feed.host", "latest-mutual-fund-nav.p.rapidapi.com")
	v.SetDefault("feed.base_url", "")
	v.SetDefault("feed.timeout", "60s")
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.task_name", "Update NAVs and Portfolios Every Hour")
	v.SetDefault("sync.interval", "1h")
	v.SetDefault("sync.workers", 1)
	v.SetDefault("sync.lease_key", "mutualfund:nav-sync:lease")
	v.SetDefault("sync.lease_ttl", "55m")
	v.SetDefault("grpc.addr", ":8080")
	v.SetDefault("grpc.api_token", "dev-token")
	v.SetDefault("http.addr", ":9090")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
