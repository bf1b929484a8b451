package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/GoPolymarket/fusiongate/internal/fusion"
	"github.com/GoPolymarket/fusiongate/internal/quote"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Order     OrderConfig     `mapstructure:"order"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type AuthConfig struct {
	RequireAPIKey bool     `mapstructure:"require_api_key"`
	APIKeys       []string `mapstructure:"api_keys"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type RedisConfig struct {
	Addr                  string `mapstructure:"addr"`
	Password              string `mapstructure:"password"`
	DB                    int    `mapstructure:"db"`
	SecretTTLHours        int    `mapstructure:"secret_ttl_hours"`
	IdempotencyTTLSeconds int    `mapstructure:"idempotency_ttl_seconds"`
}

type DatabaseConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// ChainConfig holds RPC endpoints used to verify signatures of contract makers,
// keyed by network name or chain id.
type ChainConfig struct {
	RPCURLs             map[string]string `mapstructure:"rpc_urls"`
	EIP1271CacheSeconds int               `mapstructure:"eip1271_cache_seconds"`
	EIP1271TimeoutMs    int               `mapstructure:"eip1271_timeout_ms"`
	EIP1271Retries      int               `mapstructure:"eip1271_retries"`
}

// OrderConfig are the defaults applied to every prepared order.
type OrderConfig struct {
	UnwrapNative            bool   `mapstructure:"unwrap_native"`
	OrderExpirationDelay    uint64 `mapstructure:"order_expiration_delay"`
	EnablePermit2           bool   `mapstructure:"enable_permit2"`
	DelayAuctionStartTimeBy uint64 `mapstructure:"delay_auction_start_time_by"`
	Source                  string `mapstructure:"source"`
	Preset                  string `mapstructure:"preset"`
}

// OrderOptions resolves the configured defaults. Fill permissions stay at the
// library defaults; the chosen preset overrides them per order.
func (c *Config) OrderOptions() fusion.Options {
	opts := fusion.DefaultOptions()
	opts.UnwrapNative = c.Order.UnwrapNative
	opts.EnablePermit2 = c.Order.EnablePermit2
	opts.OrderExpirationDelay = c.Order.OrderExpirationDelay
	opts.Source = c.Order.Source
	return opts
}

// DefaultPreset is the configured preset override, or nil to follow the quote.
func (c *Config) DefaultPreset() *quote.PresetType {
	p := quote.PresetType(strings.ToLower(strings.TrimSpace(c.Order.Preset)))
	if !p.Valid() {
		return nil
	}
	return &p
}

// RPCURL looks up the endpoint for id by network name or by numeric id.
func (c *Config) RPCURL(id chain.ID) string {
	for key, url := range c.Chain.RPCURLs {
		if parsed, err := chain.ParseNetwork(key); err == nil && parsed == id {
			return url
		}
	}
	return ""
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Ignoring .env: %v", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// e.g. FUSIONGATE_REDIS_ADDR
	v.SetEnvPrefix("fusiongate")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("auth.require_api_key", false)
	v.SetDefault("auth.api_keys", []string{})
	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.secret_ttl_hours", 72)
	v.SetDefault("redis.idempotency_ttl_seconds", 86400)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("chain.eip1271_cache_seconds", 60)
	v.SetDefault("chain.eip1271_timeout_ms", 5000)
	v.SetDefault("chain.eip1271_retries", 1)
	v.SetDefault("order.unwrap_native", false)
	v.SetDefault("order.order_expiration_delay", 12)
	v.SetDefault("order.enable_permit2", false)
	v.SetDefault("order.delay_auction_start_time_by", 0)
	v.SetDefault("order.source", "")
	v.SetDefault("order.preset", "")
}
