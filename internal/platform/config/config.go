// Package config loads the server configuration: built-in defaults, then an optional
// YAML file, then DEEDGATE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. DEEDGATE_SERVER_ADDR.
const EnvPrefix = "DEEDGATE"

const (
	LedgerDriverMemory   = "memory"
	LedgerDriverEthereum = "ethereum"

	StorageDriverMemory = "memory"
	StorageDriverMinIO  = "minio"
)

// devSigningKey is only accepted outside production.
const devSigningKey = "dev-secret-key-change-in-production"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Storage   StorageConfig   `yaml:"storage"`
	RateLimit RateLimitConfig `yaml:"rateLimit" split_words:"true"`
	LogLevel  string          `yaml:"logLevel" split_words:"true"`
	// Seed loads the demo catalogue into the in-memory backends at startup.
	Seed bool `yaml:"seed"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Environment     string        `yaml:"environment"`
	RequestTimeout  time.Duration `yaml:"requestTimeout" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" split_words:"true"`
	MaxUploadBytes  int64         `yaml:"maxUploadBytes" split_words:"true"`
	// TrustedProxies lists CIDRs whose X-Forwarded-For headers are honoured.
	TrustedProxies []string `yaml:"trustedProxies" split_words:"true"`
}

type AuthConfig struct {
	SigningKey  string        `yaml:"signingKey" split_words:"true"`
	Issuer      string        `yaml:"issuer"`
	Audience    string        `yaml:"audience"`
	TokenTTL    time.Duration `yaml:"tokenTTL" split_words:"true"`
	AdminEmails []string      `yaml:"adminEmails" split_words:"true"`
}

// DatabaseConfig selects Postgres stores when URL is set; otherwise stores are in-memory.
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"maxOpenConns" split_words:"true"`
	MaxIdleConns    int           `yaml:"maxIdleConns" split_words:"true"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" split_words:"true"`
}

// RedisConfig enables the ledger registration cache when URL is set.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"poolSize" split_words:"true"`
	MinIdleConns int           `yaml:"minIdleConns" split_words:"true"`
	DialTimeout  time.Duration `yaml:"dialTimeout" split_words:"true"`
	ReadTimeout  time.Duration `yaml:"readTimeout" split_words:"true"`
	WriteTimeout time.Duration `yaml:"writeTimeout" split_words:"true"`
	LedgerTTL    time.Duration `yaml:"ledgerTTL" split_words:"true"`
}

// KafkaConfig enables the Kafka audit sink when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Acks    string   `yaml:"acks"`
}

type LedgerConfig struct {
	Driver          string        `yaml:"driver"`
	RPCURL          string        `yaml:"rpcURL" envconfig:"RPC_URL"`
	ContractAddress string        `yaml:"contractAddress" split_words:"true"`
	PrivateKey      string        `yaml:"privateKey" split_words:"true"`
	ChainID         int64         `yaml:"chainID" split_words:"true"`
	CallTimeout     time.Duration `yaml:"callTimeout" split_words:"true"`
	TxTimeout       time.Duration `yaml:"txTimeout" split_words:"true"`
	// PriceWei is a decimal integer; it can exceed 64 bits.
	PriceWei         string        `yaml:"priceWei" split_words:"true"`
	BreakerFailures  int           `yaml:"breakerFailures" split_words:"true"`
	BreakerSuccesses int           `yaml:"breakerSuccesses" split_words:"true"`
	BreakerCooldown  time.Duration `yaml:"breakerCooldown" split_words:"true"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey" split_words:"true"`
	SecretKey string `yaml:"secretKey" split_words:"true"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"useSSL" split_words:"true"`
}

// RateLimitConfig sets per-window budgets. Counters live in Redis when it is
// configured, otherwise in process memory. A zero budget disables that class.
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Window   time.Duration `yaml:"window"`
	Verify   int           `yaml:"verify"`
	Register int           `yaml:"register"`
	Compare  int           `yaml:"compare"`
}

// Default returns a configuration that runs fully in memory.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Environment:     "development",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Auth: AuthConfig{
			SigningKey: devSigningKey,
			Issuer:     "deedgate",
			Audience:   "deedgate-api",
			TokenTTL:   15 * time.Minute,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			LedgerTTL:    24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Topic: "deedgate.audit",
			Acks:  "all",
		},
		Ledger: LedgerConfig{
			Driver:           LedgerDriverMemory,
			CallTimeout:      5 * time.Second,
			TxTimeout:        2 * time.Minute,
			PriceWei:         "100000000",
			BreakerFailures:  5,
			BreakerSuccesses: 2,
			BreakerCooldown:  30 * time.Second,
		},
		Storage: StorageConfig{
			Driver: StorageDriverMemory,
			Bucket: "deeds",
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Window:   time.Minute,
			Verify:   20,
			Register: 60,
			Compare:  30,
		},
		LogLevel: "info",
	}
}

// Load applies the YAML file at path (skipped when empty) and then environment overrides
// on top of Default, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the server runs with production safeguards.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Validate checks the fields each selected driver needs.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.maxUploadBytes must be positive"))
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}

	if c.Auth.SigningKey == "" {
		errs = append(errs, errors.New("auth.signingKey is required"))
	}
	if c.IsProduction() && c.Auth.SigningKey == devSigningKey {
		errs = append(errs, errors.New("auth.signingKey must be set in production"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.tokenTTL must be positive"))
	}

	switch c.Ledger.Driver {
	case LedgerDriverMemory:
	case LedgerDriverEthereum:
		if c.Ledger.RPCURL == "" {
			errs = append(errs, errors.New("ledger.rpcURL is required for the ethereum driver"))
		}
		if c.Ledger.ContractAddress == "" {
			errs = append(errs, errors.New("ledger.contractAddress is required for the ethereum driver"))
		}
		if c.Ledger.ChainID <= 0 {
			errs = append(errs, errors.New("ledger.chainID is required for the ethereum driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ledger driver %q", c.Ledger.Driver))
	}
	if _, err := c.PriceWei(); err != nil {
		errs = append(errs, err)
	}

	switch c.Storage.Driver {
	case StorageDriverMemory:
	case StorageDriverMinIO:
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage.endpoint and storage.bucket are required for the minio driver"))
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			errs = append(errs, errors.New("storage.accessKey and storage.secretKey are required for the minio driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("rateLimit.window must be positive"))
		}
		if c.RateLimit.Verify < 0 || c.RateLimit.Register < 0 || c.RateLimit.Compare < 0 {
			errs = append(errs, errors.New("rateLimit budgets cannot be negative"))
		}
	}
	if c.Seed && c.Ledger.Driver != LedgerDriverMemory {
		errs = append(errs, errors.New("seed requires the memory ledger"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// PriceWei parses the configured listing price.
func (c *Config) PriceWei() (*big.Int, error) {
	price, ok := new(big.Int).SetString(strings.TrimSpace(c.Ledger.PriceWei), 10)
	if !ok || price.Sign() <= 0 {
		return nil, fmt.Errorf("ledger.priceWei must be a positive integer, got %q", c.Ledger.PriceWei)
	}
	return price, nil
}

// TrustedProxyPrefixes parses server.trustedProxies. Bare addresses become single-host prefixes.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.Server.TrustedProxies))
	for _, raw := range c.Server.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("server.trustedProxies: %w", err)
			}
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("server.trustedProxies: %w", err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
