package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Credential backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8090"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	APIBaseURL  string        `env:"API_BASE_URL,  default=http://127.0.0.1:8000"`
	PushBaseURL string        `env:"PUSH_BASE_URL, default=ws://127.0.0.1:8000"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,  default=15s"`

	// ProfileTimeout bounds session resolution. Zero waits as long as the
	// caller does.
	ProfileTimeout time.Duration `env:"PROFILE_TIMEOUT, default=0s"`
	// FailurePolicy is keep or clear.
	FailurePolicy string `env:"RESOLUTION_FAILURE_POLICY, default=keep"`

	Credential CredentialConfig
	Reconnect  ReconnectConfig
	Mongo      MongoConfig
	Redis      RedisConfig
}

type CredentialConfig struct {
	Backend    string `env:"CREDENTIAL_BACKEND,    default=file"`
	File       string `env:"CREDENTIAL_FILE,       default=.storefront/credential.json"`
	Passphrase string `env:"CREDENTIAL_PASSPHRASE"`
	KeyPrefix  string `env:"CREDENTIAL_KEY_PREFIX, default=storefront:"`
	Slot       string `env:"CREDENTIAL_SLOT,       default=default"`
}

// ReconnectConfig enables push reconnection when MaxAttempts > 0.
type ReconnectConfig struct {
	MaxAttempts    int           `env:"RECONNECT_MAX_ATTEMPTS,    default=0"`
	InitialBackoff time.Duration `env:"RECONNECT_INITIAL_BACKOFF, default=500ms"`
	MaxBackoff     time.Duration `env:"RECONNECT_MAX_BACKOFF,     default=30s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront_client"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through l and validates the enumerated settings.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Credential.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("CREDENTIAL_BACKEND %q: want memory, file, redis or mongo", c.Credential.Backend)
	}
	switch c.FailurePolicy {
	case "keep", "clear":
	default:
		return fmt.Errorf("RESOLUTION_FAILURE_POLICY %q: want keep or clear", c.FailurePolicy)
	}
	if c.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("RECONNECT_MAX_ATTEMPTS must not be negative")
	}
	return nil
}

// IsDevelopment reports whether ENV selects human-friendly defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
