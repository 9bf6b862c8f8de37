package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/slimeyayush/altair-frontend/pkg/config"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "ALTAIR_"

// Storage backends.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory" // nothing outlives the process
)

// Tracing holds OpenTelemetry settings shared by both binaries.
type Tracing struct {
	Enabled    bool    `env:"ENABLED" envDefault:"false"`
	Endpoint   string  `env:"ENDPOINT" envDefault:"localhost:4318"`
	SampleRate float64 `env:"SAMPLE_RATE" envDefault:"1.0"`
}

// Config holds all configuration for the storefront client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`

	// Backend REST API
	APIBaseURL     string        `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	BreakerTimeout time.Duration `env:"BREAKER_TIMEOUT" envDefault:"20s"`

	// Identity provider (Identity Toolkit REST)
	IdentityAPIKey     string `env:"IDENTITY_API_KEY"`
	IdentityBaseURL    string `env:"IDENTITY_BASE_URL" envDefault:"https://identitytoolkit.googleapis.com"`
	SecureTokenBaseURL string `env:"SECURE_TOKEN_BASE_URL" envDefault:"https://securetoken.googleapis.com"`

	// Client-local storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	StorageDir     string `env:"STORAGE_DIR"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass      string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"altair:"`

	// Storefront behaviour
	SearchDebounce        time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"300ms"`
	ShippingFee           float64       `env:"SHIPPING_FEE" envDefault:"500"`
	OrderWhatsAppNumber   string        `env:"ORDER_WHATSAPP_NUMBER" envDefault:"918800537507"`
	ContactWhatsAppNumber string        `env:"CONTACT_WHATSAPP_NUMBER" envDefault:"919876543210"`

	Tracing Tracing `envPrefix:"OTEL_"`
}

// Load reads ALTAIR_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, pkgconfig.WithPrefix(EnvPrefix)); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = defaultStorageDir()
	}
	return cfg, nil
}

// Validate checks the parsed settings.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid ALTAIR_API_BASE_URL: %q", c.APIBaseURL)
	}
	switch c.StorageBackend {
	case StorageFile, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("ALTAIR_STORAGE_BACKEND must be %q, %q or %q, got %q",
			StorageFile, StorageRedis, StorageMemory, c.StorageBackend)
	}
	if c.SearchDebounce <= 0 {
		return fmt.Errorf("ALTAIR_SEARCH_DEBOUNCE must be positive")
	}
	if c.ShippingFee < 0 {
		return fmt.Errorf("ALTAIR_SHIPPING_FEE must not be negative")
	}
	return c.Tracing.validate()
}

func (t Tracing) validate() error {
	if t.SampleRate < 0 || t.SampleRate > 1 {
		return fmt.Errorf("ALTAIR_OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
	}
	return nil
}

func defaultStorageDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "altair")
	}
	return filepath.Join(os.TempDir(), "altair")
}

// MockAPI holds configuration for the development backend.
type MockAPI struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	HTTPPort int `env:"MOCKAPI_HTTP_PORT" envDefault:"8080"`

	JWTSecret   string        `env:"MOCKAPI_JWT_SECRET" envDefault:"dev-only-secret-change-me"`
	JWTTTL      time.Duration `env:"MOCKAPI_JWT_TTL" envDefault:"2h"`
	AdminUser   string        `env:"MOCKAPI_ADMIN_USER" envDefault:"admin"`
	AdminPass   string        `env:"MOCKAPI_ADMIN_PASSWORD" envDefault:"admin123"`
	LoginPerMin int           `env:"MOCKAPI_LOGIN_PER_MINUTE" envDefault:"10"`
	LoginBurst  int           `env:"MOCKAPI_LOGIN_BURST" envDefault:"5"`
	CacheMaxAge int           `env:"MOCKAPI_CACHE_MAX_AGE" envDefault:"30"`
	OTPCode     string        `env:"MOCKAPI_OTP_CODE" envDefault:"123456"`
	BcryptCost  int           `env:"MOCKAPI_BCRYPT_COST" envDefault:"10"`

	CORSOrigins []string `env:"MOCKAPI_CORS_ORIGINS" envDefault:"*" envSeparator:","`
	PprofCIDRs  []string `env:"MOCKAPI_PPROF_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	Tracing Tracing `envPrefix:"OTEL_"`
}

// LoadMockAPI reads ALTAIR_* environment variables for the dev backend.
func LoadMockAPI() (*MockAPI, error) {
	cfg := &MockAPI{}
	if err := pkgconfig.Load(cfg, pkgconfig.WithPrefix(EnvPrefix)); err != nil {
		return nil, fmt.Errorf("load mockapi config: %w", err)
	}
	return cfg, nil
}

// Validate checks the parsed settings.
func (c *MockAPI) Validate() error {
	switch {
	case c.HTTPPort < 1 || c.HTTPPort > 65535:
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	case len(c.JWTSecret) < 16:
		return fmt.Errorf("ALTAIR_MOCKAPI_JWT_SECRET must be at least 16 characters")
	case len(c.OTPCode) != 6:
		return fmt.Errorf("ALTAIR_MOCKAPI_OTP_CODE must be 6 digits")
	case c.BcryptCost < 4 || c.BcryptCost > 31:
		return fmt.Errorf("ALTAIR_MOCKAPI_BCRYPT_COST must be between 4 and 31")
	case c.LoginPerMin < 1 || c.LoginBurst < 1:
		return fmt.Errorf("login rate limit must be positive")
	}
	return c.Tracing.validate()
}
