package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Evidence configures where tip attachments go. R2 is used when a bucket
// and account are set, otherwise files land in LocalDir.
type Evidence struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
	// Endpoint overrides the account's R2 endpoint (S3-compatible stores).
	Endpoint string
	LocalDir string
}

func (e Evidence) R2Enabled() bool {
	return e.AccountID != "" && e.Bucket != ""
}

type Config struct {
	Port           string
	DatabaseURL    string
	StoreDriver    string
	AllowedOrigins []string
	AdminToken     string
	// DefaultUserID is the acting user when no X-User-ID header is sent.
	// Zero disables the fallback.
	DefaultUserID uint
	LogLevel      string
	LogFormat     string
	Seed          bool
	WeeklyReset   bool
	RateLimit     float64
	RateBurst     int
	Evidence      Evidence
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := &Config{
		Port:        getenv("PORT", "5000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StoreDriver: strings.ToLower(os.Getenv("STORE_DRIVER")),
		AdminToken:  os.Getenv("ADMIN_TOKEN"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "text"),
		Evidence: Evidence{
			AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("R2_BUCKET_NAME"),
			CDNBaseURL:      os.Getenv("CDN_BASE_URL"),
			Endpoint:        os.Getenv("R2_ENDPOINT"),
			LocalDir:        getenv("UPLOAD_DIR", "uploads"),
		},
	}

	for _, origin := range strings.Split(getenv("ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	var err error
	if cfg.DefaultUserID, err = envUint("DEFAULT_USER_ID", 1); err != nil {
		return nil, err
	}
	if cfg.Seed, err = envBool("SEED_DATA", true); err != nil {
		return nil, err
	}
	if cfg.WeeklyReset, err = envBool("WEEKLY_RESET", true); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = envFloat("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = envInt("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}

	if cfg.StoreDriver == "" {
		cfg.StoreDriver = DriverMemory
		if cfg.DatabaseURL != "" {
			cfg.StoreDriver = DriverPostgres
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL environment variable not set")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.StoreDriver)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	return nil
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) Logger() (*logrus.Logger, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envUint(key string, def uint) (uint, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return uint(n), nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
