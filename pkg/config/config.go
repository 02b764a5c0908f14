package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "supersecretjwtkey"

type Config struct {
	Port                    string        `mapstructure:"PORT"`
	Env                     string        `mapstructure:"APP_ENV"`
	MongoURI                string        `mapstructure:"MONGO_URI"`
	MongoDatabase           string        `mapstructure:"MONGO_DB"`
	JWTSecret               string        `mapstructure:"JWT_SECRET"`
	SessionTTL              time.Duration `mapstructure:"SESSION_TTL"`
	AllowedOrigins          string        `mapstructure:"ALLOWED_ORIGINS"`
	RedisURL                string        `mapstructure:"REDIS_URL"`
	AuthRateLimit           int           `mapstructure:"RATE_LIMIT_AUTH"`
	AuthRateWindow          time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
	MetricsPort             string        `mapstructure:"METRICS_PORT"`
	FirebaseCredentialsPath string        `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	FirebaseStorageBucket   string        `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	ImageUploadDir          string        `mapstructure:"IMAGE_UPLOAD_DIR"`
	ImageMaxUploadMB        int           `mapstructure:"IMAGE_MAX_UPLOAD_MB"`
	PublicBaseURL           string        `mapstructure:"PUBLIC_BASE_URL"`
	TrustedProxies          string        `mapstructure:"TRUSTED_PROXIES"`
}

// Load reads .env (when present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "nanosocial")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RATE_LIMIT_AUTH", 20)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	v.SetDefault("FIREBASE_STORAGE_BUCKET", "")
	v.SetDefault("IMAGE_UPLOAD_DIR", "./uploads")
	v.SetDefault("IMAGE_MAX_UPLOAD_MB", 10)
	v.SetDefault("PUBLIC_BASE_URL", "")
	v.SetDefault("TRUSTED_PROXIES", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks required values; production gets the strict secret rules.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if _, err := c.TrustedProxyRanges(); err != nil {
		return err
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if strings.TrimSpace(c.AllowedOrigins) == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is '*' in production; credentials will not be sent cross-origin.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Use a stronger secret in production.")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// RateLimitEnabled reports whether auth endpoints are throttled; local and test runs are not.
func (c *Config) RateLimitEnabled() bool {
	switch c.Env {
	case "development", "test", "":
		return false
	}
	return c.RedisURL != "" && c.AuthRateLimit > 0
}

func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// TrustedProxyRanges parses TRUSTED_PROXIES, a comma-separated list of CIDRs or bare IPs.
func (c *Config) TrustedProxyRanges() ([]*net.IPNet, error) {
	var ranges []*net.IPNet
	for _, entry := range strings.Split(c.TrustedProxies, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: invalid address %q", entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			ranges = append(ranges, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		ranges = append(ranges, ipNet)
	}
	return ranges, nil
}

// IPExtractor decides where c.RealIP() comes from. Without trusted proxies only the
// socket peer counts; with them, X-Forwarded-For is honored for hops from those ranges only.
func (c *Config) IPExtractor() echo.IPExtractor {
	ranges, err := c.TrustedProxyRanges()
	if err != nil || len(ranges) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, r := range ranges {
		opts = append(opts, echo.TrustIPRange(r))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.ImageMaxUploadMB) * 1024 * 1024
}
