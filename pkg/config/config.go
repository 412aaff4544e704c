package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerPort int    `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTAccessSecret  string        `envconfig:"JWT_SECRET"`
	JWTRefreshSecret string        `envconfig:"JWT_REFRESH_SECRET"`
	AccessTTL        time.Duration `envconfig:"ACCESS_TTL" default:"15m"`
	RefreshTTL       time.Duration `envconfig:"REFRESH_TTL" default:"168h"`
	CookieSecure     bool          `envconfig:"COOKIE_SECURE" default:"false"`

	CORSOriginsRaw string   `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	CORSOrigins    []string `ignored:"true"`

	RedisURL string `envconfig:"REDIS_URL"`

	KafkaBrokersRaw string   `envconfig:"KAFKA_BROKERS"`
	KafkaBrokers    []string `ignored:"true"`

	ESURL      string `envconfig:"ES_URL"`
	ESUser     string `envconfig:"ES_USER"`
	ESPassword string `envconfig:"ES_PASSWORD"`
	ESIndex    string `envconfig:"ES_INDEX" default:"products"`

	LoginRateLimit int  `envconfig:"LOGIN_RATE_LIMIT" default:"20"`
	CSRFEnabled    bool `envconfig:"CSRF_ENABLED" default:"false"`

	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD"`
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.CORSOrigins = CSV(cfg.CORSOriginsRaw)
	cfg.KafkaBrokers = CSV(cfg.KafkaBrokersRaw)
	return cfg, nil
}

// Validate reports every missing required variable at once, then the
// cross-field rules.
func (c Config) Validate() error {
	var missing []string
	for _, req := range []struct{ env, value string }{
		{"DATABASE_URL", c.DatabaseURL},
		{"JWT_SECRET", c.JWTAccessSecret},
		{"JWT_REFRESH_SECRET", c.JWTRefreshSecret},
	} {
		if strings.TrimSpace(req.value) == "" {
			missing = append(missing, req.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env: %s", strings.Join(missing, ", "))
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.ServerPort) }

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
