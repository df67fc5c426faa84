package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8000"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	CORSOrigins      []string `env:"CORS_ORIGINS,       default=http://localhost:5173"`
	AdminPassword    string   `env:"ADMIN_PASSWORD"`
	ExcelTemplateDir string   `env:"EXCEL_TEMPLATE_DIR"`
	AuditWorkers     int      `env:"AUDIT_WORKERS,      default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

// MongoConfig names one database per plant data source; all share a client.
type MongoConfig struct {
	URI       string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	ReportDB  string `env:"MONGO_REPORT_DB,  default=report_management"`
	UserDB    string `env:"MONGO_USER_DB,    default=vsl_quality_portal"`
	QualityDB string `env:"MONGO_QA_DB,      default=quality_analysis"`
	BGradeDB  string `env:"MONGO_BGRADE_DB,  default=b_grade_trend"`
	PeelDB    string `env:"MONGO_PEEL_DB,    default=peel_strength"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	CacheTTL time.Duration `env:"CACHE_TTL,      default=5m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through the given lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("config: JWT_SECRET must be at least 32 characters in production")
	}
	return nil
}
