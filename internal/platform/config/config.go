package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Addr               string
	Environment        string
	LogLevel           string
	DatabaseURL        string
	DBMaxConns         int32
	DBMinConns         int32
	JWTSecret          string
	TokenTTL           time.Duration
	DataEncryptionKey  string
	SeedAdminEmail     string
	SeedAdminPassword  string
	SeedPrincipalEmail string
	SeedPrincipalPass  string
	RunMigrations      bool
	RunSeed            bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	StoreTimeout       time.Duration
	AuditTimeout       time.Duration
	MetricsEnabled     bool
	// TrustProxy honours X-Forwarded-For and X-Real-IP. Enable only behind a
	// reverse proxy that overwrites them.
	TrustProxy bool
	// LeaveDays is the annual accrual per employment type, keyed by the
	// employment type name (FULL_TIME, PART_TIME, CONTRACT).
	LeaveDays map[string]int
}

// Load reads the environment, after an optional .env file. Keys are the
// upper-case, underscore separated form of the viper keys below.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.addr", ":8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("db.min_conns", 2)
	v.SetDefault("token.ttl", "12h")
	v.SetDefault("run.migrations", true)
	v.SetDefault("run.seed", true)
	v.SetDefault("max.body.bytes", 1048576)
	v.SetDefault("rate.limit.per.minute", 60)
	v.SetDefault("store.timeout", "5s")
	v.SetDefault("audit.timeout", "3s")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("trust.proxy", false)
	v.SetDefault("leave.days.full_time", 14)
	v.SetDefault("leave.days.part_time", 7)
	v.SetDefault("leave.days.contract", 10)

	tokenTTL, err := duration(v, "token.ttl")
	if err != nil {
		return Config{}, err
	}
	storeTimeout, err := duration(v, "store.timeout")
	if err != nil {
		return Config{}, err
	}
	auditTimeout, err := duration(v, "audit.timeout")
	if err != nil {
		return Config{}, err
	}

	return Config{
		Addr:               v.GetString("app.addr"),
		Environment:        v.GetString("app.env"),
		LogLevel:           strings.ToLower(v.GetString("log.level")),
		DatabaseURL:        v.GetString("database.url"),
		DBMaxConns:         v.GetInt32("db.max_conns"),
		DBMinConns:         v.GetInt32("db.min_conns"),
		JWTSecret:          v.GetString("jwt.secret"),
		TokenTTL:           tokenTTL,
		DataEncryptionKey:  v.GetString("data.encryption.key"),
		SeedAdminEmail:     v.GetString("seed.admin.email"),
		SeedAdminPassword:  v.GetString("seed.admin.password"),
		SeedPrincipalEmail: v.GetString("seed.principal.email"),
		SeedPrincipalPass:  v.GetString("seed.principal.password"),
		RunMigrations:      v.GetBool("run.migrations"),
		RunSeed:            v.GetBool("run.seed"),
		MaxBodyBytes:       v.GetInt64("max.body.bytes"),
		RateLimitPerMinute: v.GetInt("rate.limit.per.minute"),
		StoreTimeout:       storeTimeout,
		AuditTimeout:       auditTimeout,
		MetricsEnabled:     v.GetBool("metrics.enabled"),
		TrustProxy:         v.GetBool("trust.proxy"),
		LeaveDays: map[string]int{
			"FULL_TIME": v.GetInt("leave.days.full_time"),
			"PART_TIME": v.GetInt("leave.days.part_time"),
			"CONTRACT":  v.GetInt("leave.days.contract"),
		},
	}, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Environment == "production" {
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.StoreTimeout <= 0 || c.AuditTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT and AUDIT_TIMEOUT must be positive")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	for kind, days := range c.LeaveDays {
		if days < 0 {
			return fmt.Errorf("LEAVE_DAYS_%s must not be negative", kind)
		}
	}
	return nil
}
