package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sequence scopes for certificate numbering.
const (
	SequenceScopeGlobal  = "global"
	SequenceScopeMonthly = "monthly"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	DatabaseURL         string
	RedisURL            string
	JWTSecret           string
	JWTIssuer           string
	JWTExpiresIn        time.Duration
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	SequenceScope       string // CERTIFICATE_SEQUENCE_SCOPE: "global" (default) or "monthly"
	MaxIssueAttempts    int    // CERTIFICATE_MAX_ATTEMPTS: insert attempts on certificate number collision
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_ISSUER", "churchflow")
	viper.SetDefault("JWT_EXPIRES_IN", "168h")
	viper.SetDefault("CERTIFICATE_SEQUENCE_SCOPE", SequenceScopeGlobal)
	viper.SetDefault("CERTIFICATE_MAX_ATTEMPTS", 3)

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = viper.GetString("NODE_ENV")
	}
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = viper.GetString("DATABASE_URL")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	expiresIn := viper.GetDuration("JWT_EXPIRES_IN")
	if expiresIn <= 0 {
		expiresIn = 7 * 24 * time.Hour
	}
	attempts := viper.GetInt("CERTIFICATE_MAX_ATTEMPTS")
	if attempts < 1 {
		attempts = 1
	}

	return &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		JWTSecret:           viper.GetString("JWT_SECRET"),
		JWTIssuer:           viper.GetString("JWT_ISSUER"),
		JWTExpiresIn:        expiresIn,
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		SequenceScope:       sequenceScope(viper.GetString("CERTIFICATE_SEQUENCE_SCOPE")),
		MaxIssueAttempts:    attempts,
	}, nil
}

// IsProduction reports whether the app runs with production cookie settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func sequenceScope(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), SequenceScopeMonthly) {
		return SequenceScopeMonthly
	}
	return SequenceScopeGlobal
}
