package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading a local
// .env file first if one exists. Unset variables leave the current value
// untouched.
//
// Recognized variables:
//
//	ADDRESS                      HTTP bind address
//	DATABASE_URL                 PostgreSQL DSN
//	SECRET_KEY                   JWT HMAC secret
//	ACCESS_TOKEN_EXPIRE_MINUTES  access token lifetime, minutes
//	UNIFORM_AUTH_ERRORS          "true" collapses guard failures externally
//	CORS_ALLOWED_ORIGINS         comma-separated origins
//	S3_ROOT_USER / S3_ROOT_PASSWORD / S3_BUCKET / S3_REGION / S3_BASE_ENDPOINT
//	FIRST_SUPERUSER / FIRST_SUPERUSER_EMAIL / FIRST_SUPERUSER_PASSWORD
func parseEnv(config *Config) {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString("ADDRESS", &config.Addr)
	setString("DATABASE_URL", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setString("CORS_ALLOWED_ORIGINS", &config.CORSAllowedOrigins)
	setString("S3_ROOT_USER", &config.S3RootUser)
	setString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("S3_BUCKET", &config.S3Bucket)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	setString("FIRST_SUPERUSER", &config.FirstSuperuser)
	setString("FIRST_SUPERUSER_EMAIL", &config.FirstSuperuserEmail)
	setString("FIRST_SUPERUSER_PASSWORD", &config.FirstSuperuserPassword)

	if v, ok := os.LookupEnv("ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		if minutes, err := strconv.Atoi(v); err == nil {
			config.AccessTokenTTL = time.Duration(minutes) * time.Minute
		}
	}

	if v, ok := os.LookupEnv("UNIFORM_AUTH_ERRORS"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.UniformAuthErrors = b
		}
	}
}
