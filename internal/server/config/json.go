package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/aicodehub/aicodehub/internal/flagx"
	"github.com/aicodehub/aicodehub/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	Addr                   string         `json:"address"`
	DatabaseDSN            string         `json:"database_dsn"`
	SecretKey              string         `json:"secret_key"`
	AccessTokenTTL         timex.Duration `json:"access_token_ttl"`
	UniformAuthErrors      *bool          `json:"uniform_auth_errors"`
	CORSAllowedOrigins     string         `json:"cors_allowed_origins"`
	S3RootUser             string         `json:"s3_root_user"`
	S3RootPassword         string         `json:"s3_root_password"`
	S3Bucket               string         `json:"s3_bucket"`
	S3Region               string         `json:"s3_region"`
	S3BaseEndpoint         string         `json:"s3_base_endpoint"`
	FirstSuperuser         string         `json:"first_superuser"`
	FirstSuperuserEmail    string         `json:"first_superuser_email"`
	FirstSuperuserPassword string         `json:"first_superuser_password"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = time.Duration(c.AccessTokenTTL.Duration)
	}
	if c.UniformAuthErrors != nil {
		config.UniformAuthErrors = *c.UniformAuthErrors
	}
	if c.CORSAllowedOrigins != "" {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.FirstSuperuser != "" {
		config.FirstSuperuser = c.FirstSuperuser
	}
	if c.FirstSuperuserEmail != "" {
		config.FirstSuperuserEmail = c.FirstSuperuserEmail
	}
	if c.FirstSuperuserPassword != "" {
		config.FirstSuperuserPassword = c.FirstSuperuserPassword
	}
}
