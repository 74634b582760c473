package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string // postgres URL, sqlite:<path> or dynamodb:<table>
	CORSOrigins string
	TablePrefix string
	// DynamoDB store, "" = AWS defaults
	DynamoRegion   string
	DynamoEndpoint string
	// Upload target
	S3Bucket     string
	S3Region     string
	StaticDomain string        // public host serving uploaded keys
	UploadExpiry time.Duration // lifetime of signed upload locations
	// Local upload target, used when S3Bucket is empty
	PublicURL    string // URL this server is reachable at
	UploadDir    string
	UploadSecret string // "" = random per process
	// Log files, "" = stdout only
	LogDir      string
	LogMaxFiles int
	// Remote gateway used by the CLI
	GatewayURL string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	port := getEnv("PORT", "8080")

	return &Config{
		Port:           port,
		Environment:    env,
		DatabaseURL:    getEnv("DATABASE_URL", "sqlite:boneless.db"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:    tablePrefix,
		DynamoRegion:   getEnv("DYNAMODB_REGION", ""),
		DynamoEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		StaticDomain:   getEnv("STATIC_DOMAIN", ""),
		UploadExpiry:   getDuration("UPLOAD_EXPIRY", 5*time.Minute),
		PublicURL:      strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:"+port), "/"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		UploadSecret:   getEnv("UPLOAD_SECRET", ""),
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    getInt("LOG_MAX_FILES", 10),
		GatewayURL:     strings.TrimRight(getEnv("GATEWAY_URL", "http://localhost:8080"), "/"),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// UsesSQLite reports whether DatabaseURL selects the embedded sqlite store
func (c *Config) UsesSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, "sqlite:")
}

// SQLitePath returns the sqlite file path from DatabaseURL
func (c *Config) SQLitePath() string {
	return strings.TrimPrefix(c.DatabaseURL, "sqlite:")
}

// UsesDynamoDB reports whether DatabaseURL selects a DynamoDB table
func (c *Config) UsesDynamoDB() bool {
	return strings.HasPrefix(c.DatabaseURL, "dynamodb:")
}

// DynamoTable returns the table name from DatabaseURL
func (c *Config) DynamoTable() string {
	return strings.TrimPrefix(c.DatabaseURL, "dynamodb:")
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
