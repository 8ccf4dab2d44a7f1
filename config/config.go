// Package config provides configuration management for the serverkit application.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

// Storage drivers for the credential, product and file metadata stores.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Upload backends for file bytes.
const (
	UploadBackendDisk  = "disk"
	UploadBackendMinio = "minio"
)

// DefaultAllowedFileTypes is the upload allow-list used when ALLOWED_FILE_TYPES is unset.
const DefaultAllowedFileTypes = "jpeg,jpg,png,gif,pdf,txt,doc,docx,zip"

// knownMIMETypes maps a bare extension in ALLOWED_FILE_TYPES to the MIME types accepted for it.
var knownMIMETypes = map[string][]string{
	"jpeg": {"image/jpeg"},
	"jpg":  {"image/jpeg"},
	"png":  {"image/png"},
	"gif":  {"image/gif"},
	"webp": {"image/webp"},
	"pdf":  {"application/pdf"},
	"txt":  {"text/plain"},
	"csv":  {"text/csv", "text/plain"},
	"doc":  {"application/msword"},
	"docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	"xls":  {"application/vnd.ms-excel"},
	"xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	"zip":  {"application/zip", "application/x-zip-compressed"},
}

// DatabaseConfig represents configuration for the PostgreSQL connection pool.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret     string        // Secret key for signing JWTs
	TokenLifetime time.Duration // Lifetime of issued bearer tokens
	BcryptCost    int
}

// UploadConfig holds the file ingestion limits and storage backend selection.
type UploadConfig struct {
	Dir          string
	MaxFileSize  int64
	MaxFiles     int
	AllowedTypes map[string][]string // extension (no dot, lower case) -> accepted MIME types
	Backend      string

	OrphanSweepInterval time.Duration
	OrphanGracePeriod   time.Duration
}

// MinioConfig is only consulted when UploadConfig.Backend is "minio".
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string // empty means ask the server
}

// RateLimitConfig configures the per-IP request limiter.
type RateLimitConfig struct {
	Max      int64
	Window   time.Duration
	RedisURL string // empty means in-memory store
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port               string
	APIVersion         string
	StaticDir          string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level string
	Env   string // "dev" selects the console encoder
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	StorageDriver string
	SeedDemoUsers bool

	Database  *DatabaseConfig
	Auth      *AuthConfig
	Upload    *UploadConfig
	Minio     *MinioConfig
	RateLimit *RateLimitConfig
	Server    *ServerConfig
	Log       *LogConfig
}

// Helper function to get a required environment variable.
// Appends an error to the errors slice if the variable is not set.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as an int.
// Uses defaultValue if not set or if parsing fails. Appends an error if parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvBool(key string, defaultValue bool, errors *[]string) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	v, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected boolean, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return v
}

// Helper function to get an optional environment variable parsed as time.Duration.
// Accepts day and week units ("7d", "1w2d") in addition to what time.ParseDuration takes.
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := str2duration.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// ParseAllowedTypes parses an ALLOWED_FILE_TYPES value. Each comma separated item is either a
// bare extension known to knownMIMETypes or an explicit "ext=mime1|mime2" pair.
func ParseAllowedTypes(value string) (map[string][]string, error) {
	allowed := make(map[string][]string)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		ext, mimes, explicit := strings.Cut(item, "=")
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			return nil, fmt.Errorf("empty extension in %q", item)
		}
		if !explicit {
			known, ok := knownMIMETypes[ext]
			if !ok {
				return nil, fmt.Errorf("no MIME types known for extension %q; use %s=<mime>", ext, ext)
			}
			allowed[ext] = append(allowed[ext], known...)
			continue
		}
		for _, m := range strings.Split(mimes, "|") {
			m = strings.ToLower(strings.TrimSpace(m))
			if m == "" {
				continue
			}
			allowed[ext] = append(allowed[ext], m)
		}
		if len(allowed[ext]) == 0 {
			return nil, fmt.Errorf("extension %q has no MIME types", ext)
		}
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("allow-list is empty")
	}
	return allowed, nil
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	storageDriver := getOptionalEnv("STORAGE_DRIVER", StorageMemory)
	if storageDriver != StorageMemory && storageDriver != StoragePostgres {
		errors = append(errors, fmt.Sprintf("invalid value for STORAGE_DRIVER: %q (want %q or %q)", storageDriver, StorageMemory, StoragePostgres))
	}

	// Database Configuration, only required for the postgres driver.
	var dbConfig *DatabaseConfig
	if storageDriver == StoragePostgres {
		dbConfig = &DatabaseConfig{
			User:     getRequiredEnv("DB_USER", &errors),
			Password: getRequiredEnv("DB_PASSWORD", &errors),
			DBName:   getRequiredEnv("DB_NAME", &errors),
			Host:     getOptionalEnv("DB_HOST", "localhost"),
			Port:     getOptionalEnvInt("DB_PORT", 5432, &errors),
			MaxSize:  getOptionalEnvInt("DB_POOL_SIZE", 10, &errors),
		}
		if dbConfig.MaxSize < 1 {
			errors = append(errors, fmt.Sprintf("DB_POOL_SIZE must be positive, got %d", dbConfig.MaxSize))
		}
	}

	// Auth Configuration
	authConfig := &AuthConfig{
		JWTSecret:     getRequiredEnv("JWT_SECRET", &errors),
		TokenLifetime: getOptionalEnvDuration("JWT_EXPIRES_IN", 24*time.Hour, &errors),
		BcryptCost:    getOptionalEnvInt("BCRYPT_COST", 10, &errors),
	}
	if authConfig.TokenLifetime <= 0 {
		errors = append(errors, "JWT_EXPIRES_IN must be positive")
	}
	if authConfig.BcryptCost < 4 || authConfig.BcryptCost > 31 {
		errors = append(errors, fmt.Sprintf("BCRYPT_COST must be between 4 and 31, got %d", authConfig.BcryptCost))
	}

	// Upload Configuration
	uploadConfig := &UploadConfig{
		Dir:                 getOptionalEnv("UPLOAD_DIR", "./uploads"),
		MaxFileSize:         int64(getOptionalEnvInt("MAX_FILE_SIZE", 5*1024*1024, &errors)),
		MaxFiles:            getOptionalEnvInt("MAX_FILES_PER_REQUEST", 5, &errors),
		Backend:             getOptionalEnv("UPLOAD_BACKEND", UploadBackendDisk),
		OrphanSweepInterval: getOptionalEnvDuration("ORPHAN_SWEEP_INTERVAL", 10*time.Minute, &errors),
		OrphanGracePeriod:   getOptionalEnvDuration("ORPHAN_GRACE_PERIOD", time.Hour, &errors),
	}
	if uploadConfig.MaxFileSize <= 0 {
		errors = append(errors, "MAX_FILE_SIZE must be positive")
	}
	if uploadConfig.MaxFiles <= 0 {
		errors = append(errors, "MAX_FILES_PER_REQUEST must be positive")
	}
	allowed, err := ParseAllowedTypes(getOptionalEnv("ALLOWED_FILE_TYPES", DefaultAllowedFileTypes))
	if err != nil {
		errors = append(errors, fmt.Sprintf("invalid value for ALLOWED_FILE_TYPES: %v", err))
	}
	uploadConfig.AllowedTypes = allowed

	var minioConfig *MinioConfig
	switch uploadConfig.Backend {
	case UploadBackendDisk:
	case UploadBackendMinio:
		minioConfig = &MinioConfig{
			Endpoint:  getRequiredEnv("MINIO_ENDPOINT", &errors),
			AccessKey: getRequiredEnv("MINIO_ACCESS_KEY", &errors),
			SecretKey: getRequiredEnv("MINIO_SECRET_KEY", &errors),
			Bucket:    getOptionalEnv("MINIO_BUCKET", "uploads"),
			UseSSL:    getOptionalEnvBool("MINIO_USE_SSL", false, &errors),
			Region:    getOptionalEnv("MINIO_REGION", ""),
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid value for UPLOAD_BACKEND: %q", uploadConfig.Backend))
	}

	// Rate limit Configuration
	rateLimitConfig := &RateLimitConfig{
		Max:      int64(getOptionalEnvInt("RATE_LIMIT_MAX", 100, &errors)),
		Window:   getOptionalEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute, &errors),
		RedisURL: getOptionalEnv("RATE_LIMIT_REDIS_URL", ""),
	}
	if rateLimitConfig.Max <= 0 || rateLimitConfig.Window <= 0 {
		errors = append(errors, "RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}

	// Server Configuration
	serverConfig := &ServerConfig{
		Port:               getOptionalEnv("PORT", "3000"),
		APIVersion:         getOptionalEnv("API_VERSION", "v1"),
		StaticDir:          getOptionalEnv("STATIC_DIR", "./public"),
		CORSAllowedOrigins: splitList(getOptionalEnv("CORS_ALLOWED_ORIGINS", "*")),
		ShutdownTimeout:    getOptionalEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second, &errors),
	}

	logConfig := &LogConfig{
		Level: getOptionalEnv("LOG_LEVEL", "info"),
		Env:   getOptionalEnv("APP_ENV", "prod"),
	}

	seed := getOptionalEnvBool("SEED_DEMO_USERS", true, &errors)

	// If any errors were collected during loading, return a single aggregated error message.
	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		StorageDriver: storageDriver,
		SeedDemoUsers: seed,
		Database:      dbConfig,
		Auth:          authConfig,
		Upload:        uploadConfig,
		Minio:         minioConfig,
		RateLimit:     rateLimitConfig,
		Server:        serverConfig,
		Log:           logConfig,
	}, nil
}
