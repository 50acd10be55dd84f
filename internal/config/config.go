// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Storage driver names accepted by StorageDriver.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Persistence
	StorageDriver string `koanf:"storage_driver"` // memory, file, redis, postgres
	StoragePath   string `koanf:"storage_path"`   // file driver: path of the JSON state file
	DatabaseURL   string `koanf:"database_url"`
	RedisURL      string `koanf:"redis_url"`

	// Map rendering
	MapTilerAPIKey string `koanf:"maptiler_api_key"`
	MapStyleURL    string `koanf:"map_style_url"`

	// Share links
	ShareBaseURL string `koanf:"share_base_url"`

	// R2 (Cloudflare Object Storage) for property photos
	R2BucketName      string `koanf:"r2_bucket_name"`
	R2AccessKeyID     string `koanf:"r2_access_key_id"`
	R2SecretAccessKey string `koanf:"r2_secret_access_key"`
	R2Endpoint        string `koanf:"r2_endpoint"`
	R2PublicBaseURL   string `koanf:"r2_public_base_url"`
	R2MaxUploadSizeMB int    `koanf:"r2_max_upload_size_mb"`

	// CORS
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// Tracing
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	TracingExporter     string  `koanf:"tracing_exporter"` // otlp-http, otlp-grpc
	TracingOTLPEndpoint string  `koanf:"tracing_otlp_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
	TracingInsecure     bool    `koanf:"tracing_insecure"`
}

// Configuration validation errors.
var (
	ErrInvalidStorageDriver = errors.New("STORAGE_DRIVER must be one of memory, file, redis, postgres")
	ErrMissingStoragePath   = errors.New("STORAGE_PATH is required for the file storage driver")
	ErrMissingDatabaseURL   = errors.New("DATABASE_URL is required for the postgres storage driver")
	ErrMissingRedisURL      = errors.New("REDIS_URL is required for the redis storage driver")
	ErrInvalidPort          = errors.New("PORT must be a valid integer")
)

// Default values for non-secret configuration.
const (
	DefaultPort              = 8080
	DefaultEnv               = "development"
	DefaultStorageDriver     = DriverFile
	DefaultStoragePath       = "tourplan-state.json"
	DefaultR2MaxUploadSizeMB = 15
	DefaultSamplingRate      = 0.1
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefaultMulti([]string{"TOURPLAN_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	maxUploadSize, uploadSizeErr := getEnvIntOrDefault("R2_MAX_UPLOAD_SIZE_MB", k.Int("r2_max_upload_size_mb"), DefaultR2MaxUploadSizeMB)
	if uploadSizeErr != nil {
		loadErrs = append(loadErrs, uploadSizeErr)
	}

	samplingRate, samplingErr := getEnvFloatOrDefault("TRACING_SAMPLING_RATE", k.Float64("tracing_sampling_rate"), DefaultSamplingRate)
	if samplingErr != nil {
		loadErrs = append(loadErrs, samplingErr)
	}

	cfg := &Config{
		Port:          port,
		Env:           getEnvOrDefaultMulti([]string{"TOURPLAN_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		StorageDriver: getEnvOrDefault("STORAGE_DRIVER", k.String("storage_driver"), DefaultStorageDriver),
		StoragePath:   getEnvOrDefault("STORAGE_PATH", k.String("storage_path"), DefaultStoragePath),
		DatabaseURL:   getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:      getEnvOrKoanf("REDIS_URL", k, "redis_url"),

		MapTilerAPIKey: getEnvOrKoanf("MAPTILER_API_KEY", k, "maptiler_api_key"),
		MapStyleURL:    getEnvOrKoanf("MAP_STYLE_URL", k, "map_style_url"),

		ShareBaseURL: getEnvOrDefault("SHARE_BASE_URL", k.String("share_base_url"),
			fmt.Sprintf("http://localhost:%d", port)),

		R2BucketName:      getEnvOrKoanf("R2_BUCKET_NAME", k, "r2_bucket_name"),
		R2AccessKeyID:     getEnvOrKoanf("R2_ACCESS_KEY_ID", k, "r2_access_key_id"),
		R2SecretAccessKey: getEnvOrKoanf("R2_SECRET_ACCESS_KEY", k, "r2_secret_access_key"),
		R2Endpoint:        getEnvOrKoanf("R2_ENDPOINT", k, "r2_endpoint"),
		R2PublicBaseURL:   getEnvOrKoanf("R2_PUBLIC_BASE_URL", k, "r2_public_base_url"),
		R2MaxUploadSizeMB: maxUploadSize,

		CORSAllowedOrigins: getEnvListOrKoanf("CORS_ALLOWED_ORIGINS", k, "cors_allowed_origins"),

		TracingEnabled:      getEnvBoolOrKoanf("TRACING_ENABLED", k, "tracing_enabled"),
		TracingExporter:     getEnvOrDefault("TRACING_EXPORTER", k.String("tracing_exporter"), "otlp-http"),
		TracingOTLPEndpoint: getEnvOrKoanf("TRACING_OTLP_ENDPOINT", k, "tracing_otlp_endpoint"),
		TracingSamplingRate: samplingRate,
		TracingInsecure:     getEnvBoolOrKoanf("TRACING_INSECURE", k, "tracing_insecure"),
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// Validate checks that all required configuration values are present.
// Only the selected storage driver's settings are required; the map key
// and R2 credentials are optional because their features degrade to
// placeholder behavior when absent.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	switch c.StorageDriver {
	case DriverMemory:
	case DriverFile:
		if c.StoragePath == "" {
			errs = append(errs, ErrMissingStoragePath)
		}
	case DriverRedis:
		if c.RedisURL == "" {
			errs = append(errs, ErrMissingRedisURL)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, ErrMissingDatabaseURL)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidStorageDriver, c.StorageDriver))
	}

	return errs
}

// UploadsEnabled reports whether the R2 photo upload surface is fully
// configured.
func (c *Config) UploadsEnabled() bool {
	return c.R2BucketName != "" && c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" && c.R2Endpoint != ""
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvListOrKoanf returns a comma-separated environment list if set,
// otherwise the koanf string slice.
func getEnvListOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) []string {
	if val := os.Getenv(envKey); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return k.Strings(koanfKey)
}

// getEnvBoolOrKoanf returns the environment variable as bool if set, otherwise the koanf value.
func getEnvBoolOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) bool {
	if val := os.Getenv(envKey); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return k.Bool(koanfKey)
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, ErrInvalidPort)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as a float.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}
