package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, verification
// pipeline, artifact storage and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":5001" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"2m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"5m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for verifying a single uploaded batch
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"4m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// PublicURL is the externally reachable base URL used to build download links
		PublicURL string `env:"HTTP_PUBLIC_URL" env-default:"http://localhost:5001" yaml:"publicUrl"`
		// MaxUploadBytes limits the size of an upload request body
		MaxUploadBytes int64 `env:"HTTP_MAX_UPLOAD_BYTES" env-default:"104857600" yaml:"maxUploadBytes"`
		// MultipartMemory is the part of a multipart body kept in memory before spilling to temp files
		MultipartMemory int64 `env:"HTTP_MULTIPART_MEMORY" env-default:"33554432" yaml:"multipartMemory"`
		// AllowedOrigins lists the CORS origins; "*" allows any origin
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-default:"*" yaml:"allowedOrigins"`
	} `yaml:"http"`

	// Verifier contains the classification pipeline settings
	Verifier struct {
		// Concurrency is the maximum number of rows classified at the same time
		Concurrency int `env:"VERIFIER_CONCURRENCY" env-default:"64" yaml:"concurrency"`
		// LookupTimeout bounds a single MX lookup
		LookupTimeout time.Duration `env:"VERIFIER_LOOKUP_TIMEOUT" env-default:"5s" yaml:"lookupTimeout"`
		// CacheTTL is how long a definitive MX answer is reused; 0 disables caching
		CacheTTL time.Duration `env:"VERIFIER_CACHE_TTL" env-default:"10m" yaml:"cacheTtl"`
		// CacheCapacity caps the number of cached domains; 0 means unbounded
		CacheCapacity uint64 `env:"VERIFIER_CACHE_CAPACITY" env-default:"100000" yaml:"cacheCapacity"`
		// BatchTimeout bounds one whole batch; 0 disables the limit
		BatchTimeout time.Duration `env:"VERIFIER_BATCH_TIMEOUT" env-default:"0" yaml:"batchTimeout"`
	} `yaml:"verifier"`

	// Storage selects and configures where output artifacts are written
	Storage struct {
		// Backend is either "local" or "s3"
		Backend string `env:"STORAGE_BACKEND" env-default:"local" yaml:"backend"`
		// LocalDir is the directory used by the local backend
		LocalDir string `env:"STORAGE_LOCAL_DIR" env-default:"uploads" yaml:"localDir"`
		// S3 configures the s3 backend
		S3 struct {
			Bucket   string `env:"STORAGE_S3_BUCKET" yaml:"bucket"`
			Prefix   string `env:"STORAGE_S3_PREFIX" yaml:"prefix"`
			Region   string `env:"STORAGE_S3_REGION" yaml:"region"`
			Endpoint string `env:"STORAGE_S3_ENDPOINT" yaml:"endpoint"`
			// PathStyle forces path-style addressing, needed by most S3-compatible stores
			PathStyle bool `env:"STORAGE_S3_PATH_STYLE" yaml:"pathStyle"`
		} `yaml:"s3"`
	} `yaml:"storage"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}

// Default returns a Config populated from defaults and environment variables
// only, for commands that run without a config file.
func Default() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("could not read config from env: %w", err)
	}

	return &cfg, nil
}
