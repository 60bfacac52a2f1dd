package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Record store backends.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Asset relay backends.
const (
	RelayCloudinary = "cloudinary"
	RelayS3         = "s3"
	RelayLocal      = "local"
)

// Config holds the environment driven configuration for the media catalog service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"media-catalog"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"PORT" envDefault:"5000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Record Store Selection
	StoreBackend string `env:"MEDIA_STORE_BACKEND" envDefault:"mongo"` // Options: "mongo", "postgres" or "sqlite"

	// MongoDB
	MongoURI            string        `env:"MONGO_URI"`
	MongoDatabase       string        `env:"MONGO_DATABASE" envDefault:"media"`
	MongoCollection     string        `env:"MONGO_COLLECTION" envDefault:"media"`
	MongoConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`

	// Relational stores
	DatabaseURL    string        `env:"DATABASE_URL"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"media-catalog.db"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Asset Relay Selection
	RelayBackend    string `env:"MEDIA_RELAY_BACKEND" envDefault:"cloudinary"` // Options: "cloudinary", "s3" or "local"
	ThumbnailFolder string `env:"MEDIA_THUMBNAIL_FOLDER" envDefault:"thumbnails"`
	VideoFolder     string `env:"MEDIA_VIDEO_FOLDER" envDefault:"videos"`

	// Cloudinary
	CloudinaryCloudName    string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey       string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret    string `env:"CLOUDINARY_API_SECRET"`
	CloudinaryUploadPrefix string `env:"CLOUDINARY_UPLOAD_PREFIX"` // Overrides https://api.cloudinary.com

	// S3 Storage Configuration
	S3Endpoint       string `env:"MEDIA_S3_ENDPOINT"`
	S3PublicEndpoint string `env:"MEDIA_S3_PUBLIC_ENDPOINT"`
	S3Region         string `env:"MEDIA_S3_REGION" envDefault:"us-west-2"`
	S3Bucket         string `env:"MEDIA_S3_BUCKET"`
	S3AccessKeyID    string `env:"MEDIA_S3_ACCESS_KEY_ID"`     // AWS standard naming
	S3SecretKey      string `env:"MEDIA_S3_SECRET_ACCESS_KEY"` // AWS standard naming
	S3UsePathStyle   bool   `env:"MEDIA_S3_USE_PATH_STYLE" envDefault:"true"`

	// Local Storage Configuration
	LocalStoragePath    string `env:"MEDIA_LOCAL_STORAGE_PATH" envDefault:"./uploads"`
	LocalStorageBaseURL string `env:"MEDIA_LOCAL_STORAGE_BASE_URL"` // e.g. "http://localhost:5000/files"

	// Upload Handling
	MaxMultipartMemory  int64         `env:"MEDIA_MAX_MULTIPART_MEMORY" envDefault:"33554432"`
	UploadTimeout       time.Duration `env:"MEDIA_UPLOAD_TIMEOUT" envDefault:"5m"`
	CompensateOnFailure bool          `env:"MEDIA_COMPENSATE_ON_FAILURE" envDefault:"true"`
	CompensationTimeout time.Duration `env:"MEDIA_COMPENSATION_TIMEOUT" envDefault:"30s"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.RelayBackend = strings.ToLower(strings.TrimSpace(cfg.RelayBackend))
	cfg.MongoURI = strings.TrimSpace(cfg.MongoURI)
	cfg.CloudinaryCloudName = strings.TrimSpace(cfg.CloudinaryCloudName)
	cfg.CloudinaryAPIKey = strings.TrimSpace(cfg.CloudinaryAPIKey)
	cfg.CloudinaryAPISecret = strings.TrimSpace(cfg.CloudinaryAPISecret)
	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.S3PublicEndpoint = strings.TrimSpace(cfg.S3PublicEndpoint)
	if cfg.MaxMultipartMemory <= 0 {
		cfg.MaxMultipartMemory = 32 << 20
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when MEDIA_STORE_BACKEND is %s", StoreMongo)
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when MEDIA_STORE_BACKEND is %s", StorePostgres)
		}
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when MEDIA_STORE_BACKEND is %s", StoreSQLite)
		}
	default:
		return fmt.Errorf("unknown MEDIA_STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.RelayBackend {
	case RelayCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required when MEDIA_RELAY_BACKEND is %s", RelayCloudinary)
		}
	case RelayS3:
		if c.S3Bucket == "" || c.S3AccessKeyID == "" || c.S3SecretKey == "" {
			return fmt.Errorf("MEDIA_S3_BUCKET and credentials are required when MEDIA_RELAY_BACKEND is %s", RelayS3)
		}
	case RelayLocal:
		if strings.TrimSpace(c.LocalStoragePath) == "" {
			return fmt.Errorf("MEDIA_LOCAL_STORAGE_PATH is required when MEDIA_RELAY_BACKEND is %s", RelayLocal)
		}
	default:
		return fmt.Errorf("unknown MEDIA_RELAY_BACKEND %q", c.RelayBackend)
	}

	if c.UploadTimeout <= 0 {
		return fmt.Errorf("MEDIA_UPLOAD_TIMEOUT must be positive")
	}
	if c.CompensationTimeout <= 0 {
		return fmt.Errorf("MEDIA_COMPENSATION_TIMEOUT must be positive")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalRelay returns true if the local filesystem relay is configured.
func (c *Config) IsLocalRelay() bool {
	return c.RelayBackend == RelayLocal
}

// IsProduction reports whether the service runs in the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// LocalBaseURL returns the public base URL for files written by the local relay.
func (c *Config) LocalBaseURL() string {
	if base := strings.TrimSpace(c.LocalStorageBaseURL); base != "" {
		return strings.TrimSuffix(base, "/")
	}
	return fmt.Sprintf("http://localhost:%d/files", c.HTTPPort)
}
