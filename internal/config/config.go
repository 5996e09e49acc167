package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything the server reads from the environment.
// It is loaded once in main and injected into constructors; no other
// package reads os.Getenv directly.
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string

	// BaseURL is the externally visible address of this server, used to
	// build URLs for locally stored files.
	BaseURL string

	// UploadsDir is both the staging and the serving directory for
	// locally stored files. Created on startup if absent.
	UploadsDir string

	MaxFileSize int64 // per file, bytes
	MaxFiles    int   // per upload request

	JWTSecret     string
	JWTExpiry     time.Duration
	AdminUsername string
	AdminPassword string

	Cloudinary CloudinaryConfig
	S3         S3Config
}

// CloudinaryConfig is the credential triple for Cloudinary. All three
// values must be set for the backend to be considered configured.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// S3Config points at an S3-compatible object store (AWS, MinIO, R2...).
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// PublicURL overrides the URL base under which stored objects are
	// reachable. Defaults to the endpoint itself.
	PublicURL string
}

func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "5000"),
		MongoURI: getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGODB_DB", "notesvilla"),

		BaseURL:    getEnv("BASE_URL", "http://localhost:5000"),
		UploadsDir: getEnv("UPLOADS_DIR", "uploads"),

		MaxFileSize: getInt64("MAX_FILE_SIZE", 50*1024*1024),
		MaxFiles:    int(getInt64("MAX_FILES", 10)),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTExpiry:     getDuration("JWT_EXPIRES", 24*time.Hour),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "notesvilla/notes"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			UseSSL:    getEnv("S3_USE_SSL", "true") == "true",
			PublicURL: getEnv("S3_PUBLIC_URL", ""),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
