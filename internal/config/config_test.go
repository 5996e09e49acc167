package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// No env vars set in the test process for these keys.
	cfg := Load()

	if cfg.Port != "5000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.MaxFileSize != 50*1024*1024 {
		t.Errorf("MaxFileSize = %d", cfg.MaxFileSize)
	}
	if cfg.MaxFiles != 10 {
		t.Errorf("MaxFiles = %d", cfg.MaxFiles)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("JWTExpiry = %v", cfg.JWTExpiry)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MAX_FILE_SIZE", "1048576")
	t.Setenv("JWT_EXPIRES", "1h")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.MaxFileSize != 1<<20 {
		t.Errorf("MaxFileSize = %d", cfg.MaxFileSize)
	}
	if cfg.JWTExpiry != time.Hour {
		t.Errorf("JWTExpiry = %v", cfg.JWTExpiry)
	}
}

func TestCloudinaryEnabled(t *testing.T) {
	c := CloudinaryConfig{CloudName: "demo", APIKey: "key"}
	if c.Enabled() {
		t.Error("enabled without API secret")
	}
	c.APISecret = "secret"
	if !c.Enabled() {
		t.Error("not enabled with full credential triple")
	}
}

func TestS3Enabled(t *testing.T) {
	c := S3Config{Endpoint: "minio:9000", Bucket: "notes", AccessKey: "ak"}
	if c.Enabled() {
		t.Error("enabled without secret key")
	}
	c.SecretKey = "sk"
	if !c.Enabled() {
		t.Error("not enabled with endpoint, bucket and both keys")
	}
}
