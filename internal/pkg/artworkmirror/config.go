package artworkmirror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flixhive/flixhive/internal/pkg/env"
)

// Config holds artwork mirror S3 configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	PublicBaseURL   string // Optional CDN/public base for mirrored objects
	Enabled         bool
}

// LoadConfig loads artwork mirror configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("ARTWORK_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("ARTWORK_S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("ARTWORK_S3_REGION", "us-west-001"),
		BucketName:      env.GetEnv("ARTWORK_S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("ARTWORK_S3_ENDPOINT_URL", ""),
		PublicBaseURL:   strings.TrimRight(env.GetEnv("ARTWORK_PUBLIC_BASE_URL", ""), "/"),
		Enabled:         env.GetEnv("ARTWORK_MIRROR_ENABLED", "false") == "true",
	}

	// Validate required fields if the mirror is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("ARTWORK_S3_ACCESS_KEY_ID is required when the artwork mirror is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("ARTWORK_S3_SECRET_ACCESS_KEY is required when the artwork mirror is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("ARTWORK_S3_BUCKET_NAME is required when the artwork mirror is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if the artwork mirror is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// GetObjectKey generates a standardized object key for a mirrored artwork file.
// kind is "poster" or "backdrop".
func (c *Config) GetObjectKey(tmdbID int64, kind string, year, month int) string {
	// Format: artwork/YYYY/MM/<tmdbID>_<kind>.jpg
	return fmt.Sprintf("artwork/%04d/%02d/%d_%s.jpg", year, month, tmdbID, kind)
}

// PublicURL returns the public URL for a mirrored object, or "" when no
// public base is configured.
func (c *Config) PublicURL(objectKey string) string {
	if c.PublicBaseURL == "" || objectKey == "" {
		return ""
	}
	return c.PublicBaseURL + "/" + objectKey
}

// GetAppEnv returns the current application environment
func GetAppEnv() string {
	return env.GetEnv("APP_ENV", "dev")
}

// GetBucketName returns the bucket name as configured (no automatic prefixing)
func (c *Config) GetBucketName() string {
	return c.BucketName
}
