package storage

import (
	"strings"
	"time"
)

// DefaultTimeout bounds connection setup when TimeoutSeconds is not positive.
const DefaultTimeout = 30 * time.Second

// Config is the S3 compatible target of `export storage`.
type Config struct {
	// Endpoint may carry an http:// or https:// scheme; it is stripped.
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	// Bucket receives exported views and tables. It is created on demand.
	Bucket string `mapstructure:"bucket" default:"atlas"`
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds dialing, TLS and the wait for response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Host is the endpoint without scheme or trailing slash.
func (c Config) Host() string {
	host := strings.TrimPrefix(c.Endpoint, "http://")
	host = strings.TrimPrefix(host, "https://")
	return strings.TrimSuffix(host, "/")
}

// Timeout returns TimeoutSeconds as a duration, or DefaultTimeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
