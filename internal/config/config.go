package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL    string
	DBMaxConns     int
	HTTPListenAddr string
	LogLevel       string
	ServiceName    string
	CORSOrigins    []string

	// NotifyReconnectDelay is how long the relay waits before re-opening
	// its LISTEN connection after an error.
	NotifyReconnectDelay time.Duration
	SSEKeepAlive         time.Duration
	SubscriberBuffer     int

	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string
	VideoMaxBytes     int64

	SchedulerEnabled bool
}

func Load() (*Config, error) {
	var corsList []string
	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			corsList = append(corsList, trimmed)
		}
	}

	reconnect, err := getDuration("NOTIFY_RECONNECT_DELAY", 5*time.Second)
	if err != nil {
		return nil, err
	}
	keepAlive, err := getDuration("SSE_KEEPALIVE", 25*time.Second)
	if err != nil {
		return nil, err
	}
	buffer, err := getInt("SUBSCRIBER_BUFFER", 16)
	if err != nil {
		return nil, err
	}
	maxConns, err := getInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	maxBytes, err := getInt("VIDEO_MAX_BYTES", 200<<20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DBMaxConns:           maxConns,
		HTTPListenAddr:       getEnv("HTTP_LISTEN_ADDR", ":8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ServiceName:          getEnv("SERVICE_NAME", "cafe-api"),
		CORSOrigins:          corsList,
		NotifyReconnectDelay: reconnect,
		SSEKeepAlive:         keepAlive,
		SubscriberBuffer:     buffer,
		S3Endpoint:           getEnv("S3_ENDPOINT", ""),
		S3Region:             getEnv("S3_REGION", "us-east-1"),
		S3Bucket:             getEnv("S3_BUCKET", "cafe-videos"),
		S3AccessKeyID:        getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicBaseURL:      strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		VideoMaxBytes:        int64(maxBytes),
		SchedulerEnabled:     getEnv("SCHEDULER_ENABLED", "true") == "true",
	}

	return cfg, nil
}

// Validate checks the settings the API server cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.HTTPListenAddr == "" {
		missing = append(missing, "HTTP_LISTEN_ADDR")
	}
	if c.S3Endpoint != "" {
		if c.S3AccessKeyID == "" {
			missing = append(missing, "S3_ACCESS_KEY_ID")
		}
		if c.S3SecretAccessKey == "" {
			missing = append(missing, "S3_SECRET_ACCESS_KEY")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}
	if c.NotifyReconnectDelay <= 0 {
		return fmt.Errorf("NOTIFY_RECONNECT_DELAY must be positive")
	}
	if c.SSEKeepAlive <= 0 {
		return fmt.Errorf("SSE_KEEPALIVE must be positive")
	}
	if c.SubscriberBuffer < 1 {
		return fmt.Errorf("SUBSCRIBER_BUFFER must be at least 1")
	}
	if c.VideoMaxBytes < 1 {
		return fmt.Errorf("VIDEO_MAX_BYTES must be at least 1")
	}
	return nil
}

// StorageEnabled reports whether campaign video uploads are configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
