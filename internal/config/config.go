package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	TwilioAuthToken  string
	TwilioAccountSID string

	MediaFetchTimeout time.Duration

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	GalleryBucket      string
	MediaPublicBaseURL string

	GalleryTable           string
	HistoryTable           string
	ContributorsTable      string
	ContributorsPhoneIndex string

	SESFromEmail     string
	SESFromName      string
	OwnerNotifyEmail string

	WebhookRatePerSec int
	WebhookBurst      int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),

		MediaFetchTimeout: getEnvAsDuration("MEDIA_FETCH_TIMEOUT", 20*time.Second),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		GalleryBucket:      getEnv("GALLERY_BUCKET", ""),
		MediaPublicBaseURL: getEnv("MEDIA_PUBLIC_BASE_URL", "https://s3.amazonaws.com"),

		GalleryTable:           getEnv("GALLERY_TABLE", "gallery_items"),
		HistoryTable:           getEnv("HISTORY_TABLE", "history_entries"),
		ContributorsTable:      getEnv("CONTRIBUTORS_TABLE", "contributors"),
		ContributorsPhoneIndex: getEnv("CONTRIBUTORS_PHONE_INDEX", "phone-index"),

		SESFromEmail:     getEnv("SES_FROM_EMAIL", ""),
		SESFromName:      getEnv("SES_FROM_NAME", "RecipeBox"),
		OwnerNotifyEmail: getEnv("OWNER_NOTIFY_EMAIL", ""),

		WebhookRatePerSec: getEnvAsInt("WEBHOOK_RATE_PER_SEC", 5),
		WebhookBurst:      getEnvAsInt("WEBHOOK_BURST", 10),
	}
}

// Validate surfaces missing required settings as a startup error instead of
// deferring failures into request handling.
func (c *Config) Validate() error {
	var missing []string
	if c.GalleryBucket == "" {
		missing = append(missing, "GALLERY_BUCKET")
	}
	if c.GalleryTable == "" {
		missing = append(missing, "GALLERY_TABLE")
	}
	if c.HistoryTable == "" {
		missing = append(missing, "HISTORY_TABLE")
	}
	if c.ContributorsTable == "" {
		missing = append(missing, "CONTRIBUTORS_TABLE")
	}
	if c.Env == "production" {
		if c.TwilioAuthToken == "" {
			missing = append(missing, "TWILIO_AUTH_TOKEN")
		}
		if c.PublicBaseURL == "" {
			missing = append(missing, "PUBLIC_BASE_URL")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
