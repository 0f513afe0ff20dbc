package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the process environment, loading a local
// .env file first when one exists. Unset variables leave the current value
// untouched.
func parseEnv(config *Config) {
	// .env is a development convenience; absence is not an error
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString("ENDPOINT_ADDR", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setString("GITHUB_OWNER", &config.GitHubOwner)
	setString("GITHUB_REPO", &config.GitHubRepo)
	setString("GITHUB_RESOURCES_REPO", &config.GitHubResourcesRepo)
	setString("GITHUB_API_BASE_URL", &config.GitHubAPIBaseURL)
	setString("CLOUDFLARE_ACCOUNT_ID", &config.CloudflareAccountID)
	setString("CLOUDFLARE_API_TOKEN", &config.CloudflareAPIToken)
	setString("CLOUDFLARE_DELIVERY_HASH", &config.CloudflareDeliveryHash)
	setString("CLOUDFLARE_API_BASE_URL", &config.CloudflareAPIBaseURL)
	setString("CDN_HOST", &config.CDNHost)
	setString("ARCHIVE_REGION", &config.ArchiveRegion)
	setString("ARCHIVE_ENDPOINT", &config.ArchiveEndpoint)
	setString("ARCHIVE_BUCKET", &config.ArchiveBucket)
	setString("ARCHIVE_ACCESS_KEY", &config.ArchiveAccessKey)
	setString("ARCHIVE_SECRET_KEY", &config.ArchiveSecretKey)

	if v, ok := os.LookupEnv("SESSION_VALIDITY_MINUTES"); ok {
		if minutes, err := strconv.Atoi(v); err == nil {
			config.SessionValidityDuration = time.Duration(minutes) * time.Minute
		}
	}
	if v, ok := os.LookupEnv("UPLOAD_BATCH_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.UploadBatchSize = n
		}
	}
}
