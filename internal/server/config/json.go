package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/drewsiph/sitekeeper/internal/flagx"
)

// JsonConfig is the intermediate DTO for reading JSON configuration files.
// After unmarshalling, non-zero fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr           string `json:"endpoint_addr"`
	DatabaseDSN            string `json:"database_dsn"`
	SecretKey              string `json:"secret_key"`
	SessionValidityMinutes int    `json:"session_validity_minutes"`

	GitHubOwner         string `json:"github_owner"`
	GitHubRepo          string `json:"github_repo"`
	GitHubResourcesRepo string `json:"github_resources_repo"`
	GitHubAPIBaseURL    string `json:"github_api_base_url"`

	CloudflareAccountID    string `json:"cloudflare_account_id"`
	CloudflareAPIToken     string `json:"cloudflare_api_token"`
	CloudflareDeliveryHash string `json:"cloudflare_delivery_hash"`
	CloudflareAPIBaseURL   string `json:"cloudflare_api_base_url"`
	CDNHost                string `json:"cdn_host"`

	ArchiveRegion    string `json:"archive_region"`
	ArchiveEndpoint  string `json:"archive_endpoint"`
	ArchiveBucket    string `json:"archive_bucket"`
	ArchiveAccessKey string `json:"archive_access_key"`
	ArchiveSecretKey string `json:"archive_secret_key"`

	UploadBatchSize int `json:"upload_batch_size"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. An unreadable or
// invalid file panics: a config file that was explicitly pointed at must not
// be silently ignored.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&config.EndpointAddr, c.EndpointAddr)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	set(&config.GitHubOwner, c.GitHubOwner)
	set(&config.GitHubRepo, c.GitHubRepo)
	set(&config.GitHubResourcesRepo, c.GitHubResourcesRepo)
	set(&config.GitHubAPIBaseURL, c.GitHubAPIBaseURL)
	set(&config.CloudflareAccountID, c.CloudflareAccountID)
	set(&config.CloudflareAPIToken, c.CloudflareAPIToken)
	set(&config.CloudflareDeliveryHash, c.CloudflareDeliveryHash)
	set(&config.CloudflareAPIBaseURL, c.CloudflareAPIBaseURL)
	set(&config.CDNHost, c.CDNHost)
	set(&config.ArchiveRegion, c.ArchiveRegion)
	set(&config.ArchiveEndpoint, c.ArchiveEndpoint)
	set(&config.ArchiveBucket, c.ArchiveBucket)
	set(&config.ArchiveAccessKey, c.ArchiveAccessKey)
	set(&config.ArchiveSecretKey, c.ArchiveSecretKey)

	if c.SessionValidityMinutes > 0 {
		config.SessionValidityDuration = time.Duration(c.SessionValidityMinutes) * time.Minute
	}
	if c.UploadBatchSize > 0 {
		config.UploadBatchSize = c.UploadBatchSize
	}
}
