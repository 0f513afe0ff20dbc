package config

import (
	"flag"
	"os"
	"time"

	"github.com/drewsiph/sitekeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line
// flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-o string   remote repository owner
//	-r string   remote repository name
//	-b string   archive bucket name
//	-n int      upload batch size
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-o", "-r", "-b", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidityMinutes := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session token validity (in minutes)")

	fs.StringVar(&config.GitHubOwner, "o", config.GitHubOwner, "remote repository owner")
	fs.StringVar(&config.GitHubRepo, "r", config.GitHubRepo, "remote repository name")
	fs.StringVar(&config.ArchiveBucket, "b", config.ArchiveBucket, "archive bucket name")

	uploadBatchSize := fs.Int("n", config.UploadBatchSize, "upload batch size")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidityMinutes) * time.Minute
	config.UploadBatchSize = *uploadBatchSize
}
