// Command sessiontoken mints a signed session token for use against the
// API, for scripts and local development where the /api/session endpoint is
// inconvenient. The host access token is prompted for, never passed as an
// argument, so it stays out of shell history.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/drewsiph/sitekeeper/internal/server/auth"
)

func main() {
	user := flag.String("user", "", "user id to embed in the token")
	secret := flag.String("secret", "", "JWT HMAC secret key (must match the server)")
	minutes := flag.Int("t", 720, "token validity in minutes")
	flag.Parse()

	if *user == "" || *secret == "" {
		flag.Usage()
		os.Exit(2)
	}

	fmt.Fprint(os.Stderr, "host access token: ")
	hostToken, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("read token: %v", err)
	}
	if len(hostToken) == 0 {
		log.Fatal("host access token is required")
	}

	token, err := auth.GenerateToken(*user, string(hostToken),
		[]byte(*secret), time.Duration(*minutes)*time.Minute)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}

	fmt.Println(token)
}
