// Command admintoken prints a bearer token for the admin API, signed with
// JWT_SECRET from the environment or .env.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"guildgate/utils"
)

func main() {
	subject := flag.String("subject", "", "operator the token is issued to")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if *subject == "" || secret == "" {
		fmt.Fprintln(os.Stderr, "usage: JWT_SECRET=... admintoken -subject <name> [-ttl 24h]")
		os.Exit(2)
	}

	token, err := utils.GenerateAdminToken(secret, *subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
