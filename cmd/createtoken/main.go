// Command createtoken prints an admin token signed with the configured
// secret, for scripts that call the admin API without logging in.
package main

import (
	"flag"
	"fmt"
	"log"

	"licensedesk.com/licensedesk/config"
	"licensedesk.com/licensedesk/security"
)

func main() {
	username := flag.String("username", "admin", "token subject")
	role := flag.String("role", "admin", "role claim")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	token, err := security.CreateAdminToken(&security.AdminIdentity{
		Username: *username,
		Role:     *role,
	}, []byte(cfg.Auth.Secret), cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatalf("failed to create token: %v", err)
	}
	fmt.Println(token)
}
