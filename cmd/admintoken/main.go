// cmd/admintoken/main.go
//
// Mints an admin bearer token with the configured secret.
//
//	go run ./cmd/admintoken -sub sam -ttl 12h
//
// The token is printed to stdout; nothing is stored.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/yanizio/perks/internal/auth"
	"github.com/yanizio/perks/internal/config"
	"github.com/yanizio/perks/internal/vault"
)

func main() {
	sub := flag.String("sub", "", "token subject (required)")
	roles := flag.String("roles", "", "comma-separated roles (default admin.role)")
	ttl := flag.Duration("ttl", 8*time.Hour, "token lifetime")
	flag.Parse()

	if *sub == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	var secrets config.SecretResolver
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err := vault.New(ctx)
		if err != nil {
			log.Fatal(err)
		}
		secrets = vc
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		log.Fatal(err)
	}

	rs := []string{cfg.Admin.Role}
	if *roles != "" {
		rs = strings.Split(*roles, ",")
	}
	tok, err := auth.NewTokens(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer).Issue(*sub, rs, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tok)
}
