// Package main is a small command for minting bearer tokens against a
// running API, e.g.
//
//	go run ./cmd/tokengen -subject alice -roles admin
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aoideee/bookshelf-api/internal/auth"
)

func main() {
	var (
		secret  string
		subject string
		roles   string
		ttl     time.Duration
	)

	flag.StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HS256 secret shared with the API (defaults to $JWT_SECRET)")
	flag.StringVar(&subject, "subject", "admin", "Token subject")
	flag.StringVar(&roles, "roles", auth.RoleAdmin, "Comma-separated roles")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if secret == "" {
		secret = auth.DevelopmentSecret
		logger.Warn("no secret given, signing with the development secret")
	}

	tokens, err := auth.NewTokenService(secret, auth.DefaultIssuer)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	token, err := tokens.Issue(subject, splitRoles(roles), ttl)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	fmt.Println(token)
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
