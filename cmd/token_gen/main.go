package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/config"
	"greek-row/chapterhouse/internal/db"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/services"
)

// token_gen mints a bearer token for an existing account, for smoke tests
// and ops scripts.
func main() {
	email := flag.String("email", "", "account email")
	flag.Parse()
	if *email == "" {
		log.Fatalf("-email is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	orm, err := db.InitORM(cfg.Database)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	identity := auth.NewLocalIdentityProvider(repositories.NewAuthUserRepository(orm))
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	svc := services.NewAuthService(identity, tokens, common.NewMemorySessionStore(cfg.Auth.SessionTTL), repositories.NewProfileRepository(orm))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	token, expires, err := svc.IssueForEmail(ctx, common.NormalizeEmail(*email))
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println("Token:", token)
	fmt.Println("Expires:", expires.Format(time.RFC3339))
}
