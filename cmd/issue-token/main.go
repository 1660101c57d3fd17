// Command issue-token mints an access token for an operator or integration
// and registers its session in Redis.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/logger"
)

func main() {
	actorID := flag.String("actor", "", "actor id recorded as the token subject")
	role := flag.String("role", "SCHEDULER", "ADMIN, SCHEDULER, FACULTY or STUDENT")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	tokens := service.NewTokenService(repository.NewSessionRepository(redisClient), validator.New(), logr, service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Expiration,
		SessionTTL: cfg.JWT.SessionTTL,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issued, err := tokens.Issue(ctx, dto.IssueTokenRequest{ActorID: *actorID, Role: *role})
	if err != nil {
		logr.Sugar().Fatalw("failed to issue token", "error", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(issued); err != nil {
		logr.Sugar().Fatalw("failed to write token", "error", err)
	}
}
