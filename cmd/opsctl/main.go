package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dimitrije/internal-ops/internal/config"
	"github.com/dimitrije/internal-ops/internal/database"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/services"
	"github.com/dimitrije/internal-ops/pkg/dto"
)

const usage = `Usage:
  opsctl create-user <email> <name> <role>
  opsctl issue-token <email>`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userService := services.NewUserService(db)

	switch cmd, args := os.Args[1], os.Args[2:]; {
	case cmd == "create-user" && len(args) == 3:
		user, err := userService.Register(ctx, dto.CreateUserRequest{
			Email: args[0],
			Name:  args[1],
			Role:  models.Role(args[2]),
		})
		if err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		fmt.Printf("Created %s %s (%s)\n", user.Role, user.Email, user.ID)

	case cmd == "issue-token" && len(args) == 1:
		user, err := userService.GetByEmail(ctx, args[0])
		if err != nil {
			log.Fatalf("No user found with email %s: %v", args[0], err)
		}
		jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
		pair, err := jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Printf("access_token:  %s\nrefresh_token: %s\n", pair.AccessToken, pair.RefreshToken)

	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}
