package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/skanerxe/nutrition-helper/internal/config"
)

func main() {
	fmt.Println("Checking configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("Note: .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Configuration is invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration is valid!")
	fmt.Printf("Details:\n")
	fmt.Printf("  - GitHub Token: %s\n", maskToken(cfg.GitHub.Token))
	fmt.Printf("  - GitHub Repo: %s/%s (branch %s)\n", cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Branch)
	fmt.Printf("  - GitHub Base Path: %s\n", cfg.GitHub.BasePath)
	fmt.Printf("  - Cache TTL: %s\n", cfg.Cache.TTL)
	fmt.Printf("  - Fallback DB: %s\n", cfg.Fallback.DBPath)
	if cfg.Redis.Host != "" {
		fmt.Printf("  - Redis: %s:%s\n", cfg.Redis.Host, cfg.Redis.Port)
	} else {
		fmt.Printf("  - Redis: <not configured, in-memory chat history>\n")
	}
	fmt.Printf("  - Cleanup Schedule: %s\n", cfg.Maintenance.Schedule)
	fmt.Printf("  - Retention Days: %d\n", cfg.Maintenance.RetentionDays)
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
