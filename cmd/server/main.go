package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/agenthands/callrank/internal/config"
	"github.com/agenthands/callrank/internal/logging"
	"github.com/agenthands/callrank/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.toml"
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := logging.New(cfg.Logging, os.Stderr)
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	analyzer, closeStore, err := server.NewAnalyzer(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("Failed to set up analyzer: %v", err)
	}
	defer closeStore()

	r := server.NewServer(analyzer, logger).SetupRouter()

	logger.Info("starting server", "port", cfg.Server.Port, "strategy", analyzer.Strategy.String())
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
