package main

import (
	"log"

	"github.com/joho/godotenv"

	"datasight/adapters/llm"
	"datasight/ai"
	"datasight/internal/api"
	"datasight/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[api] no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[api] failed to load configuration: %v", err)
	}
	if cfg.AI.APIKey == "" {
		log.Printf("[api] OPENROUTER_API_KEY not set; AI answers will report the missing key")
	}

	client := llm.NewOpenRouterClient(llm.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Timeout:     cfg.AI.Timeout,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	})

	server := api.NewServer(cfg, ai.NewService(client))

	addr := ":" + cfg.Server.Port
	log.Printf("[api] listening on %s", addr)
	if err := server.Run(addr); err != nil {
		log.Fatalf("[api] server failed: %v", err)
	}
}
