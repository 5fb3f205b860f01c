package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-plan-guard/internal/app"
	"ai-plan-guard/internal/catalog"
	"ai-plan-guard/internal/config"
	"ai-plan-guard/internal/database"
	"ai-plan-guard/internal/generator"
	"ai-plan-guard/internal/llm"
	"ai-plan-guard/internal/metrics"
	"ai-plan-guard/internal/rules"
	"ai-plan-guard/internal/storage"
	"ai-plan-guard/internal/telegram"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable not set")
	}

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repo := catalog.NewRepository(db.SQL)
	if err := catalog.Seed(ctx, repo); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	metricsStore := metrics.NewStore(db.SQL)

	var textGen llm.TextGenerator
	if cfg.LLMProvider == "gemini" {
		gen, closer, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer closer.Close()
		textGen = gen
	} else {
		textGen = llm.NewOpenAIClient(cfg)
	}

	archive, err := storage.NewPlanStore(cfg.PlanArchivePath)
	if err != nil {
		log.Fatalf("Failed to initialize plan archive: %v", err)
	}

	oracle := llm.NewAdvisor(textGen, metricsStore)
	engine := rules.NewEngine(repo, repo, oracle)
	gen := generator.NewGenerator(textGen, repo, metricsStore)
	application := app.NewApp(gen, engine, archive)

	bot, err := telegram.NewBot(cfg, application, metricsStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
