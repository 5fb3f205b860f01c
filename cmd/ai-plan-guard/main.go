package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"ai-plan-guard/internal/app"
	"ai-plan-guard/internal/catalog"
	"ai-plan-guard/internal/config"
	"ai-plan-guard/internal/database"
	"ai-plan-guard/internal/generator"
	"ai-plan-guard/internal/ingest"
	"ai-plan-guard/internal/llm"
	"ai-plan-guard/internal/metrics"
	"ai-plan-guard/internal/plan"
	"ai-plan-guard/internal/rules"
	"ai-plan-guard/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repo := catalog.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		genCmd := flag.NewFlagSet("generate", flag.ExitOnError)
		goal := genCmd.String("goal", "", "Fitness goal (required)")
		allergies := genCmd.String("allergies", "", "Comma-separated allergies")
		injuries := genCmd.String("injuries", "", "Comma-separated injuries, e.g. 'knee:severe,wrist'")
		genCmd.Parse(os.Args[2:])

		if *goal == "" {
			log.Fatal("The -goal flag is required")
		}

		textGen, closer, err := newTextGenerator(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize LLM client: %v", err)
		}
		if closer != nil {
			defer closer.Close()
		}

		archive, err := storage.NewPlanStore(cfg.PlanArchivePath)
		if err != nil {
			log.Fatalf("Failed to initialize plan archive: %v", err)
		}

		oracle := llm.NewAdvisor(textGen, metricsStore)
		engine := rules.NewEngine(repo, repo, oracle)
		gen := generator.NewGenerator(textGen, repo, metricsStore)
		application := app.NewApp(gen, engine, archive)

		profile := plan.SafetyProfile{
			Goal:      *goal,
			Allergies: splitList(*allergies),
			Injuries:  parseInjuries(*injuries),
		}

		sanitized, err := application.SafePlan(ctx, profile)
		if err != nil {
			log.Fatalf("Plan generation failed: %v", err)
		}
		app.PrintPlan(sanitized)

	case "seed":
		if err := catalog.Seed(ctx, repo); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		fmt.Println("Catalog seeded.")

	case "ingest":
		if len(os.Args) < 3 {
			log.Fatal("Usage: ai-plan-guard ingest <url>")
		}
		ing := ingest.NewIngester(repo)
		imported, err := ing.IngestURL(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		fmt.Printf("Imported %d catalog items.\n", imported)

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metricsStore.Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func newTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, llm.Closer, error) {
	if cfg.LLMProvider == "gemini" {
		return llm.NewGeminiClient(ctx, cfg)
	}
	return llm.NewOpenAIClient(cfg), nil, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseInjuries parses "knee:severe,wrist" into injuries. A missing
// severity defaults to moderate.
func parseInjuries(raw string) []plan.Injury {
	var injuries []plan.Injury
	for _, part := range splitList(raw) {
		name, severity, _ := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		injuries = append(injuries, plan.Injury{
			BodyPart: name,
			Severity: plan.ParseSeverity(severity),
		})
	}
	return injuries
}

func printUsage() {
	fmt.Println("Usage: ai-plan-guard <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate           Generate a plan and run the safety pass")
	fmt.Println("  seed               Seed the catalog with the built-in items")
	fmt.Println("  ingest <url>       Import catalog items from an HTML page")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
