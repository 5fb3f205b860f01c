package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"ai-plan-guard/internal/config"
	"ai-plan-guard/internal/metrics"
	"ai-plan-guard/internal/plan"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Planner is the use case the bot exposes.
type Planner interface {
	SafePlan(ctx context.Context, profile plan.SafetyProfile) (plan.SanitizedPlan, error)
}

// Bot wraps the Telegram API and the plan generation use case.
type Bot struct {
	api          *tgbotapi.BotAPI
	planner      Planner
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, planner Planner, metricsStore *metrics.Store) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		planner:      planner,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}

	if !isAllowed {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	switch {
	case msg.Text == "/start" || msg.Text == "/help":
		b.sendHelp(msg.Chat.ID)
	case msg.Text == "/metrics":
		b.handleMetricsRequest(msg)
	default:
		b.handlePlanRequest(msg)
	}
}

func (b *Bot) sendHelp(chatID int64) {
	help := `🏋️ *Plan Guard*

Send me your goal, optionally with allergies and injuries:

` + "```" + `
lose weight
allergies: dairy, peanut
injuries: knee (severe), wrist
` + "```" + `

I will generate a plan and swap out anything unsafe for you.`
	msg := tgbotapi.NewMessage(chatID, help)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "⛔ *Access Denied*: Admin only."))
		return
	}
	b.handleMetricsCommand(msg.Chat.ID)
}

func (b *Bot) handlePlanRequest(msg *tgbotapi.Message) {
	statusText := "🧑‍🍳 *Thinking...* \n(Generating your plan and checking it against your profile)"
	replyMsg := tgbotapi.NewMessage(msg.Chat.ID, statusText)
	replyMsg.ParseMode = "Markdown"
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	profile := parseProfile(msg.Text)
	log.Printf("Generating plan for goal: %s", profile.Goal)

	sanitized, err := b.planner.SafePlan(ctx, profile)

	var finalText string
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText = fmt.Sprintf("❌ *Error generating plan:*\n```\n%v\n```", safeErr)
	} else {
		finalText = formatPlanMarkdown(profile.Goal, sanitized)
	}

	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, finalText)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

// parseProfile extracts the safety profile from a free-text message.
// Lines prefixed with "allergies:" or "injuries:" feed the profile;
// everything else is the goal. Injuries accept an optional severity in
// parentheses, defaulting to moderate.
func parseProfile(text string) plan.SafetyProfile {
	var profile plan.SafetyProfile
	var goalParts []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "allergies:") || strings.HasPrefix(lower, "allergy:"):
			_, rest, _ := strings.Cut(line, ":")
			for _, a := range strings.Split(rest, ",") {
				if trimmed := strings.TrimSpace(a); trimmed != "" {
					profile.Allergies = append(profile.Allergies, trimmed)
				}
			}
		case strings.HasPrefix(lower, "injuries:") || strings.HasPrefix(lower, "injury:"):
			_, rest, _ := strings.Cut(line, ":")
			for _, raw := range strings.Split(rest, ",") {
				if injury, ok := parseInjury(raw); ok {
					profile.Injuries = append(profile.Injuries, injury)
				}
			}
		default:
			goalParts = append(goalParts, line)
		}
	}

	profile.Goal = strings.Join(goalParts, " ")
	return profile
}

// parseInjury parses "knee" or "knee (severe)".
func parseInjury(raw string) (plan.Injury, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return plan.Injury{}, false
	}

	severity := plan.SeverityModerate
	if open := strings.Index(raw, "("); open >= 0 {
		if end := strings.Index(raw[open:], ")"); end > 0 {
			severity = plan.ParseSeverity(raw[open+1 : open+end])
			raw = strings.TrimSpace(raw[:open])
		}
	}
	if raw == "" {
		return plan.Injury{}, false
	}
	return plan.Injury{BodyPart: raw, Severity: severity}, true
}

func formatPlanMarkdown(goal string, sp plan.SanitizedPlan) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *Your Plan*: %s\n\n", goal))

	sb.WriteString("🍽 *Meals*\n")
	for _, meal := range sp.Meals {
		sb.WriteString(fmt.Sprintf("• %s (%.0f kcal)\n", meal.Name, meal.Attr("calories", 0)))
	}

	sb.WriteString("\n🏃 *Workouts*\n")
	for _, workout := range sp.Workouts {
		sb.WriteString(fmt.Sprintf("• %s (%.0f min)\n", workout.Name, workout.Attr("duration", 0)))
	}

	records := make([]plan.ReplacementRecord, 0, len(sp.Replacements.Meals)+len(sp.Replacements.Workouts))
	records = append(records, sp.Replacements.Meals...)
	records = append(records, sp.Replacements.Workouts...)
	if len(records) > 0 {
		sb.WriteString("\n🔄 *Swapped for your safety*\n")
		for _, rec := range records {
			sb.WriteString(fmt.Sprintf("• %s → %s (%s)\n", rec.ReplacedName, rec.ReplacementName, rec.Reason))
		}
	}

	return sb.String()
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.api.Send(tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}

	health := metrics.GetSysHealth(b.cfg.DatabasePath)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Database: %s\n", health.DatabaseSize))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}
