package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"lembas/internal/app"
	"lembas/internal/config"
	"lembas/internal/metrics"
	"lembas/internal/planner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const helpText = `🥖 *Lembas*

/list [weeks] - shopping list, optionally weeks ahead
/week [weeks] - planned meals
/schedule [days] - recurring purchases due soon
/status - backend and bot health
/help - this message`

// Sender sends messages to Telegram. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// CommandCounter counts handled commands.
type CommandCounter interface {
	IncCommand(command string)
}

// Bot answers Telegram commands from the allowed users with data from the Lembas backend.
type Bot struct {
	api     Sender
	app     *app.App
	cfg     *config.Config
	log     logrus.FieldLogger
	counter CommandCounter

	// Commands share the app's range, so they run one at a time.
	mu sync.Mutex
}

// NewBot initializes the Telegram API and sets the webhook.
func NewBot(cfg *config.Config, a *app.App, counter CommandCounter, log logrus.FieldLogger) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.WithField("account", bot.Self.UserName).Info("Authorized on Telegram")

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("failed to build webhook: %w", err)
		}
		resp, err := bot.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		log.WithField("description", resp.Description).Info("Webhook set")
	}

	return newBot(bot, a, cfg, counter, log), nil
}

func newBot(sender Sender, a *app.App, cfg *config.Config, counter CommandCounter, log logrus.FieldLogger) *Bot {
	return &Bot{api: sender, app: a, cfg: cfg, counter: counter, log: log}
}

// RegisterHandlers adds the webhook and health endpoints to mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Notify sends text to the configured chat. Its signature matches reminder.Callback.
func (b *Bot) Notify(_ context.Context, text string) error {
	if b.cfg.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID not configured")
	}
	_, err := b.api.Send(tgbotapi.NewMessage(b.cfg.TelegramChatID, text))
	return err
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.log.WithError(err).Warn("Error parsing update")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	if !b.cfg.IsAllowedUser(msg.From.ID) {
		b.log.WithFields(logrus.Fields{
			"user_id":  msg.From.ID,
			"username": msg.From.UserName,
		}).Warn("⚠️ Unauthorized access attempt")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	b.processMessage(ctx, msg)
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.reply(msg.Chat.ID, helpText, tgbotapi.ModeMarkdown)
		return
	}

	command := msg.Command()
	log := b.log.WithFields(logrus.Fields{"chat_id": msg.Chat.ID, "command": command})
	log.Debug("Handling command")

	b.mu.Lock()
	defer b.mu.Unlock()

	var text string
	var err error
	mode := tgbotapi.ModeMarkdown
	switch command {
	case "list":
		text, err = b.handleList(ctx, msg.CommandArguments())
		mode = ""
	case "week":
		text, err = b.handleWeek(ctx, msg.CommandArguments())
	case "schedule":
		text, err = b.handleSchedule(ctx, msg.CommandArguments())
	case "status":
		text = b.handleStatus(ctx)
	case "help", "start":
		text = helpText
	default:
		command = "unknown"
		text = "🤔 Unknown command. Try /help."
	}
	if b.counter != nil {
		b.counter.IncCommand(command)
	}

	if err != nil {
		log.WithError(err).Error("Command failed")
		text, mode = "❌ "+app.NetworkErrorMessage, ""
	}
	b.reply(msg.Chat.ID, text, mode)
}

func (b *Bot) reply(chatID int64, text, mode string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = mode
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).WithField("chat_id", chatID).Error("Failed to send reply")
	}
}

// selectWeek moves the app's range to the current week plus offset weeks.
func (b *Bot) selectWeek(args string) planner.Week {
	b.app.ResetRange()
	offset := parseInt(args, 0)
	if offset == 0 {
		return b.app.Range()
	}
	return b.app.AdjustRange(offset * planner.RangeLength)
}

func (b *Bot) handleList(ctx context.Context, args string) (string, error) {
	b.selectWeek(args)
	if _, err := b.app.SyncList(ctx); err != nil {
		return "", err
	}
	text, err := b.app.ExportList(ctx, true)
	if err != nil {
		// The list itself is fine; only the history entry is missing.
		b.log.WithError(err).Warn("Failed to save shopping list export")
	}
	return text, nil
}

func (b *Bot) handleWeek(ctx context.Context, args string) (string, error) {
	week := b.selectWeek(args)
	days, err := b.app.SyncDays(ctx)
	if err != nil {
		return "", err
	}
	return formatWeek(week, days), nil
}

func (b *Bot) handleSchedule(ctx context.Context, args string) (string, error) {
	schedules, err := b.app.SyncSchedule(ctx)
	if err != nil {
		return "", err
	}
	return formatSchedule(schedules, time.Now(), parseInt(args, 7)), nil
}

func (b *Bot) handleStatus(ctx context.Context) string {
	backendErr := b.app.Ping(ctx)
	health := metrics.GetSysHealth(filepath.Dir(b.cfg.DatabasePath))
	return formatStatus(backendErr == nil, health)
}

func parseInt(args string, fallback int) int {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return fallback
	}
	return n
}
