package notifications

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends short operator messages (backups, result syncs).
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// LogNotifier writes messages to the log when Telegram is not configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, text string) error {
	slog.Info("notification", slog.String("text", text))
	return nil
}

// New returns a Telegram notifier when a token and chat are configured, a log notifier otherwise.
func New(token string, chatID int64) (Notifier, error) {
	if token == "" || chatID == 0 {
		return LogNotifier{}, nil
	}
	return NewTelegramNotifier(token, chatID)
}
