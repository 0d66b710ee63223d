package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends short alerts to the organisers.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Noop logs alerts instead of sending them.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(_ context.Context, text string) error {
	slog.Debug("notify_event", "event", "noop_alert", "text", text)
	return nil
}

// botAPI is the part of *tgbotapi.BotAPI used here.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts alerts to one chat.
type Telegram struct {
	bot    botAPI
	chatID int64
}

// NewTelegram connects to the Bot API.
// PRE: token is a bot token; chatID is a chat the bot can post to
// POST: Returns a notifier or the Bot API's authentication error
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	b.Debug = false
	return &Telegram{bot: b, chatID: chatID}, nil
}

// Notify implements Notifier. The Bot API call itself is not cancellable.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
