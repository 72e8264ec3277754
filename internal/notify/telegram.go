package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts HTML messages to a single chat.
type Telegram struct {
	api    sender
	chatID int64
	log    logrus.FieldLogger
}

func NewTelegram(token string, chatID int64, log logrus.FieldLogger) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, tgbotapi.APIEndpoint, chatID, log)
}

// NewTelegramWithEndpoint talks to a Bot API compatible server. endpoint is a format string
// taking the token and the method name.
func NewTelegramWithEndpoint(token, endpoint string, chatID int64, log logrus.FieldLogger) (*Telegram, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log = log.WithField("component", "telegram")
	log.WithField("account", api.Self.UserName).Info("bot authorized")
	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send to chat %d: %w", t.chatID, err)
	}
	t.log.WithField("chat_id", t.chatID).Debug("digest sent")
	return nil
}

// Log writes digests to the logger when no chat is configured.
type Log struct {
	log logrus.FieldLogger
}

func NewLog(log logrus.FieldLogger) *Log {
	return &Log{log: log.WithField("component", "notify")}
}

func (l *Log) Notify(_ context.Context, text string) error {
	l.log.WithField("text", text).Info("digest")
	return nil
}
