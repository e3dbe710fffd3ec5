package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"screening_notifier/internal/model"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends announcements to one Telegram chat.
type Telegram struct {
	api    telegramAPI
	dial   func() (telegramAPI, error)
	chatID int64
	header string
}

// NewTelegram creates a Telegram notifier with the given bot token. The Bot
// API is only contacted on the first Send.
func NewTelegram(token string, chatID int64, header string) *Telegram {
	t := newTelegram(nil, chatID, header)
	t.dial = func() (telegramAPI, error) {
		return tgbotapi.NewBotAPI(token)
	}
	return t
}

func newTelegram(api telegramAPI, chatID int64, header string) *Telegram {
	if header == "" {
		header = DefaultHeader
	}
	return &Telegram{api: api, chatID: chatID, header: header}
}

// Send delivers the announcement as a plain-text message.
func (t *Telegram) Send(_ context.Context, dates []model.DateID) error {
	if t.api == nil {
		api, err := t.dial()
		if err != nil {
			return fmt.Errorf("create bot api: %w", err)
		}
		t.api = api
	}

	msg := tgbotapi.NewMessage(t.chatID, FormatMessage(t.header, dates))
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
