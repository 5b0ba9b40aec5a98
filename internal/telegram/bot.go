// Package telegram sends chat-bot messages to sellers who linked their chat.
package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	token string

	mu  sync.Mutex
	api *tgbotapi.BotAPI
}

// New returns nil without a token. The bot API is contacted on first send.
func New(token string) *Bot {
	if token == "" {
		return nil
	}
	return &Bot{token: token}
}

func (b *Bot) client() (*tgbotapi.BotAPI, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.api != nil {
		return b.api, nil
	}
	api, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return nil, err
	}
	b.api = api
	return api, nil
}

func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	if b == nil {
		return fmt.Errorf("telegram: %w", domain.ErrUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	api, err := b.client()
	if err != nil {
		return &domain.UpstreamError{Service: "telegram", Err: err}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := api.Send(msg); err != nil {
		return &domain.UpstreamError{Service: "telegram", Err: err}
	}
	return nil
}
