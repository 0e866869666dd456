package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"club-loyalty/internal/config"
	"club-loyalty/internal/domain/ports/adapter"
)

// Compile-time checks
var (
	_ adapter.TierNotifier = (*TierBotNotifier)(nil)
	_ adapter.TierNotifier = (*NoopTierNotifier)(nil)
)

// TierBotNotifier posts tier changes to the staff chat. It never polls for
// updates; the bot is outbound-only.
type TierBotNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTierBotNotifier(cfg *config.TelegramConfig) (*TierBotNotifier, error) {
	if cfg == nil || cfg.Token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is empty")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TierBotNotifier{bot: bot, chatID: cfg.ChatID}, nil
}

func (n *TierBotNotifier) NotifyTierChange(ctx context.Context, cardNumber, oldTier, newTier string) error {
	text := fmt.Sprintf("Card %s moved %s → %s", cardNumber, oldTier, newTier)
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// NoopTierNotifier is used when no telegram token is configured (dev mode,
// tests).
type NoopTierNotifier struct{}

func (NoopTierNotifier) NotifyTierChange(ctx context.Context, cardNumber, oldTier, newTier string) error {
	return nil
}
