package app

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nhgate/internal/delivery/telegram/bot"
)

// InitTelegramBot is a no-op without a bot token.
func (a *App) InitTelegramBot() error {
	if a.cfg.Bot.Token == "" {
		return nil
	}

	b, err := tgbotapi.NewBotAPI(a.cfg.Bot.Token)
	if err != nil {
		return err
	}

	// assigning new bot to app's bot
	a.bot = b

	a.logger.Info("Authorized on account " + b.Self.UserName)
	return nil
}

func (a *App) RunTelegramBot(ctx context.Context, rs bot.RigService) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	h := bot.New(rs)
	updates := a.bot.GetUpdatesChan(u)

	for update := range updates {
		h.Route(ctx, a.bot, &update)
	}
}
