package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nhgate/internal/logging"
	"nhgate/internal/repository/api/nicehash"
	"nhgate/internal/service/rigs"
)

type (
	RigService interface {
		Status(ctx context.Context, name string) (nicehash.RawMessage, error)
		List(ctx context.Context) ([]rigs.Rig, error)
	}

	// Sender is the part of *tgbotapi.BotAPI the handlers use.
	Sender interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	}
)

type Handler struct {
	rs RigService
}

func New(rs RigService) *Handler {
	return &Handler{rs: rs}
}

func (h *Handler) Start(ctx context.Context, b Sender, update *tgbotapi.Update) {
	h.reply(ctx, b, update, "hi there! send /status <rig name> or /rigs")
}

func (h *Handler) Status(ctx context.Context, b Sender, update *tgbotapi.Update, name string) {
	if name == "" {
		h.reply(ctx, b, update, "usage: /status <rig name>")
		return
	}

	status, err := h.rs.Status(ctx, name)
	switch {
	case errors.Is(err, rigs.ErrNotFound):
		h.reply(ctx, b, update, fmt.Sprintf("no rig called %s", name))
	case err != nil:
		slog.ErrorContext(logging.ErrorCtx(ctx, err), "rig status failed", "error", err)
		h.reply(ctx, b, update, "could not reach the mining API, try again later")
	default:
		h.reply(ctx, b, update, fmt.Sprintf("%s: %s", name, strings.Trim(string(status), `"`)))
	}
}

func (h *Handler) Rigs(ctx context.Context, b Sender, update *tgbotapi.Update) {
	list, err := h.rs.List(ctx)
	if err != nil {
		slog.ErrorContext(logging.ErrorCtx(ctx, err), "rig list failed", "error", err)
		h.reply(ctx, b, update, "could not reach the mining API, try again later")
		return
	}
	if len(list) == 0 {
		h.reply(ctx, b, update, "no rigs")
		return
	}

	var text strings.Builder
	for _, r := range list {
		fmt.Fprintf(&text, "%s: %s\n", r.Name, r.MinerStatus)
	}
	h.reply(ctx, b, update, strings.TrimSuffix(text.String(), "\n"))
}

func (h *Handler) UnknownCommand(ctx context.Context, b Sender, update *tgbotapi.Update) {
	h.reply(ctx, b, update, "unknown command")
}

func (h *Handler) reply(ctx context.Context, b Sender, update *tgbotapi.Update, text string) {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, text)
	if _, err := b.Send(msg); err != nil {
		slog.ErrorContext(ctx, "send reply", "error", err)
	}
}
