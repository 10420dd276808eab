package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nhgate/internal/logging"
)

// Route dispatches one update. /status_<name> is accepted as well as
// /status <name> so rig names can be tapped in chat.
func (h *Handler) Route(ctx context.Context, b Sender, update *tgbotapi.Update) {
	if update.Message == nil || update.Message.Chat == nil {
		return
	}
	ctx = logging.WithChatID(ctx, update.Message.Chat.ID)

	cmd, suffix, _ := strings.Cut(update.Message.Command(), "_")

	switch cmd {
	case "":
		return
	case "start":
		h.Start(ctx, b, update)
	case "status":
		name := suffix
		if name == "" {
			name = strings.TrimSpace(update.Message.CommandArguments())
		}
		h.Status(logging.WithRig(ctx, name), b, update, name)
	case "rigs":
		h.Rigs(ctx, b, update)
	default:
		h.UnknownCommand(ctx, b, update)
	}
}
