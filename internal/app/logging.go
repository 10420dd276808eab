package app

import (
	"log/slog"

	"nhgate/internal/logging"
)

func (a *App) InitLogging() error {
	a.logger = logging.Setup(slog.LevelDebug)

	return nil
}
