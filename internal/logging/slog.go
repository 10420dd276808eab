package logging

import (
	"context"
	"log/slog"
	"os"
)

type SlogWrapper struct {
	next slog.Handler
}

func NewSlogWrapper(next slog.Handler) slog.Handler {
	return &SlogWrapper{next: next}
}

// LogCtx is the set of attributes lifted from a context into every record.
type LogCtx struct {
	RequestID string
	Rig       string
	ChatID    int64
}

func (s SlogWrapper) Enabled(ctx context.Context, level slog.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s SlogWrapper) Handle(ctx context.Context, record slog.Record) error {
	if c, ok := ctx.Value(LogCtx{}).(LogCtx); ok {
		if c.RequestID != "" {
			record.Add("requestId", c.RequestID)
		}
		if c.Rig != "" {
			record.Add("rig", c.Rig)
		}
		if c.ChatID != 0 {
			record.Add("chatId", c.ChatID)
		}
	}
	return s.next.Handle(ctx, record)
}

func (s SlogWrapper) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SlogWrapper{next: s.next.WithAttrs(attrs)}
}

func (s SlogWrapper) WithGroup(name string) slog.Handler {
	return &SlogWrapper{next: s.next.WithGroup(name)}
}

func logCtx(ctx context.Context) LogCtx {
	if c, ok := ctx.Value(LogCtx{}).(LogCtx); ok {
		return c
	}
	return LogCtx{}
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	c := logCtx(ctx)
	c.RequestID = requestID
	return context.WithValue(ctx, LogCtx{}, c)
}

func WithRig(ctx context.Context, rig string) context.Context {
	c := logCtx(ctx)
	c.Rig = rig
	return context.WithValue(ctx, LogCtx{}, c)
}

func WithChatID(ctx context.Context, chatID int64) context.Context {
	c := logCtx(ctx)
	c.ChatID = chatID
	return context.WithValue(ctx, LogCtx{}, c)
}

type ErrorWithCtx struct {
	next error
	ctx  LogCtx
}

func (e *ErrorWithCtx) Error() string {
	return e.next.Error()
}

func (e *ErrorWithCtx) Unwrap() error {
	return e.next
}

func WrapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &ErrorWithCtx{next: err, ctx: logCtx(ctx)}
}

func ErrorCtx(ctx context.Context, err error) context.Context {
	if e, ok := err.(*ErrorWithCtx); ok {
		return context.WithValue(ctx, LogCtx{}, e.ctx)
	}
	return ctx
}

// Setup installs the JSON handler wrapped with SlogWrapper as the default
// logger and returns it.
func Setup(level slog.Level) *slog.Logger {
	handler := slog.Handler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level, AddSource: true}))
	handler = NewSlogWrapper(handler)

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
