package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/ppiankov/phonespec/internal/model"
)

// NewLogger builds the process logger. Unknown levels fall back to info.
func NewLogger(c model.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
