// Package logger настраивает slog для процессов приложения.
package logger

import (
	"io"
	"log/slog"
)

// New возвращает текстовый логгер с уровнем debug для локального окружения
// и JSON логгер с уровнем info для остальных.
func New(w io.Writer, local bool) *slog.Logger {
	if local {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
