package logger

import (
	"log/slog"
	"os"

	"convbot/internal/config"
)

func Setup(conf config.Config) {
	opts := &slog.HandlerOptions{
		Level: level(conf.Log.Level),
	}

	var handler slog.Handler
	if conf.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func level(name string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
