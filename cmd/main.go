package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"convbot/internal/bot"
	"convbot/internal/config"
	"convbot/internal/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conf, err := config.Read()
	if err != nil {
		slog.Error("Failed to read config", slog.Any("error", err))
		return
	}

	logger.Setup(conf)

	convbot, err := bot.NewBot(conf)
	if err != nil {
		slog.Error("Failed to create bot", slog.Any("error", err))
		return
	}

	err = convbot.Start(ctx)
	if err != nil {
		slog.Error("Failed to start bot", slog.Any("error", err))
		return
	}

	slog.Info("Convbot successfully started", slog.Any("config", conf))

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	convbot.Stop(stopCtx)

	slog.Info("Convbot gracefully shutdown")
}
