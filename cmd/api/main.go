package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"todoService/internal/app"
	"todoService/internal/config"
	"todoService/internal/logger"
)

func main() {
	cfg, err := config.Load(".", "./config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "конфигурация: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		logger.Error("Не удалось запустить приложение", err)
		logger.Sync()
		stop()
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("Сервер завершился с ошибкой", err)
		stop()
		os.Exit(1)
	}
}
