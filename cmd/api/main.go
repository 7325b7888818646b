package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"taskmanager/internal/app"
	"taskmanager/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка инициализации приложения: %v\n", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Приложение завершилось с ошибкой: %v\n", err)
		stop()
		os.Exit(1)
	}
}
