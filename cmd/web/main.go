package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"attendpulse/internal/app"
)

func main() {
	// A missing .env is fine; environment variables win regardless.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	application, err := app.New(app.Options{})
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
