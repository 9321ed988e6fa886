package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tablepick/config"
	"tablepick/internal/database"
	"tablepick/internal/router"
	"tablepick/pkg/hotpepper"
	"tablepick/pkg/openai"

	"github.com/lmittmann/tint"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})))

	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		slog.Error("database connect failed", "err", err)
		os.Exit(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		slog.Error("migration failed", "err", err)
		os.Exit(1)
	}

	var directory hotpepper.Directory
	if cfg.HotPepper.APIKey != "" {
		directory = hotpepper.NewClient(cfg.HotPepper.BaseURL, cfg.HotPepper.APIKey, cfg.HotPepper.Timeout)
	} else {
		slog.Warn("HOTPEPPER_API_KEY not set, serving demo restaurant data")
		directory = hotpepper.DemoDirectory{}
	}
	extractor := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Timeout)

	engine := router.Setup(cfg, db, directory, extractor)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		slog.Info("server listening", "port", cfg.Server.Port, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
