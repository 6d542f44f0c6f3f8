package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ArmandoYairZJ/FrontEnd/internal/apiclient"
	"github.com/ArmandoYairZJ/FrontEnd/internal/audit"
	"github.com/ArmandoYairZJ/FrontEnd/internal/config"
	"github.com/ArmandoYairZJ/FrontEnd/internal/httpserver"
	"github.com/ArmandoYairZJ/FrontEnd/internal/logging"
	"github.com/ArmandoYairZJ/FrontEnd/internal/session"
	"github.com/ArmandoYairZJ/FrontEnd/internal/store"
)

func main() {
	cfg := config.Load()

	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)

	sessions, err := session.OpenStore(cfg.SessionDBPath)
	if err != nil {
		log.Error("session_store_open_failed", "path", cfg.SessionDBPath, "error", err)
		os.Exit(1)
	}

	api := apiclient.NewClient(cfg.APIBaseURL, sessions)
	manager := session.NewManager(sessions, api)
	registry := store.NewRegistry(api)
	publisher := audit.New(cfg.KafkaBrokers, cfg.AuditTopic)

	e := echo.New()
	e.HideBanner = true

	srvDeps := &httpserver.Server{
		Sessions:     manager,
		Registry:     registry,
		API:          api,
		Audit:        publisher,
		Secret:       cfg.SessionSecret,
		CookieSecure: cfg.CookieSecure,
		Log:          log,
	}
	if err := httpserver.Register(e, srvDeps); err != nil {
		log.Error("router_setup_failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info("server_listening", "addr", cfg.ListenAddr, "api_base_url", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server_shutdown_error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		log.Error("audit_close_error", "error", err)
	}
	if err := sessions.Close(); err != nil {
		log.Error("session_store_close_error", "error", err)
	}

	log.Info("shutdown_complete")
}
