package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duskcall/mafia/internal/adapter/auth"
	httpAdapter "github.com/duskcall/mafia/internal/adapter/http"
	"github.com/duskcall/mafia/internal/adapter/recorder"
	"github.com/duskcall/mafia/internal/adapter/sfu"
	"github.com/duskcall/mafia/internal/adapter/ws"
	"github.com/duskcall/mafia/internal/domain/clock"
	"github.com/duskcall/mafia/internal/domain/dispatch"
	"github.com/duskcall/mafia/internal/domain/rng"
	"github.com/duskcall/mafia/internal/domain/roommgr"
	"github.com/duskcall/mafia/internal/pkg/config"
	"github.com/duskcall/mafia/internal/pkg/id"
	"github.com/duskcall/mafia/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.IsDev())

	log.Info("starting server",
		"port", cfg.Port,
		"env", cfg.Env,
		"staticDir", cfg.StaticDir,
		"voiceEnabled", cfg.VoiceEnabled,
	)

	realClock := clock.Real{}
	rooms := roommgr.New(realClock, rng.New(time.Now().UnixNano()), id.New)

	var verifier *auth.Verifier
	if cfg.AuthPublicKey != "" {
		v, err := auth.NewVerifier(cfg.AuthPublicKey)
		if err != nil {
			log.Error("failed to load auth public key, falling back to guest-only", "error", err)
			verifier = auth.NewNoopVerifier()
		} else {
			verifier = v
		}
	} else {
		verifier = auth.NewNoopVerifier()
	}

	var rec *recorder.Recorder
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		r, err := recorder.New(ctx, cfg.DatabaseURL, log)
		cancel()
		if err != nil {
			log.Error("failed to connect game-record database, persistence disabled", "error", err)
			rec = recorder.NewNoop(log)
		} else {
			rec = r
		}
	} else {
		rec = recorder.NewNoop(log)
	}
	defer rec.Close()

	var sfuInstance *sfu.SFU
	if cfg.VoiceEnabled {
		sfuConfig := sfu.DefaultConfig()
		s, err := sfu.New(sfuConfig, log)
		if err != nil {
			log.Error("failed to create SFU, voice chat disabled", "error", err)
		} else {
			sfuInstance = s
			defer sfuInstance.Close()
		}
	}

	hub := ws.NewHub(log)
	go hub.Run()

	dispatcher := dispatch.New(hub)
	router := ws.NewRouter(hub, rooms, dispatcher, sfuInstance, rec, realClock, log)

	wsHandler := ws.NewHandler(hub, verifier, log, router.HandleMessage, router.HandleDisconnect)

	server := httpAdapter.NewServer(log, cfg.StaticDir, rooms, wsHandler)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
