package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chessrules/internal/adapter/chesspresenter"
	"github.com/park285/chessrules/internal/api"
	"github.com/park285/chessrules/internal/archive"
	appcfg "github.com/park285/chessrules/internal/config"
	"github.com/park285/chessrules/internal/lobby"
	"github.com/park285/chessrules/internal/msgcat"
	"github.com/park285/chessrules/internal/obslog"
	"github.com/park285/chessrules/internal/savegame"
	"github.com/park285/chessrules/internal/session"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := cfg.RequireServer(); err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	sessions, err := session.NewManager(cfg.RedisURL, time.Duration(cfg.SessionTTLSec)*time.Second)
	if err != nil {
		log.Fatalf("session manager init error: %v", err)
	}
	defer sessions.Close()

	var repo archive.Repository
	if cfg.DatabaseURL != "" {
		pg, err := archive.NewPostgresRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("archive init error: %v", err)
		}
		defer pg.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = pg.EnsureSchema(ctx)
		cancel()
		if err != nil {
			log.Fatalf("archive schema error: %v", err)
		}
		repo = pg
	} else {
		obslog.L().Warn("archive_in_memory", zap.String("reason", "DATABASE_URL not set"))
		repo = archive.NewMemoryRepository()
	}
	sessions.AttachRepository(repo)

	var snaps *savegame.BadgerStore
	if cfg.BadgerDir != "" {
		snaps, err = savegame.OpenBadger(cfg.BadgerDir)
		if err != nil {
			log.Fatalf("snapshot store error: %v", err)
		}
		defer snaps.Close()
	}

	hub := api.NewHub(cfg.WSOrigins...)
	srv := api.NewServer(api.Deps{
		Sessions:  sessions,
		Lobbies:   lobby.NewManager(sessions.Client(), sessions),
		Archive:   repo,
		Snapshots: snaps,
		Formatter: chesspresenter.NewFormatter(cat),
		Hub:       hub,
	})
	wsSrv := api.NewWSServer(cfg.WSAddr, hub)

	go func() {
		if err := srv.ListenAndServe(cfg.HTTPAddr); err != nil {
			obslog.L().Fatal("http_serve_error", zap.Error(err))
		}
	}()
	go func() {
		obslog.L().Info("ws_listen", zap.String("addr", cfg.WSAddr))
		if err := wsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obslog.L().Fatal("ws_serve_error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	obslog.L().Info("shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = wsSrv.Shutdown(ctx)
	_ = srv.Shutdown()
}
