// Command chess-watch follows a game on a running chess server: it prints
// the current board, then every applied move until interrupted. With -new
// it first creates a hot-seat game and prints its id.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chessrules/internal/adapter/chesspresenter"
	appcfg "github.com/park285/chessrules/internal/config"
	"github.com/park285/chessrules/internal/obslog"
	"github.com/park285/chessrules/internal/remote"
	"github.com/park285/chessrules/pkg/chessdto"
)

func main() {
	create := flag.Bool("new", false, "create a hot-seat game before watching")
	flag.Parse()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	emit := func(s string) error {
		_, err := fmt.Println(s)
		return err
	}
	pres := chesspresenter.NewPresenter(emit, emit)
	client := remote.NewClient(cfg.APIBaseURL, remote.WithTimeout(8*time.Second), remote.WithRetry(2))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	var state *chessdto.SessionState
	switch {
	case *create:
		state, err = client.CreateGame(ctx, chessdto.CreateGameRequest{
			Width:      cfg.BoardWidth,
			Height:     cfg.BoardHeight,
			FirstName:  cfg.FirstPlayerName,
			SecondName: cfg.SecondPlayerName,
		})
	case flag.NArg() == 1:
		state, err = client.State(ctx, flag.Arg(0))
	default:
		cancel()
		fmt.Fprintln(os.Stderr, "usage: chess-watch [-new] [game-id]")
		os.Exit(2)
	}
	cancel()
	if err != nil {
		log.Fatalf("fetch game: %v", err)
	}
	_ = pres.Board(fmt.Sprintf("Game %s: %s", state.ID, state.StatusText), state)

	w := remote.NewWatcher(cfg.WSBaseURL, state.ID, 5)
	w.OnStateChange(func(s remote.State) {
		obslog.L().Info("watch_state", zap.String("game_id", state.ID), zap.String("state", string(s)))
	})
	w.OnUpdate(func(msg *chessdto.WatchMessage) {
		if msg.Type != "update" || msg.Update == nil {
			return
		}
		_ = pres.Board(msg.Update.Message, msg.Update.State)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = w.Connect(cctx)
	ccancel()
	if err != nil {
		obslog.L().Warn("watch_connect_error", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	sctx, scancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer scancel()
	_ = w.Close(sctx)
}
