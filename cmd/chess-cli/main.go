package main

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/park285/chessrules/internal/adapter/chesspresenter"
	"github.com/park285/chessrules/internal/cli"
	appcfg "github.com/park285/chessrules/internal/config"
	"github.com/park285/chessrules/internal/msgcat"
	"github.com/park285/chessrules/internal/obslog"
	"github.com/park285/chessrules/internal/savegame"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	// stdout belongs to the board; without sinks obslog falls back to stderr
	logOpts := obslog.OptionsFromEnv()
	if os.Getenv("LOG_TO_CONSOLE") == "" {
		logOpts.Console = false
	}
	logger, err := obslog.New(logOpts)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	obslog.Set(logger)
	defer obslog.Sync()

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	w, h := cfg.BoardWidth, cfg.BoardHeight
	if len(os.Args) > 1 {
		w, h, err = appcfg.ParseSizeArgs(os.Args[1:])
		if err != nil {
			obslog.L().Warn("cli_bad_size", zap.Strings("args", os.Args[1:]), zap.Error(err))
			fmt.Println(cat.Text("cli.bad_size", map[string]any{"Err": err.Error()}))
			w, h = 8, 8
		}
	}

	sh, err := cli.New(cli.Options{
		Width:      w,
		Height:     h,
		FirstName:  cfg.FirstPlayerName,
		SecondName: cfg.SecondPlayerName,
		Store:      savegame.NewFileStore(cfg.SaveDir),
		Formatter:  chesspresenter.NewFormatter(cat),
		Out:        os.Stdout,
	})
	if err != nil {
		log.Fatalf("game init error: %v", err)
	}
	if err := sh.Run(os.Stdin); err != nil {
		obslog.L().Error("cli_read_error", zap.Error(err))
		os.Exit(1)
	}
}
