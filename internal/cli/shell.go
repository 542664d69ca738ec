// Package cli is the interactive hot-seat front end: one local game,
// driven line by line from a reader.
package cli

import (
	"bufio"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/chessrules/internal/adapter/chesspresenter"
	"github.com/park285/chessrules/internal/engine"
	"github.com/park285/chessrules/internal/notation"
	"github.com/park285/chessrules/internal/obslog"
	"github.com/park285/chessrules/internal/savegame"
)

type Options struct {
	Width, Height int
	FirstName     string
	SecondName    string
	Store         *savegame.FileStore
	Formatter     *chesspresenter.Formatter
	Out           io.Writer
}

type Shell struct {
	opts  Options
	game  *engine.Game
	fmt   *chesspresenter.Formatter
	pres  *chesspresenter.Presenter
	store *savegame.FileStore
}

func New(opts Options) (*Shell, error) {
	if opts.Formatter == nil {
		opts.Formatter = chesspresenter.NewFormatter(nil)
	}
	if opts.Store == nil {
		opts.Store = savegame.NewFileStore("")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	out := opts.Out
	write := func(s string) error {
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		_, err := io.WriteString(out, s)
		return err
	}
	sh := &Shell{
		opts:  opts,
		fmt:   opts.Formatter,
		pres:  chesspresenter.NewPresenter(write, write),
		store: opts.Store,
	}
	g, err := sh.newGame()
	if err != nil {
		return nil, err
	}
	sh.attach(g)
	return sh, nil
}

// Game is the current game handle. Load and new replace it.
func (sh *Shell) Game() *engine.Game { return sh.game }

func (sh *Shell) newGame() (*engine.Game, error) {
	return engine.NewGame(sh.opts.Width, sh.opts.Height, sh.gameOptions()...)
}

func (sh *Shell) gameOptions() []engine.Option {
	return []engine.Option{
		engine.WithPlayerNames(sh.opts.FirstName, sh.opts.SecondName),
		engine.WithLogger(obslog.L()),
	}
}

// attach makes g current and reports its notable events as they happen.
func (sh *Shell) attach(g *engine.Game) {
	g.Subscribe(func(ev engine.Event) {
		if s := sh.fmt.Event(ev); s != "" {
			_ = sh.pres.Message(s)
		}
	})
	sh.game = g
}

// Run executes lines from r until EOF or quit.
func (sh *Shell) Run(r io.Reader) error {
	sh.say("cli.welcome", map[string]any{"Width": sh.opts.Width, "Height": sh.opts.Height})
	sh.showBoard()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if quit := sh.Exec(sc.Text()); quit {
			return nil
		}
	}
	return sc.Err()
}

// Exec runs one command line and reports whether the shell should stop.
func (sh *Shell) Exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "move", "m":
		if len(args) != 2 {
			sh.say("cli.usage", map[string]any{"Usage": "move <from> <to>"})
			return false
		}
		sh.move(args[0], args[1])
	case "moves":
		if len(args) != 1 {
			sh.say("cli.usage", map[string]any{"Usage": "moves <field>"})
			return false
		}
		sh.legalMoves(args[0])
	case "undo":
		sh.undo()
	case "new":
		g, err := sh.newGame()
		if err != nil {
			_ = sh.pres.Message(err.Error())
			return false
		}
		sh.attach(g)
		sh.say("cli.new_game", map[string]any{"Width": sh.opts.Width, "Height": sh.opts.Height})
		sh.showBoard()
	case "save":
		if len(args) != 1 {
			sh.say("cli.usage", map[string]any{"Usage": "save <path>"})
			return false
		}
		sh.save(args[0])
	case "load":
		if len(args) != 1 {
			sh.say("cli.usage", map[string]any{"Usage": "load <path>"})
			return false
		}
		sh.load(args[0])
	case "board":
		sh.showBoard()
	case "fen":
		fen, err := notation.PlacementFEN(sh.game)
		if err != nil {
			sh.say("cli.fen_unavailable", map[string]any{"Err": err.Error()})
			return false
		}
		_ = sh.pres.Message(fen)
	case "help", "?":
		sh.say("cli.help", nil)
	case "quit", "exit", "q":
		sh.say("cli.bye", nil)
		return true
	default:
		sh.say("cli.unknown_command", map[string]any{"Command": cmd})
	}
	return false
}

func (sh *Shell) say(key string, data map[string]any) {
	_ = sh.pres.Message(sh.fmt.Text(key, data))
}

func (sh *Shell) showBoard() {
	_ = sh.pres.Message(notation.Draw(sh.game))
	_ = sh.pres.Message(sh.fmt.Status(sh.game))
}

func (sh *Shell) parse(s string) (engine.Field, bool) {
	f, err := notation.ParseField(s)
	if err != nil {
		sh.say("cli.bad_field", map[string]any{"Input": s})
		return engine.Field{}, false
	}
	return f, true
}

func (sh *Shell) move(fromArg, toArg string) {
	from, ok := sh.parse(fromArg)
	if !ok {
		return
	}
	to, ok := sh.parse(toArg)
	if !ok {
		return
	}
	if _, err := sh.game.TryMove(from, to); err != nil {
		_ = sh.pres.Message(sh.fmt.Rejection(engine.ReasonOf(err), from, to, sh.game))
		return
	}
	sh.showBoard()
}

func (sh *Shell) legalMoves(arg string) {
	from, ok := sh.parse(arg)
	if !ok {
		return
	}
	p, ok := sh.game.Board().PieceAt(from)
	if !ok {
		sh.say("reject.no_piece_at_source", map[string]any{"From": from.String()})
		return
	}
	moves := sh.game.LegalMoves(p).Slice()
	if len(moves) == 0 {
		sh.say("cli.no_moves", map[string]any{"From": from.String()})
		return
	}
	sh.say("cli.moves", map[string]any{"From": from.String(), "Moves": notation.FormatFields(moves)})
}

func (sh *Shell) undo() {
	if len(sh.game.Moves()) == 0 {
		sh.say("cli.nothing_to_undo", nil)
		return
	}
	sh.game.RewindLast()
	sh.showBoard()
}

func (sh *Shell) save(name string) {
	p, err := sh.store.Save(name, savegame.FromGame(sh.game))
	if err != nil {
		obslog.L().Warn("cli_save_failed", zap.String("name", name), zap.Error(err))
		sh.say("cli.save_failed", map[string]any{"Err": err.Error()})
		return
	}
	sh.say("cli.saved", map[string]any{"Path": p})
}

// load swaps the game handle only when the saved game replays cleanly.
func (sh *Shell) load(name string) {
	s, err := sh.store.Load(name)
	var g *engine.Game
	if err == nil {
		g, err = savegame.LoadInto(sh.game, s, engine.WithLogger(obslog.L()))
	}
	if err != nil {
		obslog.L().Warn("cli_load_failed", zap.String("name", name), zap.Error(err))
		sh.say("cli.load_failed", map[string]any{"Err": err.Error()})
		return
	}
	sh.attach(g)
	sh.say("cli.loaded", map[string]any{"Moves": len(s.Moves), "Path": name})
	sh.showBoard()
}
