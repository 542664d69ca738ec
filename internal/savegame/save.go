// Package savegame persists games as their board size plus the ordered list
// of moves. Captured pieces are not stored; replaying the moves recomputes
// them.
package savegame

import (
	"errors"
	"fmt"

	"github.com/park285/chessrules/internal/engine"
)

var (
	ErrReplayDiverged  = errors.New("saved move does not apply")
	ErrSizeMismatch    = errors.New("save board size differs from game")
	ErrHistoryNotEmpty = errors.New("game already has moves")
	ErrSaveExists      = errors.New("save already exists")
	ErrSaveNotFound    = errors.New("save not found")
	ErrInvalidSave     = errors.New("invalid save")
)

// MovePair is one recorded move.
type MovePair struct {
	From engine.Field `json:"from" yaml:"from"`
	To   engine.Field `json:"to" yaml:"to"`
}

// Save is the persisted form of a game.
type Save struct {
	Width  int        `json:"width" yaml:"width"`
	Height int        `json:"height" yaml:"height"`
	Moves  []MovePair `json:"moves" yaml:"moves"`
}

// FromGame captures g's size and move history.
func FromGame(g *engine.Game) Save {
	b := g.Board()
	s := Save{Width: b.Width(), Height: b.Height(), Moves: make([]MovePair, 0, len(g.Moves()))}
	for _, m := range g.Moves() {
		s.Moves = append(s.Moves, MovePair{From: m.From, To: m.To})
	}
	return s
}

// Validate checks the size range and that no coordinate is negative.
func (s Save) Validate() error {
	if err := engine.ValidateSize(s.Width, s.Height); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	for i, m := range s.Moves {
		if m.From.Column < 0 || m.From.Row < 0 || m.To.Column < 0 || m.To.Row < 0 {
			return fmt.Errorf("%w: move %d has a negative coordinate", ErrInvalidSave, i+1)
		}
	}
	return nil
}

// Restore builds a fresh standard game of the saved size and replays every
// move. The first move that does not apply aborts the restore.
func Restore(s Save, opts ...engine.Option) (*engine.Game, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	g, err := engine.NewGame(s.Width, s.Height, opts...)
	if err != nil {
		return nil, err
	}
	for i, m := range s.Moves {
		if _, err := g.TryMove(m.From, m.To); err != nil {
			return nil, fmt.Errorf("%w: move %d %s-%s: %v", ErrReplayDiverged, i+1, m.From, m.To, err)
		}
	}
	return g, nil
}

// LoadInto checks that s fits current and returns a replacement game with
// the save applied. current itself is never modified; callers swap their
// handle only on success.
func LoadInto(current *engine.Game, s Save, opts ...engine.Option) (*engine.Game, error) {
	b := current.Board()
	if b.Width() != s.Width || b.Height() != s.Height {
		return nil, fmt.Errorf("%w: save %dx%d, game %dx%d", ErrSizeMismatch, s.Width, s.Height, b.Width(), b.Height())
	}
	if len(current.Moves()) > 0 {
		return nil, ErrHistoryNotEmpty
	}
	names := engine.WithPlayerNames(current.FirstPlayer().Name(), current.SecondPlayer().Name())
	return Restore(s, append([]engine.Option{names}, opts...)...)
}
