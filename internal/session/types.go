package session

import (
	"errors"
	"time"

	"github.com/park285/chessrules/internal/engine"
	"github.com/park285/chessrules/internal/savegame"
)

var (
	ErrNotInitialized  = errors.New("session manager not initialized")
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrNotParticipant  = errors.New("player is not part of this game")
	ErrConflict        = errors.New("session changed concurrently")
	ErrInvalidArgs     = errors.New("invalid arguments")
)

// Session is the stored state of a live game. The board is not stored;
// it is rebuilt by replaying Moves.
type Session struct {
	ID         string              `json:"id"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Moves      []savegame.MovePair `json:"moves"`
	FirstID    string              `json:"first_id,omitempty"`
	FirstName  string              `json:"first_name"`
	SecondID   string              `json:"second_id,omitempty"`
	SecondName string              `json:"second_name"`
	Status     string              `json:"status"`
	Winner     string              `json:"winner,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// CreateRequest describes a new session. IDs may be empty for a shared
// (hot-seat) game in which anyone may move either side. Moves, when set,
// are replayed so the session resumes a saved game.
type CreateRequest struct {
	Width      int
	Height     int
	FirstID    string
	FirstName  string
	SecondID   string
	SecondName string
	Moves      []savegame.MovePair
}

// Outcome is the result of Play or Rewind. Reason is set, and Events is
// empty, when the engine rejected the action.
type Outcome struct {
	Session *Session
	Game    *engine.Game
	Events  []engine.Event
	Reason  engine.Reason
}

// Applied reports whether the action changed the game.
func (o *Outcome) Applied() bool { return o != nil && o.Reason == engine.ReasonNone }

// Save returns the replayable part of the session.
func (s *Session) Save() savegame.Save {
	return savegame.Save{Width: s.Width, Height: s.Height, Moves: append([]savegame.MovePair(nil), s.Moves...)}
}

// Active reports whether the game has not finished yet.
func (s *Session) Active() bool {
	return s.Status == engine.FirstActive.String() || s.Status == engine.SecondActive.String()
}

// Restore rebuilds the engine game from the stored moves.
func (s *Session) Restore() (*engine.Game, error) {
	return savegame.Restore(s.Save(), engine.WithPlayerNames(s.FirstName, s.SecondName))
}

func (s *Session) hotSeat() bool { return s.FirstID == "" && s.SecondID == "" }

// sideOf returns the players playerID may move for.
func (s *Session) sideOf(g *engine.Game, playerID string) ([]*engine.Player, error) {
	if s.hotSeat() {
		return []*engine.Player{g.FirstPlayer(), g.SecondPlayer()}, nil
	}
	var out []*engine.Player
	if playerID != "" && playerID == s.FirstID {
		out = append(out, g.FirstPlayer())
	}
	if playerID != "" && playerID == s.SecondID {
		out = append(out, g.SecondPlayer())
	}
	if len(out) == 0 {
		return nil, ErrNotParticipant
	}
	return out, nil
}

// sync copies the game's history and outcome into the session.
func (s *Session) sync(g *engine.Game) {
	s.Moves = make([]savegame.MovePair, 0, len(g.Moves()))
	for _, m := range g.Moves() {
		s.Moves = append(s.Moves, savegame.MovePair{From: m.From, To: m.To})
	}
	s.Status = g.Status().String()
	switch g.Status() {
	case engine.FirstWon:
		s.Winner = s.FirstID
	case engine.SecondWon:
		s.Winner = s.SecondID
	default:
		s.Winner = ""
	}
	s.UpdatedAt = time.Now()
}
