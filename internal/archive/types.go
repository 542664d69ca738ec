// Package archive stores finished games.
package archive

import (
	"context"
	"time"

	"github.com/park285/chessrules/internal/savegame"
)

// Result is a finished game as archived.
type Result struct {
	GameID     string
	Width      int
	Height     int
	FirstID    string
	FirstName  string
	SecondID   string
	SecondName string
	// Status is the terminal engine status name, e.g. "second_won".
	Status string
	// Winner is the winning player's ID, empty for anonymous players.
	Winner    string
	Method    string
	Moves     []savegame.MovePair
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration is the wall time between creation and the final move.
func (r *Result) Duration() time.Duration {
	d := r.EndedAt.Sub(r.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Repository persists finished games. SaveResult is an upsert keyed by
// GameID; Recent lists a player's games, newest first.
type Repository interface {
	SaveResult(ctx context.Context, r *Result) error
	Recent(ctx context.Context, playerID string, limit int) ([]*Result, error)
}
