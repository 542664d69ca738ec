package chesspresenter

import (
	"strings"

	"github.com/park285/chessrules/internal/engine"
	"github.com/park285/chessrules/internal/msgcat"
)

// Formatter renders game state and rejections into user-facing text
// through the message catalog.
type Formatter struct {
	cat *msgcat.Catalog
}

// NewFormatter uses the embedded English catalog when cat is nil.
func NewFormatter(cat *msgcat.Catalog) *Formatter {
	if cat == nil {
		cat = msgcat.MustDefault()
	}
	return &Formatter{cat: cat}
}

// Text renders an arbitrary catalog key.
func (f *Formatter) Text(key string, data map[string]any) string {
	if f == nil {
		return key
	}
	return f.cat.Text(key, data)
}

func (f *Formatter) Status(g *engine.Game) string {
	if g == nil {
		return ""
	}
	return f.Text("status."+g.Status().String(), map[string]any{
		"First":  g.FirstPlayer().String(),
		"Second": g.SecondPlayer().String(),
	})
}

// Rejection explains why a move or rewind was refused.
func (f *Formatter) Rejection(reason engine.Reason, from, to engine.Field, g *engine.Game) string {
	if reason == engine.ReasonNone {
		return ""
	}
	active := ""
	if g != nil {
		active = g.ActivePlayer().String()
	}
	return f.Text("reject."+reason.String(), map[string]any{
		"Active": active,
		"From":   from.String(),
		"To":     to.String(),
	})
}

// Event describes the events players are told about. Placements, moves
// and status updates return "".
func (f *Formatter) Event(ev engine.Event) string {
	switch e := ev.(type) {
	case engine.PieceBeaten:
		return f.Text("event.piece_beaten", map[string]any{"Piece": e.Piece.String()})
	case engine.KingInDanger:
		key := "event.king_safe"
		if e.InDanger {
			key = "event.king_in_danger"
		}
		return f.Text(key, map[string]any{"Player": e.King.Owner().String()})
	}
	return ""
}

// Summary joins the notable event texts and the new status line.
func (f *Formatter) Summary(events []engine.Event, g *engine.Game) string {
	var lines []string
	for _, ev := range events {
		if s := f.Event(ev); s != "" {
			lines = append(lines, s)
		}
	}
	if s := f.Status(g); s != "" {
		lines = append(lines, s)
	}
	return strings.Join(lines, "\n")
}
