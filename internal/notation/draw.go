package notation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/park285/chessrules/internal/engine"
)

// Draw renders the board as text with row 1 at the bottom. The first
// player's pieces are lower case, the second player's upper case.
func Draw(g *engine.Game) string {
	b := g.Board()
	var sb strings.Builder
	for row := b.Height() - 1; row >= 0; row-- {
		fmt.Fprintf(&sb, "%2d ", row+1)
		for col := 0; col < b.Width(); col++ {
			sb.WriteByte(' ')
			p, ok := b.PieceAt(engine.Field{Column: col, Row: row})
			if !ok {
				sb.WriteByte('.')
				continue
			}
			sb.WriteString(Symbol(p, g.FirstPlayer()))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   ")
	for col := 0; col < b.Width(); col++ {
		sb.WriteByte(' ')
		sb.WriteRune(rune('A' + col))
	}
	sb.WriteByte('\n')
	return sb.String()
}

// Symbol is the piece letter, lower case for the first player.
func Symbol(p *engine.Piece, first *engine.Player) string {
	s := p.Kind().Symbol()
	if p.Owner() == first {
		return string(unicode.ToLower(rune(s[0])))
	}
	return s
}
