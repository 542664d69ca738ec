// Package notation converts engine state to and from text: field names,
// FEN piece placement and ASCII boards.
package notation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/park285/chessrules/internal/engine"
)

var ErrBadField = errors.New("field must be a column letter followed by a row number")

// ParseField reads "B2" style names, the inverse of engine.Field.String.
// Letters are case-insensitive.
func ParseField(s string) (engine.Field, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 || s[0] < 'A' || s[0] > 'Z' {
		return engine.Field{}, fmt.Errorf("%w: %q", ErrBadField, s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil || row < 1 {
		return engine.Field{}, fmt.Errorf("%w: %q", ErrBadField, s)
	}
	return engine.NewField(int(s[0]-'A'), row-1)
}

// FormatMove renders a move as "B2-B3", or "B4xC5" for a capture.
func FormatMove(m engine.Move) string {
	sep := "-"
	if m.Beaten != nil {
		sep = "x"
	}
	return m.From.String() + sep + m.To.String()
}

// FormatFields joins fields with single spaces.
func FormatFields(fields []engine.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}
