package engine

import "fmt"

// Field is a board coordinate. Column 0 is the leftmost file, row 0 is the
// home row of the first player.
type Field struct {
	Column int `json:"column" yaml:"column"`
	Row    int `json:"row" yaml:"row"`
}

// NewField validates that both coordinates are non-negative.
func NewField(column, row int) (Field, error) {
	if column < 0 || row < 0 {
		return Field{}, fmt.Errorf("%w: (%d,%d)", ErrNegativeCoordinate, column, row)
	}
	return Field{Column: column, Row: row}, nil
}

// String renders the field as column letter plus 1-based row, e.g. "A1".
func (f Field) String() string {
	if f.Column < 0 || f.Column >= 26 {
		return fmt.Sprintf("(%d,%d)", f.Column, f.Row)
	}
	return fmt.Sprintf("%c%d", rune('A'+f.Column), f.Row+1)
}

// Offset returns the field shifted by dc columns and dr rows. The result may
// lie off the board; callers check with Contains.
func (f Field) Offset(dc, dr int) Field {
	return Field{Column: f.Column + dc, Row: f.Row + dr}
}

func (f Field) less(o Field) bool {
	if f.Row != o.Row {
		return f.Row < o.Row
	}
	return f.Column < o.Column
}
