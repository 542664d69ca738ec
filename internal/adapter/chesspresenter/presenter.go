package chesspresenter

import (
	"strings"

	"github.com/park285/chessrules/pkg/chessdto"
)

// Presenter delivers formatted messages and the text board to an output
// without coupling to the command layer.
type Presenter struct {
	sendMessage func(message string) error
	sendBoard   func(board string) error
}

func NewPresenter(sendMessage func(message string) error, sendBoard func(board string) error) *Presenter {
	return &Presenter{
		sendMessage: sendMessage,
		sendBoard:   sendBoard,
	}
}

// Message sends a single line of text. Blank messages are dropped.
func (p *Presenter) Message(message string) error {
	if p == nil || p.sendMessage == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	return p.sendMessage(message)
}

// Board sends message followed by the board of state.
func (p *Presenter) Board(message string, state *chessdto.SessionState) error {
	if p == nil {
		return nil
	}
	if err := p.Message(message); err != nil {
		return err
	}
	if state != nil && state.Board != "" && p.sendBoard != nil {
		if err := p.sendBoard(state.Board); err != nil {
			return err
		}
	}
	return nil
}
