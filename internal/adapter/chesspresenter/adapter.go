package chesspresenter

import (
	"errors"

	"go.uber.org/zap"

	"github.com/park285/chessrules/internal/archive"
	"github.com/park285/chessrules/internal/engine"
	"github.com/park285/chessrules/internal/lobby"
	"github.com/park285/chessrules/internal/notation"
	"github.com/park285/chessrules/internal/obslog"
	"github.com/park285/chessrules/internal/session"
	"github.com/park285/chessrules/pkg/chessdto"
)

// ToDTOState builds the client view of s from its replayed game g.
func (f *Formatter) ToDTOState(s *session.Session, g *engine.Game) *chessdto.SessionState {
	if s == nil || g == nil {
		return nil
	}
	first, second := g.FirstPlayer(), g.SecondPlayer()
	st := &chessdto.SessionState{
		ID:             s.ID,
		Width:          s.Width,
		Height:         s.Height,
		Status:         g.Status().String(),
		StatusText:     f.Status(g),
		FirstName:      first.String(),
		SecondName:     second.String(),
		FirstID:        s.FirstID,
		SecondID:       s.SecondID,
		Moves:          make([]string, 0, len(g.Moves())),
		Pieces:         toDTOPieces(g),
		FirstInDanger:  g.KingInDanger(first),
		SecondInDanger: g.KingInDanger(second),
		Captured: chessdto.CapturedPieces{
			First:  pieceKinds(g.Captured(first)),
			Second: pieceKinds(g.Captured(second)),
		},
		Board: notation.Draw(g),
	}
	if active := g.ActivePlayer(); active != nil {
		st.Active = active.String()
	}
	for _, m := range g.Moves() {
		st.Moves = append(st.Moves, notation.FormatMove(m))
	}
	if fen, err := notation.PlacementFEN(g); err == nil {
		st.FEN = fen
	} else if !errors.Is(err, notation.ErrNotStandardSize) {
		obslog.L().Debug("fen_unavailable", zap.String("game_id", s.ID), zap.Error(err))
	}
	return st
}

func toDTOPieces(g *engine.Game) []chessdto.PieceDTO {
	occ := g.Board().Occupied()
	out := make([]chessdto.PieceDTO, 0, len(occ))
	for _, o := range occ {
		out = append(out, chessdto.PieceDTO{
			Kind:   o.Piece.Kind().String(),
			Owner:  o.Piece.Owner().String(),
			Field:  o.Field.String(),
			Symbol: notation.Symbol(o.Piece, g.FirstPlayer()),
		})
	}
	return out
}

func pieceKinds(list []*engine.Piece) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.Kind().String())
	}
	return out
}

// ToDTOEvents converts engine events, attaching their message text.
func (f *Formatter) ToDTOEvents(events []engine.Event, g *engine.Game) []chessdto.EventDTO {
	out := make([]chessdto.EventDTO, 0, len(events))
	for _, ev := range events {
		dto := chessdto.EventDTO{Type: ev.EventType(), Text: f.Event(ev)}
		switch e := ev.(type) {
		case engine.PiecePlaced:
			dto.Piece, dto.Field = e.Piece.Kind().String(), e.Field.String()
			dto.Player = e.Piece.Owner().String()
		case engine.PieceBeaten:
			dto.Piece, dto.Player = e.Piece.Kind().String(), e.Piece.Owner().String()
		case engine.PieceMoved:
			dto.Piece, dto.Field, dto.Rewind = e.Piece.Kind().String(), e.To.String(), e.Rewind
			dto.Player = e.Piece.Owner().String()
		case engine.StatusUpdated:
			dto.Status = e.Status.String()
		case engine.KingInDanger:
			in := e.InDanger
			dto.Player, dto.InDanger = e.King.Owner().String(), &in
		}
		out = append(out, dto)
	}
	return out
}

// ToDTOMoveResponse converts the outcome of a move or rewind.
func (f *Formatter) ToDTOMoveResponse(out *session.Outcome, from, to engine.Field) *chessdto.MoveResponse {
	if out == nil {
		return nil
	}
	resp := &chessdto.MoveResponse{
		Applied: out.Applied(),
		State:   f.ToDTOState(out.Session, out.Game),
	}
	if out.Applied() {
		resp.Events = f.ToDTOEvents(out.Events, out.Game)
		resp.Message = f.Summary(out.Events, out.Game)
	} else {
		resp.Reason = out.Reason.String()
		resp.Message = f.Rejection(out.Reason, from, to, out.Game)
	}
	return resp
}

func ToDTOGames(list []*archive.Result) []*chessdto.GameRecord {
	out := make([]*chessdto.GameRecord, 0, len(list))
	for _, r := range list {
		if r == nil {
			continue
		}
		moves := make([]string, 0, len(r.Moves))
		for _, m := range r.Moves {
			moves = append(moves, m.From.String()+"-"+m.To.String())
		}
		out = append(out, &chessdto.GameRecord{
			GameID:      r.GameID,
			Width:       r.Width,
			Height:      r.Height,
			FirstName:   r.FirstName,
			SecondName:  r.SecondName,
			Status:      r.Status,
			Winner:      r.Winner,
			Method:      r.Method,
			Moves:       moves,
			Transcript:  archive.Transcript(r),
			StartedAt:   r.StartedAt,
			EndedAt:     r.EndedAt,
			DurationSec: int64(r.Duration().Seconds()),
		})
	}
	return out
}

func ToDTOLobby(m *lobby.Meta) chessdto.LobbyDTO {
	if m == nil {
		return chessdto.LobbyDTO{}
	}
	return chessdto.LobbyDTO{
		Code:        m.Code,
		State:       string(m.State),
		Width:       m.Width,
		Height:      m.Height,
		CreatorName: m.CreatorName,
		GameID:      m.GameID,
	}
}
