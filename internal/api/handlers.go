package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/chessrules/internal/adapter/chesspresenter"
	"github.com/park285/chessrules/internal/engine"
	"github.com/park285/chessrules/internal/lobby"
	"github.com/park285/chessrules/internal/notation"
	"github.com/park285/chessrules/internal/obslog"
	"github.com/park285/chessrules/internal/session"
	"github.com/park285/chessrules/pkg/chessdto"
)

const defaultSide = 8

func (s *Server) createGame(ctx *fasthttp.RequestCtx) {
	var req chessdto.CreateGameRequest
	if err := decodeBody(ctx, &req); err != nil {
		s.fail(ctx, "", fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}
	if req.Width == 0 && req.Height == 0 {
		req.Width, req.Height = defaultSide, defaultSide
	}
	sess, err := s.deps.Sessions.Create(callCtx(ctx), session.CreateRequest{
		Width:      req.Width,
		Height:     req.Height,
		FirstID:    req.FirstID,
		FirstName:  req.FirstName,
		SecondID:   req.SecondID,
		SecondName: req.SecondName,
	})
	if err != nil {
		s.fail(ctx, "", err)
		return
	}
	s.writeState(ctx, fasthttp.StatusCreated, sess)
}

func (s *Server) getGame(ctx *fasthttp.RequestCtx, id string) {
	sess, g, err := s.deps.Sessions.Load(callCtx(ctx), id)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.deps.Formatter.ToDTOState(sess, g))
}

func (s *Server) writeState(ctx *fasthttp.RequestCtx, status int, sess *session.Session) {
	g, err := sess.Restore()
	if err != nil {
		s.fail(ctx, sess.ID, err)
		return
	}
	writeJSON(ctx, status, s.deps.Formatter.ToDTOState(sess, g))
}

func (s *Server) legalMoves(ctx *fasthttp.RequestCtx, id string) {
	raw := string(ctx.QueryArgs().Peek("from"))
	from, err := notation.ParseField(raw)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	fields, err := s.deps.Sessions.LegalMoves(callCtx(ctx), id, from)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	resp := chessdto.LegalMovesResponse{From: from.String(), Moves: make([]string, 0, len(fields))}
	for _, f := range fields {
		resp.Moves = append(resp.Moves, f.String())
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

// move answers 200 for both applied and rejected moves; Applied tells
// them apart.
func (s *Server) move(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.MoveRequest
	if err := decodeBody(ctx, &req); err != nil {
		s.fail(ctx, id, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}
	from, err := notation.ParseField(req.From)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	to, err := notation.ParseField(req.To)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	out, err := s.deps.Sessions.Play(callCtx(ctx), id, req.PlayerID, from, to)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	s.respondOutcome(ctx, id, out, from, to)
}

func (s *Server) rewind(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.RewindRequest
	if err := decodeBody(ctx, &req); err != nil {
		s.fail(ctx, id, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}
	out, err := s.deps.Sessions.Rewind(callCtx(ctx), id, req.PlayerID)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	s.respondOutcome(ctx, id, out, engine.Field{}, engine.Field{})
}

func (s *Server) respondOutcome(ctx *fasthttp.RequestCtx, id string, out *session.Outcome, from, to engine.Field) {
	resp := s.deps.Formatter.ToDTOMoveResponse(out, from, to)
	if resp.Applied && s.deps.Hub != nil {
		s.deps.Hub.Broadcast(id, chessdto.WatchMessage{Type: "update", GameID: id, Update: resp})
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) exportSave(ctx *fasthttp.RequestCtx, id string) {
	sess, err := s.deps.Sessions.Get(callCtx(ctx), id)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, sess.Save())
}

func (s *Server) snapshot(ctx *fasthttp.RequestCtx, id string) {
	if s.deps.Snapshots == nil {
		writeError(ctx, fasthttp.StatusNotImplemented, chessdto.CodeBadRequest, errFeatureDisabled.Error(), false)
		return
	}
	var req chessdto.SnapshotRequest
	if err := decodeBody(ctx, &req); err != nil {
		s.fail(ctx, id, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}
	sess, err := s.deps.Sessions.Get(callCtx(ctx), id)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = sess.ID
	}
	if err := s.deps.Snapshots.Put(name, sess.Save()); err != nil {
		s.fail(ctx, id, err)
		return
	}
	obslog.L().Info("snapshot_saved", zap.String("game_id", id), zap.String("name", name), zap.Int("moves", len(sess.Moves)))
	writeJSON(ctx, fasthttp.StatusCreated, chessdto.SnapshotRequest{Name: name})
}

func (s *Server) listSnapshots(ctx *fasthttp.RequestCtx) {
	if s.deps.Snapshots == nil {
		writeError(ctx, fasthttp.StatusNotImplemented, chessdto.CodeBadRequest, errFeatureDisabled.Error(), false)
		return
	}
	names, err := s.deps.Snapshots.List()
	if err != nil {
		s.fail(ctx, "", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.SnapshotListResponse{Names: names})
}

// restoreSnapshot starts a new session from a stored snapshot. The body
// may name the players; board size comes from the snapshot.
func (s *Server) restoreSnapshot(ctx *fasthttp.RequestCtx, name string) {
	if s.deps.Snapshots == nil {
		writeError(ctx, fasthttp.StatusNotImplemented, chessdto.CodeBadRequest, errFeatureDisabled.Error(), false)
		return
	}
	var req chessdto.CreateGameRequest
	if err := decodeBody(ctx, &req); err != nil {
		s.fail(ctx, name, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}
	save, err := s.deps.Snapshots.Get(name)
	if err != nil {
		s.fail(ctx, name, err)
		return
	}
	sess, err := s.deps.Sessions.Create(callCtx(ctx), session.CreateRequest{
		Width:      save.Width,
		Height:     save.Height,
		FirstID:    req.FirstID,
		FirstName:  req.FirstName,
		SecondID:   req.SecondID,
		SecondName: req.SecondName,
		Moves:      save.Moves,
	})
	if err != nil {
		s.fail(ctx, name, err)
		return
	}
	s.writeState(ctx, fasthttp.StatusCreated, sess)
}

func (s *Server) makeLobby(ctx *fasthttp.RequestCtx) {
	if s.deps.Lobbies == nil {
		writeError(ctx, fasthttp.StatusNotImplemented, chessdto.CodeBadRequest, errFeatureDisabled.Error(), false)
		return
	}
	var req chessdto.LobbyMakeRequest
	if err := decodeBody(ctx, &req); err != nil {
		s.fail(ctx, "", fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}
	if req.Width == 0 && req.Height == 0 {
		req.Width, req.Height = defaultSide, defaultSide
	}
	meta, err := s.deps.Lobbies.Make(callCtx(ctx), req.PlayerID, req.PlayerName, req.Width, req.Height, lobby.ParseSide(req.Side))
	if err != nil {
		s.fail(ctx, "", err)
		return
	}
	writeJSON(ctx, fasthttp.StatusCreated, chesspresenter.ToDTOLobby(meta))
}

func (s *Server) listLobbies(ctx *fasthttp.RequestCtx) {
	if s.deps.Lobbies == nil {
		writeError(ctx, fasthttp.StatusNotImplemented, chessdto.CodeBadRequest, errFeatureDisabled.Error(), false)
		return
	}
	list, err := s.deps.Lobbies.List(callCtx(ctx))
	if err != nil {
		s.fail(ctx, "", err)
		return
	}
	resp := chessdto.LobbyListResponse{Lobbies: make([]chessdto.LobbyDTO, 0, len(list))}
	for _, m := range list {
		resp.Lobbies = append(resp.Lobbies, chesspresenter.ToDTOLobby(m))
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) getLobby(ctx *fasthttp.RequestCtx, code string) {
	if s.deps.Lobbies == nil {
		writeError(ctx, fasthttp.StatusNotImplemented, chessdto.CodeBadRequest, errFeatureDisabled.Error(), false)
		return
	}
	meta, err := s.deps.Lobbies.Get(callCtx(ctx), code)
	if err != nil {
		s.fail(ctx, code, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOLobby(meta))
}

func (s *Server) joinLobby(ctx *fasthttp.RequestCtx, code string) {
	if s.deps.Lobbies == nil {
		writeError(ctx, fasthttp.StatusNotImplemented, chessdto.CodeBadRequest, errFeatureDisabled.Error(), false)
		return
	}
	var req chessdto.LobbyJoinRequest
	if err := decodeBody(ctx, &req); err != nil {
		s.fail(ctx, code, fmt.Errorf("%w: %v", errBadJSON, err))
		return
	}
	jr, err := s.deps.Lobbies.Join(callCtx(ctx), code, req.PlayerID, req.PlayerName)
	if err != nil {
		s.fail(ctx, code, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToDTOLobby(jr.Meta))
}

func (s *Server) history(ctx *fasthttp.RequestCtx, playerID string) {
	if s.deps.Archive == nil {
		writeError(ctx, fasthttp.StatusNotImplemented, chessdto.CodeBadRequest, errFeatureDisabled.Error(), false)
		return
	}
	limit := 10
	if raw := string(ctx.QueryArgs().Peek("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	list, err := s.deps.Archive.Recent(callCtx(ctx), playerID, limit)
	if err != nil {
		s.fail(ctx, playerID, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.HistoryResponse{PlayerID: playerID, Games: chesspresenter.ToDTOGames(list)})
}
