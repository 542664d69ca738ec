package api

import (
	"errors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/chessrules/internal/engine"
	"github.com/park285/chessrules/internal/lobby"
	"github.com/park285/chessrules/internal/notation"
	"github.com/park285/chessrules/internal/obslog"
	"github.com/park285/chessrules/internal/savegame"
	"github.com/park285/chessrules/internal/session"
	"github.com/park285/chessrules/pkg/chessdto"
)

func writeError(ctx *fasthttp.RequestCtx, status int, code, msg string, retryable bool) {
	writeJSON(ctx, status, chessdto.ErrorResponse{Error: chessdto.DomainError{Code: code, Message: msg, Retryable: retryable}})
}

// fail maps domain errors onto HTTP responses.
func (s *Server) fail(ctx *fasthttp.RequestCtx, id string, err error) {
	text := s.deps.Formatter.Text
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(ctx, fasthttp.StatusNotFound, chessdto.CodeNotFound, text("api.session_not_found", map[string]any{"ID": id}), false)
	case errors.Is(err, lobby.ErrLobbyGone), errors.Is(err, savegame.ErrSaveNotFound):
		writeError(ctx, fasthttp.StatusNotFound, chessdto.CodeNotFound, err.Error(), false)
	case errors.Is(err, session.ErrNotParticipant), errors.Is(err, lobby.ErrOwnLobby):
		writeError(ctx, fasthttp.StatusForbidden, chessdto.CodeForbidden, err.Error(), false)
	case errors.Is(err, session.ErrConflict):
		writeError(ctx, fasthttp.StatusConflict, chessdto.CodeConflict, text("api.conflict", nil), true)
	case errors.Is(err, lobby.ErrFull), errors.Is(err, lobby.ErrLobbyStarted),
		errors.Is(err, lobby.ErrPlayerBusy), errors.Is(err, lobby.ErrCreatorHasLobby),
		errors.Is(err, savegame.ErrSaveExists):
		writeError(ctx, fasthttp.StatusConflict, chessdto.CodeConflict, err.Error(), false)
	case isBadRequest(err):
		writeError(ctx, fasthttp.StatusBadRequest, chessdto.CodeBadRequest, text("api.bad_request", map[string]any{"Err": err.Error()}), false)
	default:
		obslog.L().Error("api_error", zap.String("id", id), zap.Error(err))
		writeError(ctx, fasthttp.StatusInternalServerError, chessdto.CodeInternal, text("api.internal", nil), true)
	}
}

func isBadRequest(err error) bool {
	for _, target := range []error{
		engine.ErrInvalidBoardSize,
		engine.ErrNoPieceAtSource,
		notation.ErrBadField,
		session.ErrInvalidArgs,
		lobby.ErrInvalidArgs,
		savegame.ErrReplayDiverged,
		savegame.ErrInvalidSave,
		errBadJSON,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var (
	errBadJSON         = errors.New("malformed JSON body")
	errFeatureDisabled = errors.New("feature not configured")
)
