package api

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/chessrules/internal/adapter/chesspresenter"
	"github.com/park285/chessrules/internal/archive"
	"github.com/park285/chessrules/internal/lobby"
	"github.com/park285/chessrules/internal/obslog"
	"github.com/park285/chessrules/internal/savegame"
	"github.com/park285/chessrules/internal/session"
)

const (
	maxBodyBytes   = 1 << 20
	requestTimeout = 5 * time.Second
	ctxKey         = "chessrules.ctx"
)

// Deps are the components the HTTP layer drives. Lobbies, Archive and
// Snapshots are optional; their routes answer 501 when unset.
type Deps struct {
	Sessions  *session.Manager
	Lobbies   *lobby.Manager
	Archive   archive.Repository
	Snapshots *savegame.BadgerStore
	Formatter *chesspresenter.Formatter
	Hub       *Hub
}

// Server exposes sessions, lobbies and snapshots as JSON over fasthttp.
type Server struct {
	deps Deps
	srv  *fasthttp.Server
}

func NewServer(d Deps) *Server {
	if d.Formatter == nil {
		d.Formatter = chesspresenter.NewFormatter(nil)
	}
	s := &Server{deps: d}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "chessrules",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: maxBodyBytes,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error {
	obslog.L().Info("http_listen", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Shutdown() error { return s.srv.Shutdown() }

// Handler routes requests by method and path segments.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		c, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		ctx.SetUserValue(ctxKey, c)
		s.route(ctx)
		obslog.L().Debug("http_request",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	parts := splitPath(string(ctx.Path()))
	get, post := ctx.IsGet(), ctx.IsPost()

	switch {
	case len(parts) == 1 && parts[0] == "healthz" && get:
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")

	case len(parts) == 1 && parts[0] == "games" && post:
		s.createGame(ctx)
	case len(parts) == 2 && parts[0] == "games" && get:
		s.getGame(ctx, parts[1])
	case len(parts) == 3 && parts[0] == "games" && parts[2] == "moves" && get:
		s.legalMoves(ctx, parts[1])
	case len(parts) == 3 && parts[0] == "games" && parts[2] == "move" && post:
		s.move(ctx, parts[1])
	case len(parts) == 3 && parts[0] == "games" && parts[2] == "rewind" && post:
		s.rewind(ctx, parts[1])
	case len(parts) == 3 && parts[0] == "games" && parts[2] == "save" && get:
		s.exportSave(ctx, parts[1])
	case len(parts) == 3 && parts[0] == "games" && parts[2] == "snapshot" && post:
		s.snapshot(ctx, parts[1])

	case len(parts) == 1 && parts[0] == "snapshots" && get:
		s.listSnapshots(ctx)
	case len(parts) == 3 && parts[0] == "snapshots" && parts[2] == "restore" && post:
		s.restoreSnapshot(ctx, parts[1])

	case len(parts) == 1 && parts[0] == "lobbies" && post:
		s.makeLobby(ctx)
	case len(parts) == 1 && parts[0] == "lobbies" && get:
		s.listLobbies(ctx)
	case len(parts) == 2 && parts[0] == "lobbies" && get:
		s.getLobby(ctx, parts[1])
	case len(parts) == 3 && parts[0] == "lobbies" && parts[2] == "join" && post:
		s.joinLobby(ctx, parts[1])

	case len(parts) == 3 && parts[0] == "players" && parts[2] == "games" && get:
		s.history(ctx, parts[1])

	default:
		writeError(ctx, fasthttp.StatusNotFound, "not_found", "no such route", false)
	}
}

func splitPath(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		obslog.L().Error("http_encode_error", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetStatusCode(status)
	ctx.SetBody(raw)
}

// decodeBody accepts an empty body as the zero value.
func decodeBody(ctx *fasthttp.RequestCtx, v any) error {
	body := ctx.PostBody()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

// callCtx returns the per-request context set up by Handler.
func callCtx(ctx *fasthttp.RequestCtx) context.Context {
	if c, ok := ctx.UserValue(ctxKey).(context.Context); ok {
		return c
	}
	return context.Background()
}
