package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/chessrules/internal/archive"
	"github.com/park285/chessrules/internal/engine"
	"github.com/park285/chessrules/internal/obslog"
	"github.com/park285/chessrules/internal/savegame"
)

const DefaultTTL = 24 * time.Hour

// Manager keeps live games in Redis. Every mutation reads, replays and
// writes the session inside a WATCH transaction on the session key.
type Manager struct {
	rdb  *redis.Client
	ttl  time.Duration
	repo archive.Repository
}

func NewManager(redisURL string, ttl time.Duration) (*Manager, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for session manager")
	}
	opts, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{rdb: rdb, ttl: ttl}, nil
}

func (m *Manager) Close() error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Close()
}

// Client exposes the Redis client for components sharing the connection.
func (m *Manager) Client() *redis.Client {
	if m == nil {
		return nil
	}
	return m.rdb
}

// AttachRepository wires an archive for finished games.
func (m *Manager) AttachRepository(r archive.Repository) {
	if m != nil {
		m.repo = r
	}
}

// Create starts a new game with both standard sets.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*Session, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	if err := engine.ValidateSize(req.Width, req.Height); err != nil {
		return nil, err
	}
	first, second := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.SecondName)
	if first == "" {
		first = "Black"
	}
	if second == "" {
		second = "White"
	}
	now := time.Now()
	s := &Session{
		ID:         "game-" + uuid.NewString(),
		Width:      req.Width,
		Height:     req.Height,
		Moves:      []savegame.MovePair{},
		FirstID:    strings.TrimSpace(req.FirstID),
		FirstName:  first,
		SecondID:   strings.TrimSpace(req.SecondID),
		SecondName: second,
		Status:     engine.FirstActive.String(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if len(req.Moves) > 0 {
		s.Moves = append(s.Moves, req.Moves...)
		g, err := s.Restore()
		if err != nil {
			return nil, err
		}
		s.sync(g)
	}
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	if err := m.indexParticipants(ctx, s.ID, s.FirstID, s.SecondID); err != nil {
		return nil, err
	}
	obslog.L().Info("game_create",
		zap.String("game_id", s.ID),
		zap.Int("width", s.Width),
		zap.Int("height", s.Height),
		zap.String("first_id", s.FirstID),
		zap.String("second_id", s.SecondID),
	)
	return s, nil
}

// Get returns the stored session.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	return m.get(ctx, m.rdb, id)
}

// Load returns the session together with its replayed game.
func (m *Manager) Load(ctx context.Context, id string) (*Session, *engine.Game, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	g, err := s.Restore()
	if err != nil {
		return nil, nil, err
	}
	return s, g, nil
}

// LegalMoves lists the destinations of the piece on from.
func (m *Manager) LegalMoves(ctx context.Context, id string, from engine.Field) ([]engine.Field, error) {
	_, g, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	p, ok := g.Board().PieceAt(from)
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrNoPieceAtSource, from)
	}
	return g.LegalMoves(p).Slice(), nil
}

// Play applies from->to for playerID. Engine rejections are reported in
// the Outcome's Reason, not as an error.
func (m *Manager) Play(ctx context.Context, id, playerID string, from, to engine.Field) (*Outcome, error) {
	out, err := m.mutate(ctx, id, playerID, func(s *Session, g *engine.Game, sides []*engine.Player) ([]engine.Event, error) {
		if active := g.ActivePlayer(); active != nil && !contains(sides, active) {
			return nil, &engine.RejectionError{Reason: engine.ReasonNotYourTurn, From: from, To: to}
		}
		return g.TryMove(from, to)
	})
	if err != nil {
		return nil, err
	}
	if out.Applied() {
		obslog.L().Info("game_move",
			zap.String("game_id", id),
			zap.String("player_id", playerID),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.String("status", out.Session.Status),
		)
	} else {
		obslog.L().Debug("game_move_rejected",
			zap.String("game_id", id),
			zap.String("player_id", playerID),
			zap.Stringer("reason", out.Reason),
		)
	}
	return out, nil
}

// Rewind takes back the most recent move. In a seated game only the player
// who made that move may take it back. A finished game stays finished once
// it is seated or its result has been archived.
func (m *Manager) Rewind(ctx context.Context, id, playerID string) (*Outcome, error) {
	out, err := m.mutate(ctx, id, playerID, func(s *Session, g *engine.Game, sides []*engine.Player) ([]engine.Event, error) {
		moves := g.Moves()
		if len(moves) == 0 {
			return nil, &engine.RejectionError{Reason: engine.ReasonNotLastMove}
		}
		last := moves[len(moves)-1]
		if g.IsGameOver() && (m.repo != nil || !s.hotSeat()) {
			return nil, &engine.RejectionError{Reason: engine.ReasonGameAlreadyOver, From: last.To, To: last.From}
		}
		if p, ok := g.Board().PieceAt(last.To); ok && !contains(sides, p.Owner()) {
			return nil, &engine.RejectionError{Reason: engine.ReasonNotYourTurn, From: last.To, To: last.From}
		}
		return g.TryRewind(last)
	})
	if err != nil {
		return nil, err
	}
	if out.Applied() {
		obslog.L().Info("game_rewind",
			zap.String("game_id", id),
			zap.String("player_id", playerID),
			zap.Int("moves", len(out.Session.Moves)),
		)
	}
	return out, nil
}

type mutation func(s *Session, g *engine.Game, sides []*engine.Player) ([]engine.Event, error)

func (m *Manager) mutate(ctx context.Context, id, playerID string, apply mutation) (*Outcome, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	key := gameKey(id)
	var out *Outcome
	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := m.get(ctx, tx, id)
		if err != nil {
			return err
		}
		g, err := cur.Restore()
		if err != nil {
			return err
		}
		sides, err := cur.sideOf(g, strings.TrimSpace(playerID))
		if err != nil {
			return err
		}
		events, err := apply(cur, g, sides)
		if err != nil {
			if reason := engine.ReasonOf(err); reason != engine.ReasonNone {
				out = &Outcome{Session: cur, Game: g, Reason: reason}
				return nil
			}
			return err
		}
		cur.sync(g)
		raw, err := json.Marshal(cur)
		if err != nil {
			return err
		}
		pipe := tx.TxPipeline()
		pipe.Set(ctx, key, raw, m.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		out = &Outcome{Session: cur, Game: g, Events: events}
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	if out.Applied() && out.Game.IsGameOver() {
		_ = m.persistIfFinal(ctx, out.Session, out.Game)
	}
	return out, nil
}

func contains(list []*engine.Player, p *engine.Player) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}

// ActiveByPlayer returns the most recently updated unfinished game of
// playerID, or nil.
func (m *Manager) ActiveByPlayer(ctx context.Context, playerID string) (*Session, error) {
	if m == nil || m.rdb == nil {
		return nil, ErrNotInitialized
	}
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, nil
	}
	ids, err := m.rdb.SMembers(ctx, idxPlayerKey(playerID)).Result()
	if err != nil {
		return nil, err
	}
	var list []*Session
	for _, id := range ids {
		s, gerr := m.get(ctx, m.rdb, id)
		if gerr == nil && s.Active() {
			list = append(list, s)
		}
	}
	if len(list) == 0 {
		return nil, nil
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list[0], nil
}

func (m *Manager) save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, gameKey(s.ID), raw, m.ttl).Err()
}

func (m *Manager) get(ctx context.Context, c redis.Cmdable, id string) (*Session, error) {
	raw, err := c.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *Manager) indexParticipants(ctx context.Context, id string, players ...string) error {
	for _, p := range players {
		if strings.TrimSpace(p) == "" {
			continue
		}
		key := idxPlayerKey(p)
		if err := m.rdb.SAdd(ctx, key, id).Err(); err != nil {
			return err
		}
		_ = m.rdb.Expire(ctx, key, m.ttl).Err()
	}
	return nil
}

// persistIfFinal archives a finished game when a repository is attached.
func (m *Manager) persistIfFinal(ctx context.Context, s *Session, g *engine.Game) error {
	if m.repo == nil || !g.IsGameOver() {
		return nil
	}
	res := &archive.Result{
		GameID:     s.ID,
		Width:      s.Width,
		Height:     s.Height,
		FirstID:    s.FirstID,
		FirstName:  s.FirstName,
		SecondID:   s.SecondID,
		SecondName: s.SecondName,
		Status:     s.Status,
		Winner:     s.Winner,
		Method:     finishMethod(g),
		Moves:      s.Save().Moves,
		StartedAt:  s.CreatedAt,
		EndedAt:    s.UpdatedAt,
	}
	if err := m.repo.SaveResult(ctx, res); err != nil {
		obslog.L().Error("result_persist_error", zap.String("game_id", s.ID), zap.Error(err))
		return err
	}
	obslog.L().Info("game_finished",
		zap.String("game_id", s.ID),
		zap.String("status", s.Status),
		zap.String("method", res.Method),
	)
	return nil
}

// finishMethod tells a mate from a captured king.
func finishMethod(g *engine.Game) string {
	loser := g.FirstPlayer()
	if g.Status() == engine.FirstWon {
		loser = g.SecondPlayer()
	}
	for _, p := range engine.PiecesOf(g.Board(), loser) {
		if p.Kind() == engine.King {
			return "checkmate"
		}
	}
	return "king_captured"
}

func gameKey(id string) string { return "chessrules:game:" + strings.TrimSpace(id) }
func idxPlayerKey(player string) string { return "chessrules:index:player:" + strings.TrimSpace(player) }

// ParseRedisURL accepts redis:// and rediss:// URLs with an optional
// password and database number.
func ParseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
