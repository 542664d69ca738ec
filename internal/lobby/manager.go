package lobby

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/chessrules/internal/engine"
	"github.com/park285/chessrules/internal/obslog"
	"github.com/park285/chessrules/internal/session"
)

// Manager pairs two players through a short lobby code and starts a
// session once the second player joins.
type Manager struct {
	rdb      *redis.Client
	store    *Store
	sessions *session.Manager
}

func NewManager(rdb *redis.Client, sessions *session.Manager) *Manager {
	return &Manager{rdb: rdb, store: NewStore(rdb), sessions: sessions}
}

// Make opens a waiting lobby for userID.
func (m *Manager) Make(ctx context.Context, userID, userName string, width, height int, side Side) (*Meta, error) {
	userID, userName = strings.TrimSpace(userID), strings.TrimSpace(userName)
	if userID == "" {
		return nil, ErrInvalidArgs
	}
	if err := engine.ValidateSize(width, height); err != nil {
		return nil, err
	}
	if userName == "" {
		userName = userID
	}
	if s, _ := m.sessions.ActiveByPlayer(ctx, userID); s != nil {
		return nil, ErrPlayerBusy
	}
	if waiting, err := m.waitingOf(ctx, userID); err != nil {
		return nil, err
	} else if waiting != nil {
		return nil, ErrCreatorHasLobby
	}

	for i := 0; i < 5; i++ {
		code, err := codeGen()
		if err != nil {
			return nil, err
		}
		ok, err := m.rdb.SetNX(ctx, keyMeta(code), []byte("{}"), ttlLobby).Result()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		meta := &Meta{
			Code:        code,
			State:       StateWaiting,
			CreatedAt:   time.Now(),
			Width:       width,
			Height:      height,
			CreatorID:   userID,
			CreatorName: userName,
			CreatorSide: side,
		}
		if err := m.store.SaveMeta(ctx, meta); err != nil {
			return nil, err
		}
		if err := m.store.AddParticipant(ctx, code, userID); err != nil {
			return nil, err
		}
		if err := m.store.AddWaiting(ctx, code); err != nil {
			return nil, err
		}
		obslog.L().Info("lobby_make", zap.String("code", code), zap.String("creator_id", userID), zap.String("side", string(side)))
		return meta, nil
	}
	return nil, fmt.Errorf("failed to allocate lobby code")
}

// Join adds userID as the second participant and starts the game.
func (m *Manager) Join(ctx context.Context, code, userID, userName string) (*JoinResult, error) {
	code, userID, userName = strings.TrimSpace(code), strings.TrimSpace(userID), strings.TrimSpace(userName)
	if code == "" || userID == "" {
		return nil, ErrInvalidArgs
	}
	if userName == "" {
		userName = userID
	}
	meta, err := m.store.LoadMeta(ctx, code)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrLobbyGone
	}
	if meta.State != StateWaiting {
		return nil, ErrLobbyStarted
	}
	if meta.CreatorID == userID {
		return nil, ErrOwnLobby
	}
	if s, _ := m.sessions.ActiveByPlayer(ctx, userID); s != nil {
		return nil, ErrPlayerBusy
	}

	partKey := keyParticipants(code)
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cnt, err := tx.SCard(ctx, partKey).Result()
		if err != nil {
			return err
		}
		if cnt >= 2 {
			return ErrFull
		}
		pipe := tx.TxPipeline()
		pipe.SAdd(ctx, partKey, userID)
		pipe.Expire(ctx, partKey, ttlLobby)
		pipe.SAdd(ctx, keyUserIdx(userID), code)
		pipe.Expire(ctx, keyUserIdx(userID), ttlLobby)
		_, pErr := pipe.Exec(ctx)
		return pErr
	}, partKey)
	if errors.Is(err, redis.TxFailedErr) {
		err = ErrFull
	}
	if err != nil {
		obslog.L().Warn("lobby_join_error", zap.String("code", code), zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	req := session.CreateRequest{Width: meta.Width, Height: meta.Height}
	creatorFirst := meta.CreatorSide == SideFirst || (meta.CreatorSide != SideSecond && coinFlip())
	if creatorFirst {
		req.FirstID, req.FirstName = meta.CreatorID, meta.CreatorName
		req.SecondID, req.SecondName = userID, userName
	} else {
		req.FirstID, req.FirstName = userID, userName
		req.SecondID, req.SecondName = meta.CreatorID, meta.CreatorName
	}
	s, err := m.sessions.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	meta.State = StateStarted
	meta.GameID = s.ID
	meta.FirstID, meta.FirstName = s.FirstID, s.FirstName
	meta.SecondID, meta.SecondName = s.SecondID, s.SecondName
	if err := m.store.SaveMeta(ctx, meta); err != nil {
		return nil, err
	}
	_ = m.store.RemoveWaiting(ctx, code)
	obslog.L().Info("lobby_start_game",
		zap.String("code", code),
		zap.String("game_id", s.ID),
		zap.String("first_id", s.FirstID),
		zap.String("second_id", s.SecondID),
	)
	return &JoinResult{Started: true, GameID: s.ID, Meta: meta}, nil
}

// Get returns the lobby behind code.
func (m *Manager) Get(ctx context.Context, code string) (*Meta, error) {
	meta, err := m.store.LoadMeta(ctx, code)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrLobbyGone
	}
	return meta, nil
}

// List returns the lobbies still waiting for a second player.
func (m *Manager) List(ctx context.Context) ([]*Meta, error) { return m.store.ListWaiting(ctx) }

func (m *Manager) waitingOf(ctx context.Context, userID string) (*Meta, error) {
	codes, err := m.store.CodesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range codes {
		meta, _ := m.store.LoadMeta(ctx, c)
		if meta != nil && meta.State == StateWaiting && meta.CreatorID == userID {
			return meta, nil
		}
	}
	return nil, nil
}
