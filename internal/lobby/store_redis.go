package lobby

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttlLobby = 24 * time.Hour

type Store struct{ rdb *redis.Client }

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func keyMeta(code string) string { return "chessrules:lobby:" + strings.TrimSpace(code) }
func keyParticipants(code string) string { return keyMeta(code) + ":participants" }
func keyUserIdx(user string) string { return "chessrules:lobby:index:user:" + strings.TrimSpace(user) }

const keyWaiting = "chessrules:lobby:waiting"

func (s *Store) SaveMeta(ctx context.Context, meta *Meta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, keyMeta(meta.Code), raw, ttlLobby).Err(); err != nil {
		return err
	}
	_ = s.rdb.Expire(ctx, keyParticipants(meta.Code), ttlLobby).Err()
	return nil
}

// LoadMeta returns nil, nil when the lobby does not exist.
func (s *Store) LoadMeta(ctx context.Context, code string) (*Meta, error) {
	raw, err := s.rdb.Get(ctx, keyMeta(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m Meta
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) AddParticipant(ctx context.Context, code, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, keyParticipants(code), userID)
	pipe.Expire(ctx, keyParticipants(code), ttlLobby)
	pipe.SAdd(ctx, keyUserIdx(userID), code)
	pipe.Expire(ctx, keyUserIdx(userID), ttlLobby)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Participants(ctx context.Context, code string) ([]string, error) {
	return s.rdb.SMembers(ctx, keyParticipants(code)).Result()
}

func (s *Store) CodesByUser(ctx context.Context, userID string) ([]string, error) {
	return s.rdb.SMembers(ctx, keyUserIdx(userID)).Result()
}

func (s *Store) AddWaiting(ctx context.Context, code string) error {
	if err := s.rdb.SAdd(ctx, keyWaiting, code).Err(); err != nil {
		return err
	}
	_ = s.rdb.Expire(ctx, keyWaiting, ttlLobby).Err()
	return nil
}

func (s *Store) RemoveWaiting(ctx context.Context, code string) error {
	return s.rdb.SRem(ctx, keyWaiting, code).Err()
}

// ListWaiting returns waiting lobbies, oldest first. Expired codes are
// dropped from the index as they are found.
func (s *Store) ListWaiting(ctx context.Context) ([]*Meta, error) {
	codes, err := s.rdb.SMembers(ctx, keyWaiting).Result()
	if err != nil {
		return nil, err
	}
	var out []*Meta
	for _, c := range codes {
		m, _ := s.LoadMeta(ctx, c)
		if m == nil {
			_ = s.RemoveWaiting(ctx, c)
			continue
		}
		if m.State != StateWaiting {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// codeGen returns "LB-" followed by six upper-case alphanumerics.
func codeGen() (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return fmt.Sprintf("LB-%s", string(b)), nil
}

// coinFlip reports true with probability one half.
func coinFlip() bool {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return false
	}
	return b[0]&1 == 1
}
