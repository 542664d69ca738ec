package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/chessrules/internal/savegame"
)

// Schema creates the results table.
const Schema = `CREATE TABLE IF NOT EXISTS finished_games (
    game_id      TEXT PRIMARY KEY,
    width        INTEGER NOT NULL,
    height       INTEGER NOT NULL,
    first_id     TEXT NOT NULL DEFAULT '',
    first_name   TEXT NOT NULL DEFAULT '',
    second_id    TEXT NOT NULL DEFAULT '',
    second_name  TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL,
    winner       TEXT NOT NULL DEFAULT '',
    method       TEXT NOT NULL DEFAULT '',
    moves        JSONB NOT NULL,
    transcript   TEXT NOT NULL DEFAULT '',
    started_at   TIMESTAMPTZ NOT NULL,
    ended_at     TIMESTAMPTZ NOT NULL,
    duration_ms  BIGINT NOT NULL DEFAULT 0
)`

type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(databaseURL string) (*PostgresRepository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresRepository{db: db}, nil
}

// EnsureSchema creates the table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

func (r *PostgresRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts a finished game.
func (r *PostgresRepository) SaveResult(ctx context.Context, res *Result) error {
	if r == nil || r.db == nil || res == nil {
		return nil
	}
	moves, err := json.Marshal(res.Moves)
	if err != nil {
		return err
	}

	q := `INSERT INTO finished_games (
        game_id, width, height, first_id, first_name, second_id, second_name,
        status, winner, method, moves, transcript, started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
      ) ON CONFLICT (game_id) DO UPDATE SET
        status=EXCLUDED.status,
        winner=EXCLUDED.winner,
        method=EXCLUDED.method,
        moves=EXCLUDED.moves,
        transcript=EXCLUDED.transcript,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err = r.db.ExecContext(ctx, q,
		res.GameID, res.Width, res.Height,
		res.FirstID, res.FirstName, res.SecondID, res.SecondName,
		res.Status, res.Winner, strings.TrimSpace(res.Method),
		string(moves), Transcript(res), res.StartedAt, res.EndedAt, res.Duration().Milliseconds(),
	)
	return err
}

// Recent returns up to limit results in which playerID took part.
func (r *PostgresRepository) Recent(ctx context.Context, playerID string, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
        game_id, width, height, first_id, first_name, second_id, second_name,
        status, winner, method, moves, started_at, ended_at
      FROM finished_games
      WHERE first_id = $1 OR second_id = $1
      ORDER BY ended_at DESC
      LIMIT $2`, strings.TrimSpace(playerID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Result
	for rows.Next() {
		var (
			res   Result
			moves []byte
		)
		if err := rows.Scan(&res.GameID, &res.Width, &res.Height,
			&res.FirstID, &res.FirstName, &res.SecondID, &res.SecondName,
			&res.Status, &res.Winner, &res.Method, &moves, &res.StartedAt, &res.EndedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(moves, &res.Moves); err != nil {
			return nil, fmt.Errorf("decode moves of %s: %w", res.GameID, err)
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}

// Transcript is a readable header plus numbered move list.
func Transcript(res *Result) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	date := res.EndedAt
	if date.IsZero() {
		date = time.Now()
	}
	fmt.Fprintf(&b, "[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day())
	fmt.Fprintf(&b, "[Board \"%dx%d\"]\n", res.Width, res.Height)
	fmt.Fprintf(&b, "[First \"%s\"]\n", sanitize(res.FirstName))
	fmt.Fprintf(&b, "[Second \"%s\"]\n", sanitize(res.SecondName))
	if m := strings.TrimSpace(res.Method); m != "" {
		fmt.Fprintf(&b, "[Termination \"%s\"]\n", sanitize(m))
	}
	fmt.Fprintf(&b, "[Result \"%s\"]\n\n", resultToken(res.Status))

	for i := 0; i < len(res.Moves); i += 2 {
		fmt.Fprintf(&b, "%d. %s", i/2+1, pairText(res.Moves[i]))
		if i+1 < len(res.Moves) {
			b.WriteString(" ")
			b.WriteString(pairText(res.Moves[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(resultToken(res.Status))
	return b.String()
}

func pairText(m savegame.MovePair) string {
	return m.From.String() + "-" + m.To.String()
}

func resultToken(status string) string {
	switch status {
	case "first_won":
		return "1-0"
	case "second_won":
		return "0-1"
	case "draw":
		return "1/2-1/2"
	default:
		return "*"
	}
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
