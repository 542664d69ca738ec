package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/park285/chessrules/internal/engine"
)

// DefaultBoardSize is used when BOARD_SIZE and -size are absent.
const DefaultBoardSize = "8x8"

var ErrMalformedSize = errors.New("board size must have the form WIDTHxHEIGHT")

type AppConfig struct {
	BoardWidth  int
	BoardHeight int

	HTTPAddr  string
	WSAddr    string
	WSOrigins []string

	// Used by clients of a running server.
	APIBaseURL string
	WSBaseURL  string

	RedisURL    string
	DatabaseURL string

	SaveDir       string
	BadgerDir     string
	MessagesDir   string
	SessionTTLSec int

	FirstPlayerName  string
	SecondPlayerName string
}

// Load reads the configuration from the environment. BOARD_SIZE errors are
// reported, not defaulted.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:      ":8080",
		WSAddr:        ":8081",
		SaveDir:       "saves",
		SessionTTLSec: 86400,
	}

	size := strings.TrimSpace(os.Getenv("BOARD_SIZE"))
	if size == "" {
		size = DefaultBoardSize
	}
	w, h, err := ParseBoardSize(size)
	if err != nil {
		return nil, fmt.Errorf("BOARD_SIZE: %w", err)
	}
	cfg.BoardWidth, cfg.BoardHeight = w, h

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("WS_ADDR")); v != "" {
		cfg.WSAddr = v
	}

	for _, o := range strings.Split(os.Getenv("WS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.WSOrigins = append(cfg.WSOrigins, o)
		}
	}
	cfg.APIBaseURL = strings.TrimSpace(os.Getenv("CHESS_API_URL"))
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost" + cfg.HTTPAddr
	}
	cfg.WSBaseURL = strings.TrimSpace(os.Getenv("CHESS_WS_URL"))
	if cfg.WSBaseURL == "" {
		cfg.WSBaseURL = "ws://localhost" + cfg.WSAddr
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("SAVE_DIR")); v != "" {
		cfg.SaveDir = v
	}
	cfg.BadgerDir = strings.TrimSpace(os.Getenv("BADGER_DIR"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if v := strings.TrimSpace(os.Getenv("SESSION_TTL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTLSec = n
		}
	}

	cfg.FirstPlayerName = strings.TrimSpace(os.Getenv("FIRST_PLAYER_NAME"))
	cfg.SecondPlayerName = strings.TrimSpace(os.Getenv("SECOND_PLAYER_NAME"))

	return cfg, nil
}

// RequireServer checks the settings only the HTTP server needs.
func (c *AppConfig) RequireServer() error {
	if c.RedisURL == "" {
		return errors.New("REDIS_URL is required")
	}
	return nil
}

// ParseBoardSize parses "WxH" (case-insensitive x) and validates both
// dimensions against the engine limits.
func ParseBoardSize(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedSize, s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedSize, s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedSize, s)
	}
	if err := engine.ValidateSize(w, h); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// ParseSizeArgs applies the "-size WxH" argument convention. Fewer than two
// arguments select the default size; a first argument other than -size is
// ignored.
func ParseSizeArgs(args []string) (int, int, error) {
	if len(args) < 2 || args[0] != "-size" {
		w, h, _ := ParseBoardSize(DefaultBoardSize)
		return w, h, nil
	}
	return ParseBoardSize(args[1])
}
