package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chessrules/internal/obslog"
	"github.com/park285/chessrules/pkg/chessdto"
)

const watcherBuffer = 16

type watcher struct {
	ch chan chessdto.WatchMessage
}

// Hub fans game updates out to websocket watchers, keyed by game ID.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*watcher]struct{}

	pingInterval   time.Duration
	writeTimeout   time.Duration
	originPatterns []string
}

func NewHub(originPatterns ...string) *Hub {
	return &Hub{
		subs:           make(map[string]map[*watcher]struct{}),
		pingInterval:   30 * time.Second,
		writeTimeout:   5 * time.Second,
		originPatterns: originPatterns,
	}
}

// NewWSServer serves the hub under /ws on addr.
func NewWSServer(addr string, hub *Hub) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// ServeHTTP upgrades /ws?game=<id> and streams updates of that game.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gameID := strings.TrimSpace(r.URL.Query().Get("game"))
	if gameID == "" {
		http.Error(w, "game query parameter required", http.StatusBadRequest)
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  h.originPatterns,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("ws_accept_error", zap.String("game_id", gameID), zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	ctx := conn.CloseRead(r.Context())
	wt := h.add(gameID)
	defer h.remove(gameID, wt)
	obslog.L().Info("ws_watch", zap.String("game_id", gameID), zap.String("remote", r.RemoteAddr))

	if err := h.write(ctx, conn, chessdto.WatchMessage{Type: "subscribed", GameID: gameID}); err != nil {
		return
	}

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-wt.ch:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "too slow")
				return
			}
			if err := h.write(ctx, conn, msg); err != nil {
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, msg chessdto.WatchMessage) error {
	wctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, msg)
}

func (h *Hub) add(gameID string) *watcher {
	wt := &watcher{ch: make(chan chessdto.WatchMessage, watcherBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[gameID]
	if !ok {
		set = make(map[*watcher]struct{})
		h.subs[gameID] = set
	}
	set[wt] = struct{}{}
	return wt
}

func (h *Hub) remove(gameID string, wt *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[gameID]
	if _, ok := set[wt]; !ok {
		return
	}
	delete(set, wt)
	close(wt.ch)
	if len(set) == 0 {
		delete(h.subs, gameID)
	}
}

// Broadcast queues msg for every watcher of gameID. A watcher whose
// buffer is full is disconnected.
func (h *Hub) Broadcast(gameID string, msg chessdto.WatchMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for wt := range h.subs[gameID] {
		select {
		case wt.ch <- msg:
		default:
			obslog.L().Warn("ws_drop_slow_watcher", zap.String("game_id", gameID))
			delete(h.subs[gameID], wt)
			close(wt.ch)
		}
	}
	if len(h.subs[gameID]) == 0 {
		delete(h.subs, gameID)
	}
}

// Watchers is the number of connections following gameID.
func (h *Hub) Watchers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[gameID])
}
