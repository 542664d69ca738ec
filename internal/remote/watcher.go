package remote

import (
	"context"
	"errors"
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

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateFailed       State = "failed"
)

type UpdateCallback func(msg *chessdto.WatchMessage)

type StateCallback func(state State)

type callbackEntry struct {
	id       int
	callback UpdateCallback
}

type stateCallbackEntry struct {
	id       int
	callback StateCallback
}

// Watcher follows one game over the server's websocket and reconnects
// with backoff when the connection drops.
type Watcher struct {
	wsURL string

	conn   *websocket.Conn
	connM  sync.Mutex
	state  State
	stateM sync.RWMutex

	msgCbs   []callbackEntry
	stateCbs []stateCallbackEntry
	nextID   int
	cbM      sync.RWMutex

	maxReconnectAttempts int
	pingInterval         time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc

	headerProvider HeaderProvider
}

// NewWatcher builds a watcher for gameID on a server whose websocket
// listens at wsBase, e.g. "ws://localhost:8081".
func NewWatcher(wsBase, gameID string, maxReconnectAttempts int) *Watcher {
	u := strings.TrimRight(wsBase, "/") + "/ws?game=" + gameID
	return &Watcher{
		wsURL:                u,
		state:                StateDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		pingInterval:         30 * time.Second,
		stopCh:               make(chan struct{}),
	}
}

func (w *Watcher) SetHeaderProvider(h HeaderProvider) { w.headerProvider = h }

func (w *Watcher) Connect(ctx context.Context) error {
	w.stateM.RLock()
	busy := w.state == StateConnected || w.state == StateConnecting
	w.stateM.RUnlock()
	if busy {
		return nil
	}

	w.rootCtx, w.rootCancel = context.WithCancel(context.Background())
	w.setState(StateConnecting)
	if err := w.dial(ctx); err != nil {
		w.setState(StateFailed)
		w.scheduleReconnect()
		return err
	}
	return nil
}

func (w *Watcher) dial(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, w.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      w.buildHeaders(),
	})
	if err != nil {
		return err
	}
	w.connM.Lock()
	w.conn = conn
	w.connM.Unlock()
	w.setState(StateConnected)

	w.wg.Add(2)
	go w.listen(conn)
	go w.pingLoop(conn)
	return nil
}

func (w *Watcher) listen(conn *websocket.Conn) {
	defer w.wg.Done()
	for {
		var msg chessdto.WatchMessage
		if err := wsjson.Read(w.rootCtx, conn, &msg); err != nil {
			if w.isStopping() {
				return
			}
			obslog.L().Warn("watch_read_error", zap.String("url", w.wsURL), zap.Error(err))
			w.setState(StateDisconnected)
			_ = w.closeConn(conn, websocket.StatusGoingAway, "reconnect")
			w.scheduleReconnect()
			return
		}

		w.cbM.RLock()
		callbacks := make([]callbackEntry, len(w.msgCbs))
		copy(callbacks, w.msgCbs)
		w.cbM.RUnlock()
		for _, entry := range callbacks {
			entry.callback(&msg)
		}
	}
}

func (w *Watcher) pingLoop(conn *websocket.Conn) {
	defer w.wg.Done()
	t := time.NewTicker(w.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-w.stopCh:
			return
		case <-w.rootCtx.Done():
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(w.rootCtx, 3*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			if failures >= 2 {
				// listen notices the closed connection and reconnects
				_ = w.closeConn(conn, websocket.StatusGoingAway, "ping failure")
				return
			}
		}
	}
}

func (w *Watcher) scheduleReconnect() {
	if w.maxReconnectAttempts <= 0 || w.isStopping() {
		return
	}
	w.setState(StateReconnecting)

	go func() {
		for attempt := 1; attempt <= w.maxReconnectAttempts; attempt++ {
			select {
			case <-w.stopCh:
				return
			case <-time.After(backoffDuration(attempt)):
			}
			if err := w.dial(w.rootCtx); err == nil {
				return
			}
		}
		w.setState(StateFailed)
	}()
}

func (w *Watcher) OnUpdate(cb UpdateCallback) int {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	w.nextID++
	w.msgCbs = append(w.msgCbs, callbackEntry{id: w.nextID, callback: cb})
	return w.nextID
}

func (w *Watcher) RemoveUpdateCallback(id int) {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	for i, cb := range w.msgCbs {
		if cb.id == id {
			w.msgCbs = append(w.msgCbs[:i], w.msgCbs[i+1:]...)
			break
		}
	}
}

func (w *Watcher) OnStateChange(cb StateCallback) int {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	w.nextID++
	w.stateCbs = append(w.stateCbs, stateCallbackEntry{id: w.nextID, callback: cb})
	return w.nextID
}

func (w *Watcher) State() State {
	w.stateM.RLock()
	defer w.stateM.RUnlock()
	return w.state
}

func (w *Watcher) setState(state State) {
	w.stateM.Lock()
	w.state = state
	w.stateM.Unlock()

	w.cbM.RLock()
	callbacks := make([]stateCallbackEntry, len(w.stateCbs))
	copy(callbacks, w.stateCbs)
	w.cbM.RUnlock()
	for _, entry := range callbacks {
		entry.callback(state)
	}
}

func (w *Watcher) Close(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.connM.Lock()
	conn := w.conn
	w.connM.Unlock()
	if conn != nil {
		_ = w.closeConn(conn, websocket.StatusNormalClosure, "close")
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		if w.rootCancel != nil {
			w.rootCancel()
		}
		w.setState(StateDisconnected)
		return nil
	}
}

func (w *Watcher) closeConn(conn *websocket.Conn, code websocket.StatusCode, reason string) error {
	w.connM.Lock()
	if w.conn == conn {
		w.conn = nil
	}
	w.connM.Unlock()
	err := conn.Close(code, reason)
	var ce websocket.CloseError
	if errors.As(err, &ce) {
		return nil
	}
	return err
}

func (w *Watcher) isStopping() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

func (w *Watcher) buildHeaders() http.Header {
	hdr := http.Header{}
	if w.headerProvider == nil {
		return hdr
	}
	for k, v := range w.headerProvider() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		hdr.Set(k, v)
	}
	return hdr
}
