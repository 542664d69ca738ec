package engine

import (
	"go.uber.org/zap"
)

// Move is a history record. Beaten is the piece captured by the move, kept
// so a rewind can restore it.
type Move struct {
	From   Field
	To     Field
	Beaten *Piece
}

// Option configures a Game at construction.
type Option func(*Game)

// WithPlayerNames overrides the default "Black"/"White" names.
func WithPlayerNames(first, second string) Option {
	return func(g *Game) {
		if first != "" {
			g.first.name = first
		}
		if second != "" {
			g.second.name = second
		}
	}
}

// WithLogger routes rejection and outcome logs to l.
func WithLogger(l *zap.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.log = l
		}
	}
}

// Game orchestrates the board, turn order, history and outcome. It is not
// safe for concurrent use.
type Game struct {
	board  *Board
	first  *Player
	second *Player
	status Status
	moves  []Move

	danger    map[*Player]bool
	captured  map[*Player][]*Piece
	listeners []func(Event)
	log       *zap.Logger
}

var backRank = [...]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewGame creates a game with both standard sets placed. The first player
// faces North on rows 0 and 1 and moves first.
func NewGame(width, height int, opts ...Option) (*Game, error) {
	g, err := NewEmptyGame(width, height, opts...)
	if err != nil {
		return nil, err
	}
	if err := g.setup(g.first, 0, 1); err != nil {
		return nil, err
	}
	if err := g.setup(g.second, height-1, height-2); err != nil {
		return nil, err
	}
	g.log.Debug("game_create",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.String("first", g.first.name),
		zap.String("second", g.second.name),
	)
	return g, nil
}

// NewEmptyGame creates a game with no pieces; use Place to set it up.
func NewEmptyGame(width, height int, opts ...Option) (*Game, error) {
	board, err := NewBoard(width, height)
	if err != nil {
		return nil, err
	}
	g := &Game{
		board:    board,
		first:    &Player{name: "Black", facing: North},
		second:   &Player{name: "White", facing: South},
		status:   FirstActive,
		danger:   make(map[*Player]bool, 2),
		captured: make(map[*Player][]*Piece, 2),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Game) setup(pl *Player, homeRow, pawnRow int) error {
	for col, kind := range backRank {
		if err := g.board.Place(NewPiece(kind, pl), Field{Column: col, Row: homeRow}); err != nil {
			return err
		}
		if err := g.board.Place(NewPiece(Pawn, pl), Field{Column: col, Row: pawnRow}); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers fn to receive every event after the mutating call
// that produced it has finished.
func (g *Game) Subscribe(fn func(Event)) {
	if fn != nil {
		g.listeners = append(g.listeners, fn)
	}
}

func (g *Game) publish(events []Event) []Event {
	for _, ev := range events {
		for _, fn := range g.listeners {
			fn(ev)
		}
	}
	return events
}

// Place puts a piece on the board during setup.
func (g *Game) Place(p *Piece, f Field) error { return g.board.Place(p, f) }

// Remove takes a piece off the board during setup.
func (g *Game) Remove(p *Piece) { g.board.Remove(p) }

// Move executes from->to if it is legal for the active side. Rejected moves
// are ignored and yield no events.
func (g *Game) Move(from, to Field) []Event {
	events, _ := g.TryMove(from, to)
	return events
}

// TryMove is Move with the rejection reason reported as a *RejectionError.
// The game is unchanged when an error is returned.
func (g *Game) TryMove(from, to Field) ([]Event, error) {
	if err := g.checkMove(from, to); err != nil {
		g.log.Debug("game_move_rejected",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Stringer("reason", ReasonOf(err)),
		)
		return nil, err
	}
	piece, _ := g.board.PieceAt(from)

	var events []Event
	record := Move{From: from, To: to}
	if target, ok := g.board.PieceAt(to); ok {
		g.board.Remove(target)
		g.captured[target.Owner()] = append(g.captured[target.Owner()], target)
		record.Beaten = target
		events = append(events, PieceBeaten{Piece: target})
	}
	g.moves = append(g.moves, record)

	g.board.Move(piece, to)
	events = append(events, PieceMoved{Piece: piece, To: to})

	if g.status == FirstActive {
		g.status = SecondActive
	} else {
		g.status = FirstActive
	}
	events = append(events, StatusUpdated{Status: g.status})
	events = append(events, g.evaluate()...)
	return g.publish(events), nil
}

func (g *Game) checkMove(from, to Field) error {
	if g.IsGameOver() {
		return reject(ReasonGameAlreadyOver, from, to)
	}
	piece, ok := g.board.PieceAt(from)
	if !ok {
		return reject(ReasonNoPieceAtSource, from, to)
	}
	if piece.Owner() != g.ActivePlayer() {
		return reject(ReasonNotYourTurn, from, to)
	}
	if !LegalMoves(g.board, piece).Has(to) {
		return reject(ReasonIllegalDestination, from, to)
	}
	return nil
}

// DetermineCurrentGameStatus re-evaluates king presence, danger flags and
// checkmate, returning the events it caused.
func (g *Game) DetermineCurrentGameStatus() []Event {
	return g.publish(g.evaluate())
}

func (g *Game) evaluate() []Event {
	firstKing := g.kingOf(g.first)
	if firstKing == nil {
		g.danger[g.first] = false
		return g.finish(SecondWon, "king_missing")
	}
	secondKing := g.kingOf(g.second)
	if secondKing == nil {
		g.danger[g.second] = false
		return g.finish(FirstWon, "king_missing")
	}

	events := g.evaluateKing(firstKing, g.second, FirstActive, SecondWon)
	if !g.IsGameOver() {
		events = append(events, g.evaluateKing(secondKing, g.first, SecondActive, FirstWon)...)
	}
	return events
}

// evaluateKing checks king against the attack set of opponent. The king's
// side loses only when it is in danger, cannot step out of the attack set
// and is the side to move.
func (g *Game) evaluateKing(king *Piece, opponent *Player, active, lost Status) []Event {
	var events []Event
	at, _ := g.board.FieldOf(king)
	attacks := AttackSet(g.board, opponent)

	inDanger := attacks.Has(at)
	if inDanger != g.danger[king.Owner()] {
		g.danger[king.Owner()] = inDanger
		events = append(events, KingInDanger{King: king, InDanger: inDanger})
	}
	if inDanger && g.status == active && LegalMoves(g.board, king).SubsetOf(attacks) {
		events = append(events, g.finish(lost, "checkmate")...)
	}
	return events
}

func (g *Game) finish(s Status, cause string) []Event {
	if g.status == s {
		return nil
	}
	g.status = s
	g.log.Info("game_finished",
		zap.Stringer("status", s),
		zap.String("cause", cause),
		zap.Int("moves", len(g.moves)),
	)
	return []Event{StatusUpdated{Status: s}}
}

func (g *Game) kingOf(pl *Player) *Piece {
	for _, occ := range g.board.Occupied() {
		if occ.Piece.Kind() == King && occ.Piece.Owner() == pl {
			return occ.Piece
		}
	}
	return nil
}

// Rewind undoes move if it is the most recent one. Anything else is
// ignored.
func (g *Game) Rewind(m Move) []Event {
	events, _ := g.TryRewind(m)
	return events
}

// RewindLast undoes the most recent move, if any.
func (g *Game) RewindLast() []Event {
	if len(g.moves) == 0 {
		return nil
	}
	return g.Rewind(g.moves[len(g.moves)-1])
}

// TryRewind is Rewind with ErrNotLastMove reported when m is not the last
// recorded move.
func (g *Game) TryRewind(m Move) ([]Event, error) {
	if len(g.moves) == 0 || g.moves[len(g.moves)-1] != m {
		return nil, reject(ReasonNotLastMove, m.From, m.To)
	}
	piece, ok := g.board.PieceAt(m.To)
	if !ok {
		return nil, reject(ReasonNoPieceAtSource, m.To, m.From)
	}

	var events []Event
	g.board.Move(piece, m.From)
	events = append(events, PieceMoved{Piece: piece, To: m.From, Rewind: true})
	g.moves = g.moves[:len(g.moves)-1]

	if m.Beaten != nil {
		if err := g.board.Place(m.Beaten, m.To); err == nil {
			g.uncapture(m.Beaten)
			events = append(events, PiecePlaced{Piece: m.Beaten, Field: m.To})
		}
	}

	if piece.Owner() == g.first {
		g.status = FirstActive
	} else {
		g.status = SecondActive
	}
	events = append(events, StatusUpdated{Status: g.status})
	g.log.Debug("game_rewind",
		zap.Stringer("from", m.From),
		zap.Stringer("to", m.To),
		zap.Stringer("status", g.status),
	)
	events = append(events, g.evaluate()...)
	return g.publish(events), nil
}

func (g *Game) uncapture(p *Piece) {
	list := g.captured[p.Owner()]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i] == p {
			g.captured[p.Owner()] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// LegalMoves returns the destinations of p on the current board.
func (g *Game) LegalMoves(p *Piece) FieldSet { return LegalMoves(g.board, p) }

func (g *Game) Status() Status { return g.status }
func (g *Game) IsGameOver() bool { return g.status.IsTerminal() }
func (g *Game) Board() BoardView { return g.board }
func (g *Game) FirstPlayer() *Player { return g.first }
func (g *Game) SecondPlayer() *Player { return g.second }

// Moves returns a copy of the move history, oldest first.
func (g *Game) Moves() []Move {
	out := make([]Move, len(g.moves))
	copy(out, g.moves)
	return out
}

// ActivePlayer is the side to move, or nil once the game is over.
func (g *Game) ActivePlayer() *Player {
	switch g.status {
	case FirstActive:
		return g.first
	case SecondActive:
		return g.second
	}
	return nil
}

// KingInDanger reports the last evaluated danger flag of pl's king.
func (g *Game) KingInDanger(pl *Player) bool { return g.danger[pl] }

// Captured lists pl's pieces that were beaten and not restored, in capture
// order.
func (g *Game) Captured(pl *Player) []*Piece {
	out := make([]*Piece, len(g.captured[pl]))
	copy(out, g.captured[pl])
	return out
}
