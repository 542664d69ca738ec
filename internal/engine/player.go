package engine

// Direction is the way a player's pawns advance.
type Direction int

const (
	North Direction = iota // toward higher rows
	South                  // toward lower rows
)

func (d Direction) String() string {
	if d == North {
		return "north"
	}
	return "south"
}

// Step is the row delta of a single forward move.
func (d Direction) Step() int {
	if d == North {
		return 1
	}
	return -1
}

// Player is one side of a game. Two instances exist per Game and are
// compared by identity. Name and facing are fixed once the game exists.
type Player struct {
	name   string
	facing Direction
}

// NewPlayer is for setting up boards outside a Game, e.g. in tests.
func NewPlayer(name string, facing Direction) *Player {
	return &Player{name: name, facing: facing}
}

func (p *Player) Name() string { return p.name }
func (p *Player) Facing() Direction { return p.facing }

func (p *Player) String() string {
	if p == nil {
		return "<nil>"
	}
	if p.name != "" {
		return p.name
	}
	return p.facing.String()
}
