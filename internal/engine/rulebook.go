package engine

type delta struct{ dc, dr int }

var (
	orthogonalRays = []delta{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	diagonalRays   = []delta{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
	allRays        = append(append([]delta{}, orthogonalRays...), diagonalRays...)
	knightJumps    = []delta{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

// LegalMoves computes the destinations p may move to on b. It is a pure
// function of the board; a piece that is not on the board has no moves.
func LegalMoves(b BoardView, p *Piece) FieldSet {
	if p == nil {
		return FieldSet{}
	}
	from, ok := b.FieldOf(p)
	if !ok {
		return FieldSet{}
	}
	switch p.Kind() {
	case Rook:
		return slide(b, p, from, orthogonalRays)
	case Bishop:
		return slide(b, p, from, diagonalRays)
	case Queen:
		return slide(b, p, from, allRays)
	case Knight:
		return jumps(b, p, from)
	case King:
		return kingSteps(b, p, from)
	case Pawn:
		return pawnMoves(b, p, from)
	}
	return FieldSet{}
}

// AttackSet is the union of the legal moves of every piece pl owns.
func AttackSet(b BoardView, pl *Player) FieldSet {
	out := FieldSet{}
	for _, occ := range b.Occupied() {
		if occ.Piece.Owner() != pl {
			continue
		}
		out.Union(LegalMoves(b, occ.Piece))
	}
	return out
}

// slide walks each ray until the edge, stopping before a friendly piece and
// on an enemy piece.
func slide(b BoardView, p *Piece, from Field, rays []delta) FieldSet {
	out := FieldSet{}
	for _, d := range rays {
		for f := from.Offset(d.dc, d.dr); b.Contains(f); f = f.Offset(d.dc, d.dr) {
			occupant, taken := b.PieceAt(f)
			if !taken {
				out.Add(f)
				continue
			}
			if !occupant.SameSide(p) {
				out.Add(f)
			}
			break
		}
	}
	return out
}

func jumps(b BoardView, p *Piece, from Field) FieldSet {
	return stepTargets(b, p, from, knightJumps)
}

func stepTargets(b BoardView, p *Piece, from Field, offsets []delta) FieldSet {
	out := FieldSet{}
	for _, d := range offsets {
		f := from.Offset(d.dc, d.dr)
		if !b.Contains(f) {
			continue
		}
		if occupant, taken := b.PieceAt(f); taken && occupant.SameSide(p) {
			continue
		}
		out.Add(f)
	}
	return out
}

// kingSteps excludes every field an opposing non-king piece can move to.
// Checks revealed by the king's own step are not detected.
func kingSteps(b BoardView, p *Piece, from Field) FieldSet {
	out := stepTargets(b, p, from, allRays)
	if out.Len() == 0 {
		return out
	}
	for _, occ := range b.Occupied() {
		enemy := occ.Piece
		if enemy.SameSide(p) || enemy.Kind() == King {
			continue
		}
		for f := range LegalMoves(b, enemy) {
			delete(out, f)
		}
	}
	return out
}

func pawnMoves(b BoardView, p *Piece, from Field) FieldSet {
	out := FieldSet{}
	step := p.Owner().Facing().Step()
	ahead := from.Offset(0, step)
	if !b.Contains(ahead) {
		return out
	}
	if _, taken := b.PieceAt(ahead); !taken {
		out.Add(ahead)
	}
	for _, dc := range []int{-1, 1} {
		f := from.Offset(dc, step)
		if !b.Contains(f) {
			continue
		}
		if occupant, taken := b.PieceAt(f); taken && !occupant.SameSide(p) {
			out.Add(f)
		}
	}
	return out
}
