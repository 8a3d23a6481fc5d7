package checkers

// Diagonal step offsets. Direction order is fixed so move lists are
// deterministic: up-left, up-right, down-left, down-right.
type delta struct{ dr, dc int }

var (
	kingDirs  = []delta{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	redDirs   = []delta{{-1, -1}, {-1, 1}}
	blackDirs = []delta{{1, -1}, {1, 1}}
)

func directions(p *Piece) []delta {
	if p.King {
		return kingDirs
	}
	if p.Side == SideRed {
		return redDirs
	}
	return blackDirs
}

func promotionRow(side Side) int {
	if side == SideRed {
		return 0
	}
	return BoardSize - 1
}

// SimpleMoves enumerates the non-capturing moves for the piece at sq.
// Men step one diagonal toward the opponent's back row; kings slide any
// number of empty squares in all four diagonals, stopping at the first
// occupied square or the board edge.
func SimpleMoves(b *Board, sq Square) []Move {
	p := b.Get(sq)
	if p == nil {
		return nil
	}
	var out []Move
	for _, d := range directions(p) {
		if !p.King {
			to := Square{Row: sq.Row + d.dr, Col: sq.Col + d.dc}
			if to.OnBoard() && b.Get(to) == nil {
				out = append(out, Move{From: sq, To: to})
			}
			continue
		}
		for step := 1; ; step++ {
			to := Square{Row: sq.Row + d.dr*step, Col: sq.Col + d.dc*step}
			if !to.OnBoard() || b.Get(to) != nil {
				break
			}
			out = append(out, Move{From: sq, To: to})
		}
	}
	return out
}

// CaptureMoves enumerates the capturing moves for the piece at sq. A man
// jumps an adjacent enemy into the empty square directly beyond. A king
// slides until the first occupied square; if that square holds an enemy,
// every empty square behind it up to the next obstruction is a landing
// option. Each direction yields at most one captured piece.
func CaptureMoves(b *Board, sq Square) []Move {
	p := b.Get(sq)
	if p == nil {
		return nil
	}
	var out []Move
	for _, d := range directions(p) {
		if !p.King {
			over := Square{Row: sq.Row + d.dr, Col: sq.Col + d.dc}
			to := Square{Row: sq.Row + d.dr*2, Col: sq.Col + d.dc*2}
			victim := b.Get(over)
			if victim == nil || victim.Side == p.Side {
				continue
			}
			if to.OnBoard() && b.Get(to) == nil {
				captured := over
				out = append(out, Move{From: sq, To: to, Captured: &captured})
			}
			continue
		}
		out = append(out, kingCaptures(b, p, sq, d)...)
	}
	return out
}

// kingCaptures scans one diagonal from sq for a long-range king capture.
func kingCaptures(b *Board, p *Piece, sq Square, d delta) []Move {
	var captured *Square
	var out []Move
	for step := 1; ; step++ {
		cur := Square{Row: sq.Row + d.dr*step, Col: sq.Col + d.dc*step}
		if !cur.OnBoard() {
			return out
		}
		occupant := b.Get(cur)
		if occupant == nil {
			if captured != nil {
				out = append(out, Move{From: sq, To: cur, Captured: captured})
			}
			continue
		}
		// First obstruction: own piece blocks, an enemy becomes the
		// capture candidate. A second obstruction ends the scan either way.
		if captured != nil || occupant.Side == p.Side {
			return out
		}
		c := cur
		captured = &c
	}
}

// SideCaptureMoves is the union of CaptureMoves over every piece of side.
// Non-empty means the side is obligated to capture this turn.
func SideCaptureMoves(b *Board, side Side) []Move {
	var out []Move
	for _, sq := range b.Squares(side) {
		out = append(out, CaptureMoves(b, sq)...)
	}
	return out
}

// LegalMoves returns the moves the piece at sq may actually play,
// honoring forced capture: when any piece of the same side can capture,
// only this piece's captures are returned (possibly none, forcing the
// player to pick a piece that can). Captures precede simple moves.
func LegalMoves(b *Board, sq Square) []Move {
	p := b.Get(sq)
	if p == nil {
		return nil
	}
	if len(SideCaptureMoves(b, p.Side)) > 0 {
		return CaptureMoves(b, sq)
	}
	moves := CaptureMoves(b, sq)
	return append(moves, SimpleMoves(b, sq)...)
}

// sideHasMove reports whether side has any legal move at all.
func sideHasMove(b *Board, side Side) bool {
	for _, sq := range b.Squares(side) {
		if len(CaptureMoves(b, sq)) > 0 || len(SimpleMoves(b, sq)) > 0 {
			return true
		}
	}
	return false
}
