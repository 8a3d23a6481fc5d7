package checkers

// BoardSize is the edge length of the grid.
const BoardSize = 8

// PiecesPerSide is the piece count each player starts with.
const PiecesPerSide = 12

// Board is the 8x8 grid. It is a storage primitive with no rules
// knowledge: moves mutate it only through Get/Set.
type Board struct {
	grid [BoardSize][BoardSize]*Piece
}

// NewBoard returns a board populated with the standard initial layout:
// Black on rows 0-2, Red on rows 5-7, dark squares only.
func NewBoard() *Board {
	b := &Board{}
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			sq := Square{Row: row, Col: col}
			if !sq.Dark() {
				continue
			}
			switch {
			case row < 3:
				b.grid[row][col] = &Piece{Side: SideBlack}
			case row > 4:
				b.grid[row][col] = &Piece{Side: SideRed}
			}
		}
	}
	return b
}

// EmptyBoard returns a board with no pieces, for composed positions.
func EmptyBoard() *Board { return &Board{} }

// Get returns the piece at sq, or nil when the square is empty or off-board.
func (b *Board) Get(sq Square) *Piece {
	if !sq.OnBoard() {
		return nil
	}
	return b.grid[sq.Row][sq.Col]
}

// Set places p at sq (nil clears the square). Off-board squares are ignored.
func (b *Board) Set(sq Square, p *Piece) {
	if !sq.OnBoard() {
		return
	}
	b.grid[sq.Row][sq.Col] = p
}

// IsOnBoard reports whether sq is a valid coordinate.
func (b *Board) IsOnBoard(sq Square) bool { return sq.OnBoard() }

// Count returns the number of pieces of the given side.
func (b *Board) Count(side Side) int {
	n := 0
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if p := b.grid[row][col]; p != nil && p.Side == side {
				n++
			}
		}
	}
	return n
}

// Squares returns the occupied squares of the given side in row-major order.
func (b *Board) Squares(side Side) []Square {
	var out []Square
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if p := b.grid[row][col]; p != nil && p.Side == side {
				out = append(out, Square{Row: row, Col: col})
			}
		}
	}
	return out
}
