package checkers

// Side identifies one of the two players.
type Side string

const (
	SideRed   Side = "red"
	SideBlack Side = "black"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideRed {
		return SideBlack
	}
	return SideRed
}

// Valid reports whether s is one of the two playable sides.
func (s Side) Valid() bool { return s == SideRed || s == SideBlack }

// Square is a board coordinate. Row 0 is Black's back row, row 7 is Red's.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// OnBoard reports whether both coordinates are in [0,8).
func (sq Square) OnBoard() bool {
	return sq.Row >= 0 && sq.Row < BoardSize && sq.Col >= 0 && sq.Col < BoardSize
}

// Dark reports whether the square is playable. The initial layout puts
// pieces only on dark squares; diagonal steps preserve the parity, so it
// is never re-checked afterwards.
func (sq Square) Dark() bool { return (sq.Row+sq.Col)%2 == 1 }

// Piece is a single checker. King flips to true exactly once, on promotion.
type Piece struct {
	Side Side `json:"side"`
	King bool `json:"king"`
}

// Move is one atomic relocation, optionally removing one enemy piece.
// Moves are computed fresh per query and never persisted.
type Move struct {
	From     Square  `json:"from"`
	To       Square  `json:"to"`
	Captured *Square `json:"captured,omitempty"`
}

// Outcome describes the effect of an applied move.
type Outcome struct {
	Captured  bool `json:"captured"`
	Promoted  bool `json:"promoted"`
	TurnEnded bool `json:"turn_ended"`
	GameOver  bool `json:"game_over"`
	// Winner is set only when GameOver is true.
	Winner Side `json:"winner,omitempty"`
}
