package checkers

import "fmt"

// Snapshot is the JSON-serializable form of an engine, used by the host
// to persist live games. Grid rows use one rune per square: '.' empty,
// 'r'/'b' men, 'R'/'B' kings.
type Snapshot struct {
	Grid         []string `json:"grid"`
	StartingSide Side     `json:"starting_side"`
	Turn         Side     `json:"turn"`
	Selected     *Square  `json:"selected,omitempty"`
	PendingChain bool     `json:"pending_chain"`
	Over         bool     `json:"over"`
	Winner       Side     `json:"winner,omitempty"`
}

// Snapshot captures the full engine state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Grid:         make([]string, BoardSize),
		StartingSide: e.startingSide,
		Turn:         e.turn,
		PendingChain: e.pendingChain,
		Over:         e.over,
		Winner:       e.winner,
	}
	if e.selected != nil {
		sel := *e.selected
		s.Selected = &sel
	}
	for row := 0; row < BoardSize; row++ {
		line := make([]byte, BoardSize)
		for col := 0; col < BoardSize; col++ {
			line[col] = pieceRune(e.board.Get(Square{Row: row, Col: col}))
		}
		s.Grid[row] = string(line)
	}
	return s
}

// Restore rebuilds an engine from a snapshot.
func Restore(s Snapshot) (*Engine, error) {
	if len(s.Grid) != BoardSize {
		return nil, fmt.Errorf("checkers: snapshot has %d rows, want %d", len(s.Grid), BoardSize)
	}
	if !s.Turn.Valid() {
		return nil, fmt.Errorf("checkers: snapshot has invalid turn %q", s.Turn)
	}
	e := &Engine{
		board:        EmptyBoard(),
		startingSide: s.StartingSide,
		turn:         s.Turn,
		pendingChain: s.PendingChain,
		over:         s.Over,
		winner:       s.Winner,
	}
	if !e.startingSide.Valid() {
		e.startingSide = SideRed
	}
	if s.Selected != nil {
		sel := *s.Selected
		e.selected = &sel
	}
	for row, line := range s.Grid {
		if len(line) != BoardSize {
			return nil, fmt.Errorf("checkers: snapshot row %d has %d squares, want %d", row, len(line), BoardSize)
		}
		for col := 0; col < BoardSize; col++ {
			p, err := parsePieceRune(line[col])
			if err != nil {
				return nil, fmt.Errorf("checkers: snapshot row %d col %d: %w", row, col, err)
			}
			e.board.Set(Square{Row: row, Col: col}, p)
		}
	}
	return e, nil
}

func pieceRune(p *Piece) byte {
	switch {
	case p == nil:
		return '.'
	case p.Side == SideRed && p.King:
		return 'R'
	case p.Side == SideRed:
		return 'r'
	case p.King:
		return 'B'
	default:
		return 'b'
	}
}

func parsePieceRune(c byte) (*Piece, error) {
	switch c {
	case '.':
		return nil, nil
	case 'r':
		return &Piece{Side: SideRed}, nil
	case 'R':
		return &Piece{Side: SideRed, King: true}, nil
	case 'b':
		return &Piece{Side: SideBlack}, nil
	case 'B':
		return &Piece{Side: SideBlack, King: true}, nil
	default:
		return nil, fmt.Errorf("unknown piece rune %q", c)
	}
}
