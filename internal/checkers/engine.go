package checkers

// Engine owns one board and the turn state for a single game session.
// It is not safe for concurrent use; callers serialize access per game.
type Engine struct {
	board        *Board
	startingSide Side
	turn         Side
	selected     *Square
	pendingChain bool
	over         bool
	winner       Side
}

// Option configures a new engine.
type Option func(*Engine)

// WithStartingSide overrides the side that moves first (default Red).
func WithStartingSide(side Side) Option {
	return func(e *Engine) {
		if side.Valid() {
			e.startingSide = side
		}
	}
}

// NewEngine returns an engine holding the standard initial position.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{startingSide: SideRed}
	for _, opt := range opts {
		opt(e)
	}
	e.board = NewBoard()
	e.turn = e.startingSide
	return e
}

// Reset restores the initial position, discarding the game in progress.
func (e *Engine) Reset() {
	e.board = NewBoard()
	e.turn = e.startingSide
	e.selected = nil
	e.pendingChain = false
	e.over = false
	e.winner = ""
}

// Board exposes the grid for rendering. Callers must not mutate it.
func (e *Engine) Board() *Board { return e.board }

// Turn returns the side to move.
func (e *Engine) Turn() Side { return e.turn }

// Selected returns the currently selected square, if any.
func (e *Engine) Selected() (Square, bool) {
	if e.selected == nil {
		return Square{}, false
	}
	return *e.selected, true
}

// PendingChain reports whether the side to move is mid multi-capture.
func (e *Engine) PendingChain() bool { return e.pendingChain }

// GameOver reports whether a terminal condition has been reached.
func (e *Engine) GameOver() bool { return e.over }

// Winner returns the winning side once the game is over.
func (e *Engine) Winner() (Side, bool) {
	if !e.over {
		return "", false
	}
	return e.winner, true
}

// LegalMoves returns the playable moves for the piece at sq without
// mutating any state. It is empty once the game is over, and empty for
// any square other than the pinned one during a capture chain.
func (e *Engine) LegalMoves(sq Square) []Move {
	if e.over {
		return nil
	}
	p := e.board.Get(sq)
	if p == nil || p.Side != e.turn {
		return nil
	}
	if e.pendingChain && (e.selected == nil || *e.selected != sq) {
		return nil
	}
	return LegalMoves(e.board, sq)
}

// ChoosePiece selects the piece the side to move intends to play.
// Selection is rejected for empty squares, enemy pieces, and any square
// other than the pinned one while a capture chain is pending.
func (e *Engine) ChoosePiece(sq Square) error {
	if e.over {
		return ErrGameOver
	}
	p := e.board.Get(sq)
	if p == nil {
		return ErrEmptySquare
	}
	if p.Side != e.turn {
		return ErrWrongSide
	}
	if e.pendingChain && (e.selected == nil || *e.selected != sq) {
		return ErrChainLocked
	}
	sel := sq
	e.selected = &sel
	return nil
}

// ApplyMove plays the selected piece to the given destination. The move
// commits fully (relocation, capture removal, promotion, turn
// bookkeeping) or not at all.
//
// Promotion always ends the turn, even when the landing square offers
// further captures. Without promotion, a capture that can continue from
// the landing square keeps the turn with the same piece pinned;
// otherwise the side switches and termination is evaluated.
func (e *Engine) ApplyMove(to Square) (Outcome, error) {
	if e.over {
		return Outcome{}, ErrGameOver
	}
	if e.selected == nil {
		return Outcome{}, ErrNoSelection
	}
	from := *e.selected
	var chosen *Move
	for _, mv := range LegalMoves(e.board, from) {
		if mv.To == to {
			m := mv
			chosen = &m
			break
		}
	}
	if chosen == nil {
		return Outcome{}, ErrIllegalDestination
	}

	p := e.board.Get(from)
	e.board.Set(from, nil)
	e.board.Set(to, p)

	out := Outcome{}
	if chosen.Captured != nil {
		e.board.Set(*chosen.Captured, nil)
		out.Captured = true
	}
	if !p.King && to.Row == promotionRow(p.Side) {
		p.King = true
		out.Promoted = true
	}

	if !out.Promoted && out.Captured && len(CaptureMoves(e.board, to)) > 0 {
		landed := to
		e.selected = &landed
		e.pendingChain = true
		return out, nil
	}

	e.selected = nil
	e.pendingChain = false
	e.turn = e.turn.Opponent()
	out.TurnEnded = true

	e.evaluateTermination()
	out.GameOver = e.over
	out.Winner = e.winner
	return out, nil
}

// evaluateTermination runs after a completed turn: the new side to move
// loses when it has no pieces or no legal move.
func (e *Engine) evaluateTermination() {
	if e.board.Count(e.turn) == 0 {
		e.over = true
		e.winner = e.turn.Opponent()
		return
	}
	if !sideHasMove(e.board, e.turn) {
		e.over = true
		e.winner = e.turn.Opponent()
	}
}
