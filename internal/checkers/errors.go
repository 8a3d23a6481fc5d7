package checkers

import "errors"

// Rejected operations. The engine never mutates state when returning one
// of these; the host decides how (or whether) to surface them.
var (
	ErrGameOver           = errors.New("checkers: game is over")
	ErrEmptySquare        = errors.New("checkers: no piece on square")
	ErrWrongSide          = errors.New("checkers: piece belongs to the other side")
	ErrChainLocked        = errors.New("checkers: capture chain in progress, selection is locked")
	ErrNoSelection        = errors.New("checkers: no piece selected")
	ErrIllegalDestination = errors.New("checkers: destination is not a legal move")
)
