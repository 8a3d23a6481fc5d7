package checkersdto

// SquareRef is a board coordinate as exposed to hosts.
type SquareRef struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// MoveRef is one legal destination for the current selection.
type MoveRef struct {
	From     SquareRef  `json:"from"`
	To       SquareRef  `json:"to"`
	Captured *SquareRef `json:"captured,omitempty"`
}

// SessionState is the host-facing view of a live match.
type SessionState struct {
	SessionUUID  string
	Turn         string
	Selected     *SquareRef
	PendingChain bool
	LegalMoves   []MoveRef
	RedCount     int
	BlackCount   int
	Plies        int
	BoardImage   []byte
	BoardText    string
	Over         bool
	Winner       string
}

// MoveResult reports the effect of one applied move.
type MoveResult struct {
	State     *SessionState
	Captured  bool
	Promoted  bool
	TurnEnded bool
	GameOver  bool
	Winner    string
	MatchID   int64
}
