package domain

import "time"

// MatchRecord is a finished checkers match as persisted by the host.
type MatchRecord struct {
	ID           int64
	MatchUUID    string
	RoomHash     string
	RedHash      string
	RedName      string
	BlackHash    string
	BlackName    string
	Result       string // "red" | "black"
	ResultMethod string // "elimination" | "blockade" | "resignation"
	Plies        int
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
}

// PlayerProfile carries per-player session statistics. Draws exists
// because the storage schema reserves a draw hook; the engine currently
// never produces one.
type PlayerProfile struct {
	PlayerHash   string
	RoomHash     string
	DisplayName  string
	GamesPlayed  int
	Wins         int
	Losses       int
	Draws        int
	Streak       int
	StreakType   string
	LastPlayedAt time.Time
	UpdatedAt    time.Time
	CreatedAt    time.Time
}
