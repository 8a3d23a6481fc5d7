package checkersdto

import "time"

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
