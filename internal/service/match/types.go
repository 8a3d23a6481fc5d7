package match

import (
	"errors"
	"time"

	"github.com/prismvale/checkersd/internal/checkers"
)

var (
	ErrSessionNotFound   = errors.New("checkers session not found")
	ErrSessionInProgress = errors.New("checkers session already in progress")
	ErrSessionConflict   = errors.New("concurrent command detected, try again")
	ErrMatchNotFound     = errors.New("checkers match not found")
	ErrProfileNotFound   = errors.New("checkers profile not found")
	ErrRoomFull          = errors.New("checkers room has too many open matches")
)

// SessionMeta identifies one local two-player match. SessionID is
// host-scoped (the CLI uses one per process, a chat host would use
// room-scoped IDs).
type SessionMeta struct {
	SessionID string
	Room      string
	RedName   string
	BlackName string
}

// Config tunes the service.
type Config struct {
	StartingSide checkers.Side
	SessionTTL   time.Duration
	HistoryLimit int
	// MaxOpenMatches caps live sessions per room; 0 means unlimited.
	MaxOpenMatches int
}

// sessionPayload is the JSON document stored in Redis per live match.
type sessionPayload struct {
	SessionUUID string            `json:"session_uuid"`
	RoomHash    string            `json:"room_hash"`
	RedHash     string            `json:"red_hash"`
	RedName     string            `json:"red_name"`
	BlackHash   string            `json:"black_hash"`
	BlackName   string            `json:"black_name"`
	Engine      checkers.Snapshot `json:"engine"`
	Plies       int               `json:"plies"`
	StartedAt   time.Time         `json:"started_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
