package match

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/prismvale/checkersd/internal/domain"
)

var ErrDuplicateMatch = errors.New("checkers match already recorded")

// Repository persists finished matches and player profiles.
type Repository interface {
	InsertMatch(ctx context.Context, rec *domain.MatchRecord) (int64, error)
	GetRecentMatches(ctx context.Context, playerHash string, limit int) ([]*domain.MatchRecord, error)
	GetMatch(ctx context.Context, id int64) (*domain.MatchRecord, error)
	GetProfile(ctx context.Context, playerHash, roomHash string) (*domain.PlayerProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.PlayerProfile) error
}

type repository struct {
	db *sql.DB
}

// NewRepository opens a Postgres-backed repository from a DATABASE_URL.
func NewRepository(databaseURL string) (Repository, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &repository{db: db}, nil
}

func (r *repository) InsertMatch(ctx context.Context, rec *domain.MatchRecord) (int64, error) {
	if rec == nil {
		return 0, fmt.Errorf("nil match record payload")
	}

	const query = `
		INSERT INTO checkers_matches (
			match_uuid,
			room_hash,
			red_hash,
			red_name,
			black_hash,
			black_name,
			result,
			result_method,
			plies,
			started_at,
			ended_at,
			duration_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (match_uuid) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err := r.db.QueryRowContext(
		ctx,
		query,
		rec.MatchUUID,
		rec.RoomHash,
		rec.RedHash,
		rec.RedName,
		rec.BlackHash,
		rec.BlackName,
		rec.Result,
		rec.ResultMethod,
		rec.Plies,
		rec.StartedAt,
		rec.EndedAt,
		rec.Duration.Milliseconds(),
	).Scan(&id)
	if err == sql.ErrNoRows || (err == nil && !id.Valid) {
		return 0, ErrDuplicateMatch
	}
	if err != nil {
		return 0, fmt.Errorf("insert checkers match: %w", err)
	}
	return id.Int64, nil
}

const matchColumns = `
	id,
	match_uuid,
	room_hash,
	red_hash,
	red_name,
	black_hash,
	black_name,
	result,
	result_method,
	plies,
	started_at,
	ended_at,
	duration_ms`

func scanMatch(scan func(dest ...any) error) (*domain.MatchRecord, error) {
	var (
		rec        domain.MatchRecord
		durationMS sql.NullInt64
	)
	if err := scan(
		&rec.ID,
		&rec.MatchUUID,
		&rec.RoomHash,
		&rec.RedHash,
		&rec.RedName,
		&rec.BlackHash,
		&rec.BlackName,
		&rec.Result,
		&rec.ResultMethod,
		&rec.Plies,
		&rec.StartedAt,
		&rec.EndedAt,
		&durationMS,
	); err != nil {
		return nil, err
	}
	if durationMS.Valid {
		rec.Duration = time.Duration(durationMS.Int64) * time.Millisecond
	}
	return &rec, nil
}

func (r *repository) GetRecentMatches(ctx context.Context, playerHash string, limit int) ([]*domain.MatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT` + matchColumns + `
		FROM checkers_matches
		WHERE red_hash = $1 OR black_hash = $1
		ORDER BY ended_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, playerHash, limit)
	if err != nil {
		return nil, fmt.Errorf("select checkers matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*domain.MatchRecord, 0, limit)
	for rows.Next() {
		rec, err := scanMatch(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan checkers match: %w", err)
		}
		matches = append(matches, rec)
	}
	return matches, rows.Err()
}

func (r *repository) GetMatch(ctx context.Context, id int64) (*domain.MatchRecord, error) {
	query := `
		SELECT` + matchColumns + `
		FROM checkers_matches
		WHERE id = $1`

	rec, err := scanMatch(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select checkers match: %w", err)
	}
	return rec, nil
}

func (r *repository) GetProfile(ctx context.Context, playerHash, roomHash string) (*domain.PlayerProfile, error) {
	const query = `
		SELECT
			player_hash,
			room_hash,
			display_name,
			games_played,
			wins,
			losses,
			draws,
			streak,
			streak_type,
			last_played_at,
			updated_at,
			created_at
		FROM checkers_profiles
		WHERE player_hash = $1 AND room_hash = $2
		LIMIT 1`

	var profile domain.PlayerProfile
	err := r.db.QueryRowContext(ctx, query, playerHash, roomHash).Scan(
		&profile.PlayerHash,
		&profile.RoomHash,
		&profile.DisplayName,
		&profile.GamesPlayed,
		&profile.Wins,
		&profile.Losses,
		&profile.Draws,
		&profile.Streak,
		&profile.StreakType,
		&profile.LastPlayedAt,
		&profile.UpdatedAt,
		&profile.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select checkers profile: %w", err)
	}
	return &profile, nil
}

func (r *repository) UpsertProfile(ctx context.Context, profile *domain.PlayerProfile) error {
	if profile == nil {
		return fmt.Errorf("nil checkers profile payload")
	}
	const query = `
		INSERT INTO checkers_profiles (
			player_hash,
			room_hash,
			display_name,
			games_played,
			wins,
			losses,
			draws,
			streak,
			streak_type,
			last_played_at,
			updated_at,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (player_hash, room_hash)
		DO UPDATE SET
			display_name = EXCLUDED.display_name,
			games_played = EXCLUDED.games_played,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			draws = EXCLUDED.draws,
			streak = EXCLUDED.streak,
			streak_type = EXCLUDED.streak_type,
			last_played_at = EXCLUDED.last_played_at,
			updated_at = NOW()`

	_, err := r.db.ExecContext(
		ctx,
		query,
		profile.PlayerHash,
		profile.RoomHash,
		profile.DisplayName,
		profile.GamesPlayed,
		profile.Wins,
		profile.Losses,
		profile.Draws,
		profile.Streak,
		profile.StreakType,
		profile.LastPlayedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert checkers profile: %w", err)
	}
	return nil
}
