package match

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prismvale/checkersd/internal/checkers"
	"github.com/prismvale/checkersd/internal/domain"
	"github.com/prismvale/checkersd/pkg/checkersdto"
)

const (
	maxHistoryLimit = 50
	playerNameLimit = 24
)

// BoardRenderer turns a board position into a PNG image.
type BoardRenderer interface {
	RenderPNG(ctx context.Context, board *checkers.Board, opts RenderOptions) ([]byte, error)
}

// Service runs checkers matches: one Redis-backed session per room,
// rules enforced by the engine, finished matches recorded through the
// repository.
type Service struct {
	store    *Store
	repo     Repository
	renderer BoardRenderer
	cfg      Config
	logger   *zap.Logger
}

type sessionIdentity struct {
	SessionID string
	RoomHash  string
	RedHash   string
	BlackHash string
}

func NewService(store *Store, repo Repository, renderer BoardRenderer, cfg Config, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("match repository is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be greater than 0")
	}
	if !cfg.StartingSide.Valid() {
		cfg.StartingSide = checkers.SideRed
	}
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > maxHistoryLimit {
		cfg.HistoryLimit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		repo:     repo,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Start creates a fresh match for the session. When a live session
// already exists its current state is returned together with
// ErrSessionInProgress so the host can resume instead.
func (s *Service) Start(ctx context.Context, meta SessionMeta) (*checkersdto.SessionState, error) {
	identity := deriveIdentity(meta)

	existing, err := s.store.Load(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		engine, restoreErr := checkers.Restore(existing.Engine)
		if restoreErr != nil {
			return nil, restoreErr
		}
		state := s.stateFrom(ctx, existing, engine)
		return state, ErrSessionInProgress
	}

	if s.cfg.MaxOpenMatches > 0 {
		open, idxErr := s.store.SessionsByRoom(ctx, identity.RoomHash)
		if idxErr != nil {
			return nil, idxErr
		}
		if len(open) >= s.cfg.MaxOpenMatches {
			return nil, ErrRoomFull
		}
	}

	engine := checkers.NewEngine(checkers.WithStartingSide(s.cfg.StartingSide))
	now := time.Now()
	payload := &sessionPayload{
		SessionUUID: uuid.NewString(),
		RoomHash:    identity.RoomHash,
		RedHash:     identity.RedHash,
		RedName:     normalizePlayerName(meta.RedName, "Red"),
		BlackHash:   identity.BlackHash,
		BlackName:   normalizePlayerName(meta.BlackName, "Black"),
		Engine:      engine.Snapshot(),
		Plies:       0,
		StartedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Save(ctx, identity.SessionID, payload); err != nil {
		return nil, err
	}

	s.logger.Info("match start",
		zap.String("session_uuid", payload.SessionUUID),
		zap.String("room_hash", identity.RoomHash),
		zap.String("starting_side", string(s.cfg.StartingSide)),
	)
	return s.stateFrom(ctx, payload, engine), nil
}

// Status returns the current state of the live session.
func (s *Service) Status(ctx context.Context, meta SessionMeta) (*checkersdto.SessionState, error) {
	identity := deriveIdentity(meta)
	payload, engine, err := s.loadEngine(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	return s.stateFrom(ctx, payload, engine), nil
}

// Select picks the piece the side to move intends to play and persists
// the selection, so a follow-up Play can name only the destination.
func (s *Service) Select(ctx context.Context, meta SessionMeta, sq checkersdto.SquareRef) (*checkersdto.SessionState, error) {
	identity := deriveIdentity(meta)
	payload, _, err := s.loadEngine(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}

	var engine *checkers.Engine
	updated, err := s.store.update(ctx, identity.SessionID, payload.Plies, func(p *sessionPayload) error {
		e, restoreErr := checkers.Restore(p.Engine)
		if restoreErr != nil {
			return restoreErr
		}
		if chooseErr := e.ChoosePiece(squareFromRef(sq)); chooseErr != nil {
			return chooseErr
		}
		p.Engine = e.Snapshot()
		engine = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.stateFrom(ctx, updated, engine), nil
}

// Play moves the selected piece to the destination. On game over the
// match is recorded, both profiles are updated, and the session is
// deleted.
func (s *Service) Play(ctx context.Context, meta SessionMeta, to checkersdto.SquareRef) (*checkersdto.MoveResult, error) {
	identity := deriveIdentity(meta)
	payload, _, err := s.loadEngine(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}

	var (
		engine  *checkers.Engine
		outcome checkers.Outcome
		mover   checkers.Side
	)
	updated, err := s.store.update(ctx, identity.SessionID, payload.Plies, func(p *sessionPayload) error {
		e, restoreErr := checkers.Restore(p.Engine)
		if restoreErr != nil {
			return restoreErr
		}
		mover = e.Turn()
		out, applyErr := e.ApplyMove(squareFromRef(to))
		if applyErr != nil {
			return applyErr
		}
		p.Engine = e.Snapshot()
		p.Plies++
		engine = e
		outcome = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match move",
		zap.String("session_uuid", updated.SessionUUID),
		zap.String("side", string(mover)),
		zap.Int("ply", updated.Plies),
		zap.Bool("captured", outcome.Captured),
		zap.Bool("promoted", outcome.Promoted),
		zap.Bool("chain", !outcome.TurnEnded),
	)

	result := &checkersdto.MoveResult{
		State:     s.stateFrom(ctx, updated, engine),
		Captured:  outcome.Captured,
		Promoted:  outcome.Promoted,
		TurnEnded: outcome.TurnEnded,
		GameOver:  outcome.GameOver,
		Winner:    string(outcome.Winner),
	}

	if outcome.GameOver {
		method := "blockade"
		if engine.Board().Count(outcome.Winner.Opponent()) == 0 {
			method = "elimination"
		}
		matchID, persistErr := s.persistResult(ctx, identity, updated, outcome.Winner, method)
		if persistErr != nil {
			return nil, persistErr
		}
		result.MatchID = matchID
		if err := s.store.Delete(ctx, identity.SessionID); err != nil {
			s.logger.Warn("failed to delete finished session", zap.Error(err))
		}
	}
	return result, nil
}

// Hint lists the pieces the side to move can legally play. During a
// capture chain only the pinned piece is selectable, so it is the sole
// hint.
func (s *Service) Hint(ctx context.Context, meta SessionMeta) ([]checkersdto.SquareRef, error) {
	identity := deriveIdentity(meta)
	_, engine, err := s.loadEngine(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if engine.GameOver() {
		return nil, checkers.ErrGameOver
	}
	if engine.PendingChain() {
		if sel, ok := engine.Selected(); ok {
			return []checkersdto.SquareRef{{Row: sel.Row, Col: sel.Col}}, nil
		}
	}
	squares := checkers.MovablePieces(engine.Board(), engine.Turn())
	refs := make([]checkersdto.SquareRef, len(squares))
	for i, sq := range squares {
		refs[i] = checkersdto.SquareRef{Row: sq.Row, Col: sq.Col}
	}
	return refs, nil
}

// Resign ends the match in favor of side's opponent and records it.
func (s *Service) Resign(ctx context.Context, meta SessionMeta, side checkers.Side) (*checkersdto.MoveResult, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("unknown side %q", side)
	}
	identity := deriveIdentity(meta)
	payload, engine, err := s.loadEngine(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if engine.GameOver() {
		return nil, checkers.ErrGameOver
	}

	winner := side.Opponent()
	matchID, err := s.persistResult(ctx, identity, payload, winner, "resignation")
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, identity.SessionID); err != nil {
		s.logger.Warn("failed to delete resigned session", zap.Error(err))
	}

	state := s.stateFrom(ctx, payload, engine)
	state.Over = true
	state.Winner = string(winner)
	return &checkersdto.MoveResult{
		State:    state,
		GameOver: true,
		Winner:   string(winner),
		MatchID:  matchID,
	}, nil
}

// Reset discards the game in progress and deals the initial position,
// keeping the session and player identities.
func (s *Service) Reset(ctx context.Context, meta SessionMeta) (*checkersdto.SessionState, error) {
	identity := deriveIdentity(meta)
	payload, _, err := s.loadEngine(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}

	var engine *checkers.Engine
	updated, err := s.store.update(ctx, identity.SessionID, payload.Plies, func(p *sessionPayload) error {
		e := checkers.NewEngine(checkers.WithStartingSide(s.cfg.StartingSide))
		p.Engine = e.Snapshot()
		p.Plies = 0
		p.StartedAt = time.Now()
		engine = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match reset", zap.String("session_uuid", updated.SessionUUID))
	return s.stateFrom(ctx, updated, engine), nil
}

// Profile returns the stored statistics for the named player in this room.
func (s *Service) Profile(ctx context.Context, meta SessionMeta, playerName string) (*checkersdto.PlayerProfile, error) {
	identity := deriveIdentity(meta)
	playerHash := hashString(normalizeToken(meta.Room) + ":" + normalizeToken(playerName))
	profile, err := s.repo.GetProfile(ctx, playerHash, identity.RoomHash)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profileDTO(profile), nil
}

// History lists the most recent finished matches for the named player.
func (s *Service) History(ctx context.Context, meta SessionMeta, playerName string, limit int) ([]*domain.MatchRecord, error) {
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	playerHash := hashString(normalizeToken(meta.Room) + ":" + normalizeToken(playerName))
	return s.repo.GetRecentMatches(ctx, playerHash, limit)
}

// Match fetches one recorded match by ID.
func (s *Service) Match(ctx context.Context, id int64) (*domain.MatchRecord, error) {
	rec, err := s.repo.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrMatchNotFound
	}
	return rec, nil
}

func (s *Service) loadEngine(ctx context.Context, sessionID string) (*sessionPayload, *checkers.Engine, error) {
	payload, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if payload == nil {
		return nil, nil, ErrSessionNotFound
	}
	engine, err := checkers.Restore(payload.Engine)
	if err != nil {
		return nil, nil, err
	}
	return payload, engine, nil
}

func (s *Service) stateFrom(ctx context.Context, payload *sessionPayload, engine *checkers.Engine) *checkersdto.SessionState {
	state := &checkersdto.SessionState{
		SessionUUID:  payload.SessionUUID,
		Turn:         string(engine.Turn()),
		PendingChain: engine.PendingChain(),
		RedCount:     engine.Board().Count(checkers.SideRed),
		BlackCount:   engine.Board().Count(checkers.SideBlack),
		Plies:        payload.Plies,
		BoardText:    boardText(engine),
		Over:         engine.GameOver(),
	}
	if winner, ok := engine.Winner(); ok {
		state.Winner = string(winner)
	}
	var selected *checkers.Square
	if sel, ok := engine.Selected(); ok {
		selected = &sel
		state.Selected = &checkersdto.SquareRef{Row: sel.Row, Col: sel.Col}
		for _, mv := range engine.LegalMoves(sel) {
			ref := checkersdto.MoveRef{
				From: checkersdto.SquareRef{Row: mv.From.Row, Col: mv.From.Col},
				To:   checkersdto.SquareRef{Row: mv.To.Row, Col: mv.To.Col},
			}
			if mv.Captured != nil {
				ref.Captured = &checkersdto.SquareRef{Row: mv.Captured.Row, Col: mv.Captured.Col}
			}
			state.LegalMoves = append(state.LegalMoves, ref)
		}
	}
	s.attachBoardImage(ctx, state, engine, selected)
	return state
}

func (s *Service) attachBoardImage(ctx context.Context, state *checkersdto.SessionState, engine *checkers.Engine, selected *checkers.Square) {
	if s.renderer == nil || state == nil {
		return
	}
	opts := RenderOptions{Selected: selected}
	if selected != nil {
		for _, mv := range engine.LegalMoves(*selected) {
			opts.Targets = append(opts.Targets, mv.To)
		}
	}
	data, err := s.renderer.RenderPNG(ctx, engine.Board(), opts)
	if err != nil {
		s.logger.Warn("failed to render board image", zap.Error(err))
		return
	}
	state.BoardImage = data
}

func (s *Service) persistResult(ctx context.Context, identity sessionIdentity, payload *sessionPayload, winner checkers.Side, method string) (int64, error) {
	now := time.Now()
	rec := &domain.MatchRecord{
		MatchUUID:    payload.SessionUUID,
		RoomHash:     identity.RoomHash,
		RedHash:      payload.RedHash,
		RedName:      payload.RedName,
		BlackHash:    payload.BlackHash,
		BlackName:    payload.BlackName,
		Result:       string(winner),
		ResultMethod: method,
		Plies:        payload.Plies,
		StartedAt:    payload.StartedAt,
		EndedAt:      now,
		Duration:     now.Sub(payload.StartedAt),
	}

	matchID, err := s.repo.InsertMatch(ctx, rec)
	if err != nil && !errors.Is(err, ErrDuplicateMatch) {
		return 0, err
	}

	winnerHash, winnerName := payload.RedHash, payload.RedName
	loserHash, loserName := payload.BlackHash, payload.BlackName
	if winner == checkers.SideBlack {
		winnerHash, winnerName = payload.BlackHash, payload.BlackName
		loserHash, loserName = payload.RedHash, payload.RedName
	}
	if err := s.recordOutcome(ctx, identity, winnerHash, winnerName, true, now); err != nil {
		return matchID, err
	}
	if err := s.recordOutcome(ctx, identity, loserHash, loserName, false, now); err != nil {
		return matchID, err
	}

	s.logger.Info("match over",
		zap.String("session_uuid", payload.SessionUUID),
		zap.String("winner", string(winner)),
		zap.String("method", method),
		zap.Int("plies", payload.Plies),
		zap.Int64("match_id", matchID),
	)
	return matchID, nil
}

func (s *Service) recordOutcome(ctx context.Context, identity sessionIdentity, playerHash, displayName string, won bool, endedAt time.Time) error {
	profile, err := s.repo.GetProfile(ctx, playerHash, identity.RoomHash)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = &domain.PlayerProfile{
			PlayerHash: playerHash,
			RoomHash:   identity.RoomHash,
			CreatedAt:  endedAt,
		}
	}
	profile.DisplayName = displayName
	profile.GamesPlayed++
	profile.LastPlayedAt = endedAt
	profile.UpdatedAt = endedAt

	resultType := "loss"
	if won {
		profile.Wins++
		resultType = "win"
	} else {
		profile.Losses++
	}
	if profile.StreakType == resultType {
		profile.Streak++
	} else {
		profile.Streak = 1
		profile.StreakType = resultType
	}
	return s.repo.UpsertProfile(ctx, profile)
}

func profileDTO(p *domain.PlayerProfile) *checkersdto.PlayerProfile {
	return &checkersdto.PlayerProfile{
		PlayerHash:   p.PlayerHash,
		RoomHash:     p.RoomHash,
		DisplayName:  p.DisplayName,
		GamesPlayed:  p.GamesPlayed,
		Wins:         p.Wins,
		Losses:       p.Losses,
		Draws:        p.Draws,
		Streak:       p.Streak,
		StreakType:   p.StreakType,
		LastPlayedAt: p.LastPlayedAt,
		UpdatedAt:    p.UpdatedAt,
		CreatedAt:    p.CreatedAt,
	}
}

func squareFromRef(ref checkersdto.SquareRef) checkers.Square {
	return checkers.Square{Row: ref.Row, Col: ref.Col}
}

// boardText renders the grid with coordinates for text-only hosts.
func boardText(engine *checkers.Engine) string {
	var b strings.Builder
	b.WriteString("  0 1 2 3 4 5 6 7\n")
	snapshot := engine.Snapshot()
	for row, line := range snapshot.Grid {
		b.WriteString(fmt.Sprintf("%d ", row))
		for col := 0; col < len(line); col++ {
			b.WriteByte(line[col])
			if col < len(line)-1 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func deriveIdentity(meta SessionMeta) sessionIdentity {
	room := normalizeToken(meta.Room)
	return sessionIdentity{
		SessionID: normalizeToken(meta.SessionID),
		RoomHash:  hashString(room),
		RedHash:   hashString(room + ":" + normalizeToken(meta.RedName)),
		BlackHash: hashString(room + ":" + normalizeToken(meta.BlackName)),
	}
}

func normalizeToken(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func normalizePlayerName(raw, fallback string) string {
	cleaned := strings.Join(strings.Fields(strings.TrimSpace(raw)), " ")
	if cleaned == "" {
		return fallback
	}
	runes := []rune(cleaned)
	if len(runes) > playerNameLimit {
		return strings.TrimSpace(string(runes[:playerNameLimit])) + "..."
	}
	return cleaned
}

func hashString(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
