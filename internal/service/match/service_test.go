package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prismvale/checkersd/internal/checkers"
	"github.com/prismvale/checkersd/pkg/checkersdto"
)

func newTestService(t *testing.T) (*Service, SessionMeta) {
	t.Helper()
	store := newTestStore(t)
	svc, err := NewService(store, NewMemoryRepository(), nil, Config{
		StartingSide: checkers.SideRed,
		SessionTTL:   time.Hour,
		HistoryLimit: 10,
	}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	meta := SessionMeta{
		SessionID: "sess-1",
		Room:      "lounge",
		RedName:   "Alice",
		BlackName: "Bob",
	}
	return svc, meta
}

// seedSession replaces the live engine with a crafted position.
func seedSession(t *testing.T, svc *Service, meta SessionMeta, grid []string, turn checkers.Side) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.Start(ctx, meta); err != nil && !errors.Is(err, ErrSessionInProgress) {
		t.Fatalf("Start: %v", err)
	}
	identity := deriveIdentity(meta)
	payload, err := svc.store.Load(ctx, identity.SessionID)
	if err != nil || payload == nil {
		t.Fatalf("Load seeded session: payload=%v err=%v", payload, err)
	}
	snapshot := checkers.Snapshot{
		Grid:         grid,
		StartingSide: checkers.SideRed,
		Turn:         turn,
	}
	if _, err := checkers.Restore(snapshot); err != nil {
		t.Fatalf("bad seed grid: %v", err)
	}
	payload.Engine = snapshot
	if err := svc.store.Save(ctx, identity.SessionID, payload); err != nil {
		t.Fatalf("Save seeded session: %v", err)
	}
}

func TestStartAndResume(t *testing.T) {
	svc, meta := newTestService(t)
	ctx := context.Background()

	state, err := svc.Start(ctx, meta)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if state.Turn != "red" || state.RedCount != 12 || state.BlackCount != 12 || state.Plies != 0 {
		t.Fatalf("unexpected initial state: %+v", state)
	}

	resumed, err := svc.Start(ctx, meta)
	if !errors.Is(err, ErrSessionInProgress) {
		t.Fatalf("second Start err = %v, want ErrSessionInProgress", err)
	}
	if resumed == nil || resumed.SessionUUID != state.SessionUUID {
		t.Fatalf("resume returned different session: %+v", resumed)
	}
}

func TestStatusWithoutSession(t *testing.T) {
	svc, meta := newTestService(t)
	if _, err := svc.Status(context.Background(), meta); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Status err = %v, want ErrSessionNotFound", err)
	}
}

func TestSelectAndPlayOpeningMove(t *testing.T) {
	svc, meta := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Start(ctx, meta); err != nil {
		t.Fatalf("Start: %v", err)
	}

	state, err := svc.Select(ctx, meta, checkersdto.SquareRef{Row: 5, Col: 0})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if state.Selected == nil || state.Selected.Row != 5 || state.Selected.Col != 0 {
		t.Fatalf("selection not reported: %+v", state.Selected)
	}
	if len(state.LegalMoves) != 1 || state.LegalMoves[0].To != (checkersdto.SquareRef{Row: 4, Col: 1}) {
		t.Fatalf("unexpected legal moves: %+v", state.LegalMoves)
	}

	result, err := svc.Play(ctx, meta, checkersdto.SquareRef{Row: 4, Col: 1})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !result.TurnEnded || result.Captured || result.GameOver {
		t.Fatalf("unexpected outcome: %+v", result)
	}
	if result.State.Turn != "black" || result.State.Plies != 1 {
		t.Fatalf("unexpected state after move: %+v", result.State)
	}

	// State persists across a reload.
	status, err := svc.Status(ctx, meta)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Plies != 1 || status.Turn != "black" {
		t.Fatalf("state not persisted: %+v", status)
	}
}

func TestSelectRejectsOpponentPiece(t *testing.T) {
	svc, meta := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Start(ctx, meta); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := svc.Select(ctx, meta, checkersdto.SquareRef{Row: 2, Col: 1}); !errors.Is(err, checkers.ErrWrongSide) {
		t.Fatalf("Select opponent err = %v, want ErrWrongSide", err)
	}
	if _, err := svc.Select(ctx, meta, checkersdto.SquareRef{Row: 4, Col: 1}); !errors.Is(err, checkers.ErrEmptySquare) {
		t.Fatalf("Select empty err = %v, want ErrEmptySquare", err)
	}
}

func TestPlayWithoutSelection(t *testing.T) {
	svc, meta := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Start(ctx, meta); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Play(ctx, meta, checkersdto.SquareRef{Row: 4, Col: 1}); !errors.Is(err, checkers.ErrNoSelection) {
		t.Fatalf("Play err = %v, want ErrNoSelection", err)
	}
}

func TestPlayFinishesMatchAndRecordsProfiles(t *testing.T) {
	svc, meta := newTestService(t)
	ctx := context.Background()
	seedSession(t, svc, meta, []string{
		"........",
		"........",
		"........",
		"........",
		"...b....",
		"..r.....",
		"........",
		"........",
	}, checkers.SideRed)

	if _, err := svc.Select(ctx, meta, checkersdto.SquareRef{Row: 5, Col: 2}); err != nil {
		t.Fatalf("Select: %v", err)
	}
	result, err := svc.Play(ctx, meta, checkersdto.SquareRef{Row: 3, Col: 4})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !result.GameOver || result.Winner != "red" || !result.Captured {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.MatchID == 0 {
		t.Fatalf("expected recorded match id")
	}

	// Session is gone once the match is recorded.
	if _, err := svc.Status(ctx, meta); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Status after finish err = %v, want ErrSessionNotFound", err)
	}

	rec, err := svc.Match(ctx, result.MatchID)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if rec.Result != "red" || rec.ResultMethod != "elimination" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	winner, err := svc.Profile(ctx, meta, "Alice")
	if err != nil {
		t.Fatalf("Profile winner: %v", err)
	}
	if winner.Wins != 1 || winner.StreakType != "win" || winner.Streak != 1 {
		t.Fatalf("unexpected winner profile: %+v", winner)
	}
	loser, err := svc.Profile(ctx, meta, "Bob")
	if err != nil {
		t.Fatalf("Profile loser: %v", err)
	}
	if loser.Losses != 1 || loser.StreakType != "loss" {
		t.Fatalf("unexpected loser profile: %+v", loser)
	}

	history, err := svc.History(ctx, meta, "Alice", 5)
	if err != nil || len(history) != 1 {
		t.Fatalf("History: list=%v err=%v", history, err)
	}
}

func TestResign(t *testing.T) {
	svc, meta := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Start(ctx, meta); err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := svc.Resign(ctx, meta, checkers.SideRed)
	if err != nil {
		t.Fatalf("Resign: %v", err)
	}
	if !result.GameOver || result.Winner != "black" {
		t.Fatalf("unexpected result: %+v", result)
	}

	rec, err := svc.Match(ctx, result.MatchID)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if rec.ResultMethod != "resignation" || rec.Result != "black" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if _, err := svc.Status(ctx, meta); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Status after resign err = %v, want ErrSessionNotFound", err)
	}
}

func TestHintHonorsForcedCapture(t *testing.T) {
	svc, meta := newTestService(t)
	ctx := context.Background()
	seedSession(t, svc, meta, []string{
		"........",
		"........",
		"........",
		"........",
		"...b....",
		"..r...r.",
		"........",
		"........",
	}, checkers.SideRed)

	hints, err := svc.Hint(ctx, meta)
	if err != nil {
		t.Fatalf("Hint: %v", err)
	}
	if len(hints) != 1 || hints[0] != (checkersdto.SquareRef{Row: 5, Col: 2}) {
		t.Fatalf("unexpected hints: %+v", hints)
	}
}

func TestHintMidChainNamesOnlyPinnedPiece(t *testing.T) {
	svc, meta := newTestService(t)
	ctx := context.Background()
	seedSession(t, svc, meta, []string{
		"........",
		"........",
		".....b..",
		"........",
		"...b....",
		"..r.....",
		".b......",
		"r.......",
	}, checkers.SideRed)

	if _, err := svc.Select(ctx, meta, checkersdto.SquareRef{Row: 5, Col: 2}); err != nil {
		t.Fatalf("Select: %v", err)
	}
	result, err := svc.Play(ctx, meta, checkersdto.SquareRef{Row: 3, Col: 4})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if result.TurnEnded || !result.State.PendingChain {
		t.Fatalf("expected chain to keep red on turn, got %+v", result)
	}

	// The piece on (7,0) also has a capture now, but the chain pins
	// the jumper, so the hint must not mention it.
	hints, err := svc.Hint(ctx, meta)
	if err != nil {
		t.Fatalf("Hint: %v", err)
	}
	if len(hints) != 1 || hints[0] != (checkersdto.SquareRef{Row: 3, Col: 4}) {
		t.Fatalf("unexpected hints: %+v", hints)
	}
	if _, err := svc.Select(ctx, meta, checkersdto.SquareRef{Row: 7, Col: 0}); !errors.Is(err, checkers.ErrChainLocked) {
		t.Fatalf("Select off-chain err = %v, want ErrChainLocked", err)
	}
}

func TestStartRespectsRoomCap(t *testing.T) {
	store := newTestStore(t)
	svc, err := NewService(store, NewMemoryRepository(), nil, Config{
		StartingSide:   checkers.SideRed,
		SessionTTL:     time.Hour,
		MaxOpenMatches: 1,
	}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	first := SessionMeta{SessionID: "sess-1", Room: "lounge", RedName: "A", BlackName: "B"}
	if _, err := svc.Start(ctx, first); err != nil {
		t.Fatalf("Start first: %v", err)
	}

	second := SessionMeta{SessionID: "sess-2", Room: "lounge", RedName: "C", BlackName: "D"}
	if _, err := svc.Start(ctx, second); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("Start second err = %v, want ErrRoomFull", err)
	}

	// Resigning the first match frees the slot.
	if _, err := svc.Resign(ctx, first, checkers.SideRed); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	if _, err := svc.Start(ctx, second); err != nil {
		t.Fatalf("Start after resign: %v", err)
	}
}

func TestStartRoomCapIgnoresExpiredSessions(t *testing.T) {
	store := newTestStore(t)
	svc, err := NewService(store, NewMemoryRepository(), nil, Config{
		StartingSide:   checkers.SideRed,
		SessionTTL:     time.Hour,
		MaxOpenMatches: 1,
	}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	first := SessionMeta{SessionID: "sess-1", Room: "lounge", RedName: "A", BlackName: "B"}
	if _, err := svc.Start(ctx, first); err != nil {
		t.Fatalf("Start first: %v", err)
	}

	// Expire the session document out from under the room index.
	if err := store.rdb.Del(ctx, sessionKey(deriveIdentity(first).SessionID)).Err(); err != nil {
		t.Fatalf("Del: %v", err)
	}

	second := SessionMeta{SessionID: "sess-2", Room: "lounge", RedName: "C", BlackName: "D"}
	if _, err := svc.Start(ctx, second); err != nil {
		t.Fatalf("Start after expiry err = %v, want nil", err)
	}
}

func TestReset(t *testing.T) {
	svc, meta := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Start(ctx, meta); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Select(ctx, meta, checkersdto.SquareRef{Row: 5, Col: 0}); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := svc.Play(ctx, meta, checkersdto.SquareRef{Row: 4, Col: 1}); err != nil {
		t.Fatalf("Play: %v", err)
	}

	state, err := svc.Reset(ctx, meta)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if state.Plies != 0 || state.Turn != "red" || state.RedCount != 12 || state.BlackCount != 12 {
		t.Fatalf("unexpected state after reset: %+v", state)
	}
}
