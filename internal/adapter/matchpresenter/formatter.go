package matchpresenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prismvale/checkersd/internal/checkers"
	"github.com/prismvale/checkersd/internal/domain"
	"github.com/prismvale/checkersd/internal/msgcat"
	"github.com/prismvale/checkersd/internal/service/match"
	"github.com/prismvale/checkersd/pkg/checkersdto"
)

// Formatter renders checkers DTOs into host-facing text blocks using the
// message catalog.
type Formatter struct {
	cat *msgcat.Catalog
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	return &Formatter{cat: cat}
}

func (f *Formatter) render(key string, data any) string {
	if f == nil || f.cat == nil {
		return key
	}
	out, err := f.cat.Render(key, data)
	if err != nil {
		return key
	}
	return out
}

func sideLabel(side string) string {
	switch side {
	case "red":
		return "Red"
	case "black":
		return "Black"
	default:
		return side
	}
}

func (f *Formatter) Start(state *checkersdto.SessionState, resumed bool) string {
	if state == nil {
		return ""
	}
	key := "match.start"
	if resumed {
		key = "match.resumed"
	}
	var sb strings.Builder
	sb.WriteString(f.render(key, map[string]any{"Side": sideLabel(state.Turn)}))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Red %d - Black %d", state.RedCount, state.BlackCount))
	return sb.String()
}

func (f *Formatter) Status(state *checkersdto.SessionState) string {
	if state == nil {
		return ""
	}
	if state.Over {
		return f.render("match.over", map[string]any{
			"Winner": sideLabel(state.Winner),
			"Method": "victory",
		})
	}
	var sb strings.Builder
	sb.WriteString(f.render("match.turn", map[string]any{"Side": sideLabel(state.Turn)}))
	sb.WriteString(fmt.Sprintf("\nPly %d | Red %d - Black %d", state.Plies, state.RedCount, state.BlackCount))
	if state.PendingChain {
		sb.WriteString("\n")
		sb.WriteString(f.render("match.chain", nil))
	}
	return sb.String()
}

func (f *Formatter) Selected(state *checkersdto.SessionState) string {
	if state == nil || state.Selected == nil {
		return ""
	}
	return f.render("match.selected", map[string]any{
		"Row":   state.Selected.Row,
		"Col":   state.Selected.Col,
		"Moves": formatMoves(state.LegalMoves),
	})
}

func (f *Formatter) Move(result *checkersdto.MoveResult, method string) string {
	if result == nil || result.State == nil {
		return ""
	}
	var lines []string
	if result.Captured {
		mover := result.State.Turn
		if result.TurnEnded {
			// The side switched after the move; the capturer is the
			// previous side.
			mover = opponentLabel(result.State.Turn)
		}
		lines = append(lines, f.render("match.captured", map[string]any{"Side": sideLabel(mover)}))
	}
	if result.Promoted {
		lines = append(lines, f.render("match.promoted", nil))
	}
	if !result.TurnEnded && !result.GameOver {
		lines = append(lines, f.render("match.chain", nil))
	}
	if result.GameOver {
		lines = append(lines, f.render("match.over", map[string]any{
			"Winner": sideLabel(result.Winner),
			"Method": method,
		}))
	} else if result.TurnEnded {
		lines = append(lines, f.render("match.turn", map[string]any{"Side": sideLabel(result.State.Turn)}))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) Hint(squares []checkersdto.SquareRef) string {
	refs := make([]string, len(squares))
	for i, sq := range squares {
		refs[i] = fmt.Sprintf("(%d,%d)", sq.Row, sq.Col)
	}
	return f.render("match.hint", map[string]any{"Squares": strings.Join(refs, " ")})
}

func (f *Formatter) Reset(state *checkersdto.SessionState) string {
	if state == nil {
		return ""
	}
	return f.render("match.reset", map[string]any{"Side": sideLabel(state.Turn)})
}

func (f *Formatter) Resign(result *checkersdto.MoveResult, resigned string) string {
	if result == nil {
		return ""
	}
	return f.render("match.resigned", map[string]any{
		"Side":   sideLabel(resigned),
		"Winner": sideLabel(result.Winner),
	})
}

func (f *Formatter) Profile(p *checkersdto.PlayerProfile) string {
	if p == nil {
		return ""
	}
	return f.render("profile.summary", map[string]any{
		"Name":   p.DisplayName,
		"Wins":   p.Wins,
		"Losses": p.Losses,
		"Draws":  p.Draws,
		"Games":  p.GamesPlayed,
	})
}

func (f *Formatter) History(records []*domain.MatchRecord) string {
	if len(records) == 0 {
		return "No recorded matches yet."
	}
	var sb strings.Builder
	sb.WriteString("Recent matches:\n")
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("#%d %s vs %s: %s by %s (%d plies)\n",
			rec.ID, rec.RedName, rec.BlackName, sideLabel(rec.Result), rec.ResultMethod, rec.Plies))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Reject maps domain errors to user-facing rejection messages. Unknown
// errors pass through unchanged so the host can decide how to surface them.
func (f *Formatter) Reject(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, checkers.ErrEmptySquare):
		return f.render("reject.empty", nil)
	case errors.Is(err, checkers.ErrWrongSide):
		return f.render("reject.wrong_side", nil)
	case errors.Is(err, checkers.ErrChainLocked):
		return f.render("reject.chain_locked", nil)
	case errors.Is(err, checkers.ErrNoSelection):
		return f.render("reject.no_selection", nil)
	case errors.Is(err, checkers.ErrIllegalDestination):
		return f.render("reject.illegal", nil)
	case errors.Is(err, checkers.ErrGameOver):
		return f.render("reject.game_over", nil)
	case errors.Is(err, match.ErrSessionNotFound):
		return "No game in progress. Start one first."
	case errors.Is(err, match.ErrSessionConflict):
		return "Another command is still running. Try again."
	default:
		return err.Error()
	}
}

func formatMoves(moves []checkersdto.MoveRef) string {
	if len(moves) == 0 {
		return "none"
	}
	parts := make([]string, len(moves))
	for i, mv := range moves {
		if mv.Captured != nil {
			parts[i] = fmt.Sprintf("(%d,%d)x(%d,%d)", mv.To.Row, mv.To.Col, mv.Captured.Row, mv.Captured.Col)
			continue
		}
		parts[i] = fmt.Sprintf("(%d,%d)", mv.To.Row, mv.To.Col)
	}
	return strings.Join(parts, " ")
}

func opponentLabel(side string) string {
	if side == "red" {
		return "black"
	}
	return "red"
}
