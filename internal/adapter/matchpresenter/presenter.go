package matchpresenter

import (
	"strings"

	"github.com/prismvale/checkersd/pkg/checkersdto"
)

// Presenter fans a formatted reply out to the host's delivery hooks.
// Either hook may be nil, in which case that part of the reply is
// dropped rather than erroring.
type Presenter struct {
	text  func(room, message string) error
	board func(room string, png []byte) error
}

func NewPresenter(text func(room, message string) error, board func(room string, png []byte) error) *Presenter {
	return &Presenter{text: text, board: board}
}

// Text delivers a message with no board attachment.
func (p *Presenter) Text(room, message string) error {
	return p.Board(room, message, nil)
}

// Board delivers the message first, then the rendered board when the
// state carries one. The image goes out as the raw PNG bytes produced
// by the renderer.
func (p *Presenter) Board(room, message string, state *checkersdto.SessionState) error {
	if p == nil {
		return nil
	}
	if p.text != nil {
		if msg := strings.TrimSpace(message); msg != "" {
			if err := p.text(room, msg); err != nil {
				return err
			}
		}
	}
	if p.board == nil || state == nil || len(state.BoardImage) == 0 {
		return nil
	}
	return p.board(room, state.BoardImage)
}
