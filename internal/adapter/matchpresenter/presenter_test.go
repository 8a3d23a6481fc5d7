package matchpresenter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/prismvale/checkersd/pkg/checkersdto"
)

func TestPresenterDeliversTextThenBoard(t *testing.T) {
	var gotText string
	var gotPNG []byte
	p := NewPresenter(
		func(_, message string) error {
			gotText = message
			return nil
		},
		func(_ string, png []byte) error {
			if gotText == "" {
				t.Fatal("board delivered before text")
			}
			gotPNG = png
			return nil
		},
	)

	state := &checkersdto.SessionState{BoardImage: []byte{0x89, 'P', 'N', 'G'}}
	if err := p.Board("room", "  your move  ", state); err != nil {
		t.Fatalf("Board: %v", err)
	}
	if gotText != "your move" {
		t.Fatalf("text = %q", gotText)
	}
	if !bytes.Equal(gotPNG, state.BoardImage) {
		t.Fatalf("png = %v", gotPNG)
	}
}

func TestPresenterSkipsMissingParts(t *testing.T) {
	boards := 0
	p := NewPresenter(nil, func(string, []byte) error {
		boards++
		return nil
	})

	// No state and no image both mean nothing to draw.
	if err := p.Text("room", "hint: (5,2)"); err != nil {
		t.Fatalf("Text: %v", err)
	}
	if err := p.Board("room", "status", &checkersdto.SessionState{}); err != nil {
		t.Fatalf("Board without image: %v", err)
	}
	if boards != 0 {
		t.Fatalf("board hook called %d times", boards)
	}

	var nilPresenter *Presenter
	if err := nilPresenter.Board("room", "msg", nil); err != nil {
		t.Fatalf("nil presenter: %v", err)
	}
}

func TestPresenterPropagatesHookErrors(t *testing.T) {
	sendErr := errors.New("sink closed")
	p := NewPresenter(
		func(_, _ string) error { return sendErr },
		func(string, []byte) error {
			t.Fatal("board hook must not run after text failure")
			return nil
		},
	)
	state := &checkersdto.SessionState{BoardImage: []byte{1}}
	if err := p.Board("room", "msg", state); !errors.Is(err, sendErr) {
		t.Fatalf("err = %v, want %v", err, sendErr)
	}
}
