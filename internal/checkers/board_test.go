package checkers

import "testing"

func TestNewBoardInitialLayout(t *testing.T) {
	b := NewBoard()
	if got := b.Count(SideRed); got != PiecesPerSide {
		t.Fatalf("red pieces = %d, want %d", got, PiecesPerSide)
	}
	if got := b.Count(SideBlack); got != PiecesPerSide {
		t.Fatalf("black pieces = %d, want %d", got, PiecesPerSide)
	}
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			sq := Square{Row: row, Col: col}
			p := b.Get(sq)
			if p == nil {
				continue
			}
			if !sq.Dark() {
				t.Fatalf("piece on non-playable square %v", sq)
			}
			if p.King {
				t.Fatalf("initial piece at %v is already a king", sq)
			}
			if row <= 2 && p.Side != SideBlack {
				t.Fatalf("row %d should hold black, got %v", row, p.Side)
			}
			if row >= 5 && p.Side != SideRed {
				t.Fatalf("row %d should hold red, got %v", row, p.Side)
			}
			if row > 2 && row < 5 {
				t.Fatalf("middle row %d should be empty", row)
			}
		}
	}
}

func TestBoardGetSetOffBoard(t *testing.T) {
	b := EmptyBoard()
	off := Square{Row: -1, Col: 3}
	if b.Get(off) != nil {
		t.Fatalf("Get off-board should return nil")
	}
	b.Set(off, &Piece{Side: SideRed}) // must not panic or leak
	if b.IsOnBoard(off) {
		t.Fatalf("IsOnBoard(%v) = true", off)
	}
	in := Square{Row: 3, Col: 2}
	b.Set(in, &Piece{Side: SideBlack})
	if p := b.Get(in); p == nil || p.Side != SideBlack {
		t.Fatalf("Get(%v) = %v, want black piece", in, p)
	}
	b.Set(in, nil)
	if b.Get(in) != nil {
		t.Fatalf("square %v should be cleared", in)
	}
}

func TestBoardSquaresRowMajor(t *testing.T) {
	b := EmptyBoard()
	b.Set(Square{Row: 6, Col: 1}, &Piece{Side: SideRed})
	b.Set(Square{Row: 2, Col: 5}, &Piece{Side: SideRed})
	b.Set(Square{Row: 2, Col: 3}, &Piece{Side: SideRed})
	b.Set(Square{Row: 4, Col: 7}, &Piece{Side: SideBlack})

	got := b.Squares(SideRed)
	want := []Square{{Row: 2, Col: 3}, {Row: 2, Col: 5}, {Row: 6, Col: 1}}
	if len(got) != len(want) {
		t.Fatalf("Squares(red) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Squares(red)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
