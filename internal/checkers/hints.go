package checkers

// MovablePieces returns the squares of every piece of side that has at
// least one playable move, honoring forced capture: when any capture
// exists, only pieces that can capture are movable. The result is in
// row-major order; hosts wanting a random hint sample from it themselves,
// keeping the engine deterministic.
func MovablePieces(b *Board, side Side) []Square {
	mustCapture := len(SideCaptureMoves(b, side)) > 0
	var out []Square
	for _, sq := range b.Squares(side) {
		if mustCapture {
			if len(CaptureMoves(b, sq)) > 0 {
				out = append(out, sq)
			}
			continue
		}
		if len(SimpleMoves(b, sq)) > 0 {
			out = append(out, sq)
		}
	}
	return out
}
