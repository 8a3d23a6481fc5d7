package match

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/prismvale/checkersd/internal/checkers"
)

// RenderOptions controls the overlays drawn on top of the position.
type RenderOptions struct {
	Selected *checkers.Square
	Targets  []checkers.Square
}

type svgBoardRenderer struct{}

func NewSVGBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{}
}

var (
	lightSquare       = color.RGBA{233, 207, 163, 255}
	darkSquare        = color.RGBA{187, 136, 96, 255}
	selectedOverlay   = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	targetOverlay     = color.NRGBA{R: 148, G: 207, B: 255, A: 150}
	coordinateTextClr = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	backgroundFillClr = color.RGBA{46, 50, 66, 255}
)

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board *checkers.Board, opts RenderOptions) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}

	const (
		squareSize = 72
		sideMargin = 28
		boardPx    = squareSize * checkers.BoardSize
	)

	totalWidth := boardPx + sideMargin*2
	totalHeight := boardPx + sideMargin*2
	origin := image.Point{X: sideMargin, Y: sideMargin}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundFillClr), image.Point{}, imagedraw.Src)

	drawSquares(img, squareSize, origin)
	if opts.Selected != nil {
		drawSquareOverlay(img, *opts.Selected, squareSize, origin, selectedOverlay)
	}
	for _, sq := range opts.Targets {
		drawSquareOverlay(img, sq, squareSize, origin, targetOverlay)
	}
	if err := drawPieces(img, board, squareSize, origin); err != nil {
		return nil, err
	}
	drawCoordinates(img, squareSize, origin, sideMargin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

func drawSquares(dst imagedraw.Image, squareSize int, origin image.Point) {
	for row := 0; row < checkers.BoardSize; row++ {
		for col := 0; col < checkers.BoardSize; col++ {
			clr := lightSquare
			if (checkers.Square{Row: row, Col: col}).Dark() {
				clr = darkSquare
			}
			x := origin.X + col*squareSize
			y := origin.Y + row*squareSize
			imagedraw.Draw(dst, image.Rect(x, y, x+squareSize, y+squareSize), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst imagedraw.Image, board *checkers.Board, squareSize int, origin image.Point) error {
	for row := 0; row < checkers.BoardSize; row++ {
		for col := 0; col < checkers.BoardSize; col++ {
			sq := checkers.Square{Row: row, Col: col}
			piece := board.Get(sq)
			if piece == nil {
				continue
			}
			img, err := renderPieceImage(*piece, squareSize)
			if err != nil {
				return err
			}
			rect := squareRect(sq, squareSize, origin)
			imagedraw.Draw(dst, rect, img, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func drawSquareOverlay(img *image.RGBA, sq checkers.Square, squareSize int, origin image.Point, clr color.Color) {
	if img == nil || !sq.OnBoard() {
		return
	}
	rect := squareRect(sq, squareSize, origin)
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

// drawCoordinates labels row indexes on the left edge and column
// indexes below the board, matching the engine's row/col addressing.
func drawCoordinates(dst imagedraw.Image, squareSize int, origin image.Point, margin int) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  dst,
		Face: face,
		Src:  image.NewUniform(coordinateTextClr),
	}

	ascent := face.Metrics().Ascent.Ceil()
	boardEndY := origin.Y + checkers.BoardSize*squareSize

	for row := 0; row < checkers.BoardSize; row++ {
		label := strconv.Itoa(row)
		baseline := origin.Y + row*squareSize + squareSize/2 + ascent/2
		drawCenteredText(drawer, label, origin.X-margin/2, baseline)
	}
	for col := 0; col < checkers.BoardSize; col++ {
		label := strconv.Itoa(col)
		centerX := origin.X + col*squareSize + squareSize/2
		drawCenteredText(drawer, label, centerX, boardEndY+ascent+4)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func squareRect(sq checkers.Square, squareSize int, origin image.Point) image.Rectangle {
	x := origin.X + sq.Col*squareSize
	y := origin.Y + sq.Row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}
