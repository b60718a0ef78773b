//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay draws the placement preview and optional grid lines on top of the
// cell view.
type Overlay struct {
	cellPx      int
	showPreview bool
	showGrid    bool
	pixel       *ebiten.Image
}

// NewOverlay constructs an overlay for cells drawn cellPx pixels wide.
func NewOverlay(cellPx int) *Overlay {
	if cellPx <= 0 {
		cellPx = 1
	}
	o := &Overlay{cellPx: cellPx, showPreview: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles the preview (1) and grid lines (2).
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showPreview = !o.showPreview
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showGrid = !o.showGrid
	}
}

// Draw renders the grid lines for a rows*cols view and, when enabled, a
// ghost of mask with its top-left cell at (row, col).
func (o *Overlay) Draw(screen *ebiten.Image, rows, cols int, mask [5][5]uint8, row, col int, placing bool) {
	if o.showGrid && o.cellPx >= 4 {
		o.drawGrid(screen, rows, cols)
	}
	if !o.showPreview || !placing {
		return
	}
	for i := range mask {
		for j := range mask[i] {
			r, c := row+i, col+j
			if r < 0 || r >= rows || c < 0 || c >= cols {
				continue
			}
			tint := color.RGBA{R: 255, G: 255, B: 255, A: 40}
			if mask[i][j] == 1 {
				tint = color.RGBA{R: 120, G: 255, B: 140, A: 150}
			}
			o.drawRect(screen, float64(c*o.cellPx), float64(r*o.cellPx), float64(o.cellPx), float64(o.cellPx), tint)
		}
	}
}

func (o *Overlay) drawGrid(screen *ebiten.Image, rows, cols int) {
	line := color.RGBA{R: 40, G: 40, B: 48, A: 160}
	width := float64(cols * o.cellPx)
	height := float64(rows * o.cellPx)
	for r := 1; r < rows; r++ {
		o.drawRect(screen, 0, float64(r*o.cellPx), width, 1, line)
	}
	for c := 1; c < cols; c++ {
		o.drawRect(screen, float64(c*o.cellPx), 0, 1, height, line)
	}
}

func (o *Overlay) drawRect(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	if o.pixel == nil || w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(o.pixel, op)
}
