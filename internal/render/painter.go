//go:build ebiten

package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"lifecast/internal/core"
)

// GridPainter updates a single RGBA image from the cell grid, one pixel per
// cell, and scales it onto the screen.
type GridPainter struct {
	cols, rows int
	img        *ebiten.Image
	buf        []byte
	palette    Palette
}

// NewGridPainter allocates a painter for a grid of cols*rows cells.
func NewGridPainter(cols, rows int, palette Palette) *GridPainter {
	gp := &GridPainter{cols: cols, rows: rows, buf: make([]byte, 4*cols*rows), palette: palette}
	gp.img = ebiten.NewImage(cols, rows)
	return gp
}

// Palette returns the painter's palette for in-place edits.
func (gp *GridPainter) Palette() *Palette { return &gp.palette }

// Blit uploads the provided cells into the painter image and draws it.
func (gp *GridPainter) Blit(dst *ebiten.Image, cells []core.Cell, scale int) {
	if len(cells) != gp.cols*gp.rows {
		return
	}
	fillHeatRGBA(gp.buf, cells, gp.palette)
	gp.img.ReplacePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(gp.img, op)
}

// Size returns the grid dimensions the painter was built for.
func (gp *GridPainter) Size() (cols, rows int) { return gp.cols, gp.rows }
