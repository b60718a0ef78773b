//go:build ebiten

package ui

import (
	"image"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the status panel to the right of the grid view. The panel has
// two buttons that cycle through the pattern library.
type HUD struct {
	width      int
	panel      *ebiten.Image
	lastHeight int
	status     Status

	prevRect     image.Rectangle
	nextRect     image.Rectangle
	panelOffsetX int

	pixel *ebiten.Image
}

// NewHUD constructs a HUD of the given panel width.
func NewHUD(width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	h.layoutButtons()
	return h
}

// Width returns the panel width in pixels.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// SetStatus replaces the displayed status.
func (h *HUD) SetStatus(s Status) {
	if h == nil {
		return
	}
	h.status = s
}

// Update handles clicks on the panel and reports the requested pattern
// step: -1 for previous, 1 for next, 0 for none.
func (h *HUD) Update(panelOffsetX int) int {
	if h == nil || h.width <= 0 {
		return 0
	}
	h.panelOffsetX = panelOffsetX
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return 0
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return 0
	}
	px := mx - h.panelOffsetX
	switch {
	case pointInRect(px, my, h.prevRect):
		return -1
	case pointInRect(px, my, h.nextRect):
		return 1
	}
	return 0
}

// Draw paints the panel anchored at offsetX with the given height.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawStatus()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawStatus() {
	face := basicfont.Face7x13
	headerY := panelPadding + headerBaseline
	text.Draw(h.panel, "lifecast", face, panelPadding, headerY, color.RGBA{R: 200, G: 200, B: 210, A: 255})

	y := controlsTop + lineHeight
	for _, line := range h.status.Lines() {
		col := color.RGBA{R: 220, G: 220, B: 230, A: 255}
		if strings.HasPrefix(line, "rejected:") {
			col = color.RGBA{R: 240, G: 120, B: 100, A: 255}
		}
		text.Draw(h.panel, line, face, panelPadding, y, col)
		y += infoSpacing / 2
	}

	enabled := h.status.Connected
	text.Draw(h.panel, "pattern", face, panelPadding, controlsTop+labelBaseline, color.RGBA{R: 160, G: 160, B: 170, A: 255})
	h.drawButton(h.prevRect, "<", enabled)
	h.drawButton(h.nextRect, ">", enabled)
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorM.Scale(float64(bg.R)/255.0, float64(bg.G)/255.0, float64(bg.B)/255.0, float64(bg.A)/255.0)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	textWidth := bounds.Dx()
	textHeight := bounds.Dy()
	x := rect.Min.X + (rect.Dx()-textWidth)/2
	y := rect.Min.Y + (rect.Dy()-textHeight)/2 + textHeight
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutButtons() {
	if h.width <= 0 {
		return
	}
	buttonY := controlsTop + (lineHeight-buttonSize)/2
	h.nextRect = image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
	h.prevRect = image.Rect(h.nextRect.Min.X-buttonGap-buttonSize, buttonY, h.nextRect.Min.X-buttonGap, buttonY+buttonSize)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	infoSpacing    = 36
	controlsTop    = panelPadding + headerBaseline + 14
)
