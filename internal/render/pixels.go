package render

import (
	"image/color"
	"math"

	"lifecast/internal/core"
)

// Palette colours cells for display. Live cells follow a ramp from Cool to
// Hot as their heat count approaches Saturation; dead cells that have ever
// been written show a faint trace of that heat over Dead.
type Palette struct {
	Dead       color.RGBA
	Cool       color.RGBA
	Hot        color.RGBA
	Trace      color.RGBA
	Saturation int
	// HeatMap turns off the ramp when false; live cells then use Cool.
	HeatMap bool
}

// DefaultPalette returns the standard heat map colours.
func DefaultPalette() Palette {
	return Palette{
		Dead:       color.RGBA{R: 12, G: 12, B: 16, A: 255},
		Cool:       color.RGBA{R: 90, G: 200, B: 255, A: 255},
		Hot:        color.RGBA{R: 255, G: 90, B: 40, A: 255},
		Trace:      color.RGBA{R: 70, G: 30, B: 30, A: 255},
		Saturation: 64,
		HeatMap:    true,
	}
}

// Color returns the display colour for a single cell.
func (p Palette) Color(c core.Cell) color.RGBA {
	if !p.HeatMap {
		if c.State == core.Alive {
			return p.Cool
		}
		return p.Dead
	}
	t := heatFraction(c.HeatCount, p.Saturation)
	if c.State == core.Alive {
		return lerpRGBA(p.Cool, p.Hot, t)
	}
	if c.HeatCount == 0 {
		return p.Dead
	}
	return lerpRGBA(p.Dead, p.Trace, t)
}

// heatFraction maps heat onto [0,1] with a square-root curve so that early
// activity is still visible on a long-running grid.
func heatFraction(heat, saturation int) float64 {
	if saturation <= 0 || heat <= 0 {
		return 0
	}
	return clamp01(math.Sqrt(float64(heat) / float64(saturation)))
}

// fillHeatRGBA converts row-major cells into RGBA pixels in buf.
func fillHeatRGBA(buf []byte, cells []core.Cell, p Palette) {
	for i, c := range cells {
		base := i * 4
		col := p.Color(c)
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: lerpComponent(a.R, b.R, t),
		G: lerpComponent(a.G, b.G, t),
		B: lerpComponent(a.B, b.B, t),
		A: lerpComponent(a.A, b.A, t),
	}
}

func lerpComponent(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
