//go:build ebiten

package app

import (
	"errors"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"lifecast/internal/core"
	"lifecast/internal/render"
	"lifecast/internal/replica"
	"lifecast/internal/ui"
)

const placeholderSize = 480

// Game adapts a replica client to the ebiten.Game interface. It draws the
// replicated grid as a heat map and submits the selected pattern on click.
type Game struct {
	client  *replica.Client
	cfg     *Config
	logger  *log.Logger
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay

	view    *replica.Replica
	cells   []core.Cell
	cellPx  int
	pattern string
	paused  bool
	heatMap bool

	rejection string
}

// New constructs a Game rendering the replica maintained by client.
func New(client *replica.Client, cfg *Config, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.Default()
	}
	pattern := cfg.Pattern
	if _, ok := Pattern(pattern); !ok {
		pattern = PatternNames()[0]
	}
	return &Game{
		client:  client,
		cfg:     cfg,
		logger:  logger,
		hud:     ui.NewHUD(cfg.HUDWidth),
		pattern: pattern,
		heatMap: true,
	}
}

// Update handles input, picks up reconnects and collects rejections.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.heatMap = !g.heatMap
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.pattern = cyclePattern(g.pattern, 1)
	}

	g.syncReplica()
	g.drainRejections()

	if g.view == nil {
		return nil
	}
	dims := g.view.Dimensions()
	gridWidth := dims.Cols * g.cellPx
	if step := g.hud.Update(gridWidth); step != 0 {
		g.pattern = cyclePattern(g.pattern, step)
	}
	if g.overlay != nil {
		g.overlay.Update()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if row, col, ok := placement(x, y, g.cellPx, dims.Rows, dims.Cols); ok {
			mask, _ := Pattern(g.pattern)
			if err := g.client.Submit(mask, row, col); err != nil && !errors.Is(err, replica.ErrNotConnected) {
				g.logger.Printf("[pattern] submit failed: %v", err)
			}
		}
	}

	if !g.paused {
		g.cells = g.view.CopyCells(g.cells)
	}
	g.hud.SetStatus(ui.Status{
		Connected:  true,
		Iteration:  g.view.Iteration(),
		Population: g.view.Population(),
		TickSpeed:  g.view.TickSpeed(),
		Rows:       dims.Rows,
		Cols:       dims.Cols,
		Pattern:    g.pattern,
		Paused:     g.paused,
		HeatMap:    g.heatMap,
		Rejection:  g.rejection,
	})
	return nil
}

// syncReplica rebuilds the painter when the client has connected or
// reconnected to a grid of different geometry.
func (g *Game) syncReplica() {
	current := g.client.Replica()
	if current == nil || current == g.view {
		return
	}
	dims := current.Dimensions()
	g.cellPx = g.cfg.CellPixels(current.CellSize())
	if g.view == nil || g.view.Dimensions() != dims {
		g.painter = render.NewGridPainter(dims.Cols, dims.Rows, render.DefaultPalette())
		g.overlay = ui.NewOverlay(g.cellPx)
		ebiten.SetWindowSize(dims.Cols*g.cellPx+g.hud.Width(), dims.Rows*g.cellPx)
	}
	g.view = current
	g.cells = current.CopyCells(g.cells)
}

func (g *Game) drainRejections() {
	for {
		select {
		case rej := <-g.client.Rejections():
			g.rejection = rej.Reason
		default:
			return
		}
	}
}

// Draw renders the latest replicated grid.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if g.view == nil || g.painter == nil {
		ebitenutil.DebugPrint(screen, "connecting to "+g.cfg.URL)
		return
	}
	g.painter.Palette().HeatMap = g.heatMap
	g.painter.Blit(screen, g.cells, g.cellPx)

	dims := g.view.Dimensions()
	x, y := ebiten.CursorPosition()
	row, col, placing := placement(x, y, g.cellPx, dims.Rows, dims.Cols)
	mask, _ := Pattern(g.pattern)
	g.overlay.Draw(screen, dims.Rows, dims.Cols, mask, row, col, placing)
	g.hud.Draw(screen, dims.Cols*g.cellPx, dims.Rows*g.cellPx)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.view == nil {
		return placeholderSize, placeholderSize
	}
	dims := g.view.Dimensions()
	return dims.Cols*g.cellPx + g.hud.Width(), dims.Rows * g.cellPx
}
