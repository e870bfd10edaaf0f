package sprig

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures the window and loop started by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int

	// ShowFPS prints FPS and TPS in the top-left corner.
	ShowFPS bool

	// Debug turns on Scene debug mode.
	Debug bool

	// TPS sets ticks per second. Zero keeps ebiten's default of 60.
	TPS int
}

// Run opens a window and runs scene until the window closes or the update
// callback returns an error. ebiten.Termination ends the loop without an
// error.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("sprig: invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	if cfg.Debug {
		scene.SetDebugMode(true)
	}
	return ebiten.RunGame(&gameShell{scene: scene, cfg: cfg})
}

// gameShell adapts a Scene to ebiten.Game.
type gameShell struct {
	scene *Scene
	cfg   RunConfig
}

func (g *gameShell) Update() error {
	return g.scene.Update()
}

func (g *gameShell) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

func (g *gameShell) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}
