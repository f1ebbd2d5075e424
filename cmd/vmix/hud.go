package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/vmix"
)

// hud prints the frame rate and the session counters in the top-left
// corner. The text is refreshed every half second.
type hud struct {
	img     *ebiten.Image
	visible bool
	elapsed float64
}

func newHUD() *hud {
	return &hud{img: ebiten.NewImage(220, 64), visible: true, elapsed: 0.5}
}

func (h *hud) update(dt float64, s *vmix.Session) {
	h.elapsed += dt
	if h.elapsed < 0.5 {
		return
	}
	h.elapsed = 0

	st := s.Stats()
	h.img.Clear()
	h.img.Fill(color.RGBA{0, 0, 0, 128})
	text := fmt.Sprintf("FPS: %.1f  TPS: %.1f\nsources: %d  recorders: %d\nfading: %.2f  frame: %s",
		ebiten.ActualFPS(), ebiten.ActualTPS(), st.Sources, st.Recorders, st.Fading, st.LastUpdate)
	if f := s.FailedSource(); f != nil {
		text += "\nfailed: " + f.Name()
	}
	ebitenutil.DebugPrint(h.img, text)
}

func (h *hud) draw(screen *ebiten.Image) {
	if h.visible {
		screen.DrawImage(h.img, nil)
	}
}
