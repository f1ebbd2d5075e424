package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/vmix"
)

// player implements ebiten.Game around a session and one view of it.
type player struct {
	session   *vmix.Session
	view      *vmix.View
	hud       *hud
	cues      *vmix.CueList
	recorders []*vmix.PNGRecorder
	selected  vmix.Source

	frames    int
	maxFrames int
}

func newPlayer(s *vmix.Session, mode vmix.ViewMode, settings vmix.Settings) *player {
	v := vmix.NewView(mode, vmix.Rect{Width: float64(settings.Width), Height: float64(settings.Height)})
	v.RestoreSettings(s.Config(mode))
	return &player{session: s, view: v, hud: newHUD()}
}

func (p *player) Update() error {
	dt := 1 / float64(ebiten.TPS())
	p.session.Update(dt)
	if p.cues != nil {
		p.cues.Step(p.session)
	}
	p.handleInput()
	p.view.Sync(p.session)
	p.view.Update(dt)
	p.hud.update(dt, p.session)

	p.frames++
	if p.maxFrames > 0 && p.frames >= p.maxFrames {
		return ebiten.Termination
	}
	return nil
}

func (p *player) handleInput() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		if p.session.Fading() > 0 {
			p.session.SetFading(0, false)
		} else {
			p.session.SetFading(1, false)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		p.session.SetActive(!p.session.Active())
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		p.hud.visible = !p.hud.visible
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		p.view.ZoomTo(1, 0.3, ease.OutQuad)
		p.view.PanTo(p.view.Pan.Mul(0), 0.3, ease.OutQuad)
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		p.view.Zoom *= float32(1 + 0.1*dy)
		p.view.SaveSettings(p.session.Config(p.view.Mode))
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		src, _ := p.view.SourceAt(p.session, float64(x), float64(y))
		p.selectSource(src)
	}
}

func (p *player) selectSource(src vmix.Source) {
	type selectable interface{ SetSelected(bool) }
	if s, ok := p.selected.(selectable); ok && p.session.Index(p.selected) >= 0 {
		s.SetSelected(false)
	}
	p.selected = src
	if s, ok := src.(selectable); ok {
		s.SetSelected(true)
	}
}

func (p *player) Draw(screen *ebiten.Image) {
	p.view.Draw(screen)
	p.hud.draw(screen)
}

func (p *player) Layout(outsideWidth, outsideHeight int) (int, int) {
	p.view.Viewport = vmix.Rect{Width: float64(outsideWidth), Height: float64(outsideHeight)}
	return outsideWidth, outsideHeight
}
