package vmix

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// Source is one mixable visual element. It contributes one subgraph per view
// mode and reports its state to the session once per frame.
type Source interface {
	Name() string
	// HasName is the equality predicate used by Session.Find.
	HasName(name string) bool
	// HasNode reports whether n belongs to one of the source subgraphs.
	HasNode(n Node) bool
	// Group returns the subgraph displayed in the given view.
	Group(mode ViewMode) *Group

	Render()
	Update(dt float64)
	Failed() bool

	SetActive(on bool)
	Active() bool

	// Dispose releases the subgraphs and any resource held by the source.
	Dispose()
}

// SourceBase implements the Source contract for a source displaying a
// texture. Concrete sources embed it and override Render, Update, Failed.
//
// Each view subgraph is built as:
//
//	rendering: surface
//	geometry:  surface, frames (switch: normal, selected), handles (hidden)
//	layer:     surface, frame
//	mixing:    surface, frame, symbol
type SourceBase struct {
	name   string
	active bool

	groups   [len(ViewModes)]*Group
	surfaces [len(ViewModes)]*Surface
	frames   *Switch
	handles  *Group
	symbol   *Symbol

	aspect   float32
	selected bool
}

// NewSourceBase builds the view subgraphs of a source.
func NewSourceBase(name string, symbol SymbolType) SourceBase {
	var sb SourceBase
	sb.init(name, symbol)
	return sb
}

func (sb *SourceBase) init(name string, symbol SymbolType) {
	sb.name = name
	sb.active = true
	sb.aspect = 1
	for _, m := range ViewModes {
		sb.groups[m] = NewGroup(name + "/" + m.String())
		sb.surfaces[m] = NewSurface(name + "/surface")
		sb.groups[m].Attach(sb.surfaces[m])
	}

	sb.frames = NewSwitch("frames")
	sb.frames.Attach(NewFrame("frame", CornerSharp, BorderThin, ShadowNone))
	sb.frames.Attach(NewFrame("frame-selected", CornerSharp, BorderLarge, ShadowGlow))
	sb.groups[ViewGeometry].Attach(sb.frames)

	sb.handles = NewGroup("handles")
	sb.handles.Visible = false
	for _, t := range []HandleType{HandleResize, HandleResizeH, HandleResizeV, HandleRotate} {
		sb.handles.Attach(NewHandles("handles-"+t.String(), t))
	}
	sb.groups[ViewGeometry].Attach(sb.handles)

	sb.groups[ViewLayer].Attach(NewFrame("frame", CornerRound, BorderThin, ShadowDrop))

	sb.groups[ViewMixing].Attach(NewFrame("frame", CornerRound, BorderThin, ShadowNone))
	sb.symbol = NewSymbol("symbol", symbol, mgl32.Vec3{0.8, 0.8, 0.01})
	sb.groups[ViewMixing].Attach(sb.symbol)
}

// Name returns the source name.
func (sb *SourceBase) Name() string {
	return sb.name
}

// SetName renames the source.
func (sb *SourceBase) SetName(name string) {
	sb.name = name
}

// HasName reports whether the source is called name.
func (sb *SourceBase) HasName(name string) bool {
	return sb.name == name
}

// HasNode reports whether n is part of any of the source subgraphs.
func (sb *SourceBase) HasNode(n Node) bool {
	if n == nil {
		return false
	}
	for _, g := range sb.groups {
		if g == nil {
			continue
		}
		v := NewSearchVisitor(n)
		g.Accept(v, mgl32.Ident4())
		if v.Found() {
			return true
		}
	}
	return false
}

// Group returns the subgraph displayed in the given view.
func (sb *SourceBase) Group(mode ViewMode) *Group {
	if int(mode) >= len(sb.groups) {
		return nil
	}
	return sb.groups[mode]
}

// Surface returns the content surface of the given view.
func (sb *SourceBase) Surface(mode ViewMode) *Surface {
	if int(mode) >= len(sb.surfaces) {
		return nil
	}
	return sb.surfaces[mode]
}

// Render does nothing for a source without content to produce.
func (sb *SourceBase) Render() {}

// Update does nothing for a source without state to advance.
func (sb *SourceBase) Update(dt float64) {}

// Failed is false for a source that cannot fail.
func (sb *SourceBase) Failed() bool {
	return false
}

// SetActive enables or disables the source. An inactive source is hidden
// from the rendering view but stays visible for editing.
func (sb *SourceBase) SetActive(on bool) {
	sb.active = on
	if g := sb.groups[ViewRendering]; g != nil {
		g.Visible = on
	}
}

// Active reports whether the source is active.
func (sb *SourceBase) Active() bool {
	return sb.active
}

// SetSelected shows the selected frame and the handles in the geometry view.
func (sb *SourceBase) SetSelected(on bool) {
	sb.selected = on
	if on {
		sb.frames.SetActive(1)
	} else {
		sb.frames.SetActive(0)
	}
	sb.handles.Visible = on
}

// Selected reports whether the source is selected.
func (sb *SourceBase) Selected() bool {
	return sb.selected
}

// SetTexture displays img on the surface of every view.
func (sb *SourceBase) SetTexture(img *ebiten.Image) {
	for _, s := range sb.surfaces {
		if s != nil {
			s.SetImage(img)
		}
	}
}

// SetAlpha sets the opacity of the rendered content.
func (sb *SourceBase) SetAlpha(a float64) {
	if s := sb.surfaces[ViewRendering]; s != nil {
		s.Color.A = clamp01(a)
	}
}

// SetAspectRatio stretches the content of every view horizontally so that a
// w/h texture keeps its proportions.
func (sb *SourceBase) SetAspectRatio(r float32) {
	if r <= 0 {
		return
	}
	sb.aspect = r
	for _, g := range sb.groups {
		if g == nil {
			continue
		}
		for _, c := range g.children {
			if _, ok := c.(*Symbol); ok {
				continue
			}
			b := c.base()
			b.SetScale(mgl32.Vec3{r, b.Scale.Y(), b.Scale.Z()})
		}
	}
}

// AspectRatio returns the horizontal stretch applied by SetAspectRatio.
func (sb *SourceBase) AspectRatio() float32 {
	return sb.aspect
}

// Dispose disposes the view subgraphs, detaching them from any scene.
func (sb *SourceBase) Dispose() {
	for i, g := range sb.groups {
		if g != nil {
			g.Dispose()
			sb.groups[i] = nil
			sb.surfaces[i] = nil
		}
	}
	sb.frames, sb.handles, sb.symbol = nil, nil, nil
}
