package vmix

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// SourceID identifies a source for as long as it belongs to a session.
// IDs are never reused within a session.
type SourceID uint64

type sourceEntry struct {
	id  SourceID
	src Source
}

// Session owns an ordered list of sources and drives the per-frame pipeline:
// sources render and update, the fading approaches its target, the renderer
// draws and the frame goes to every recorder.
//
// Index 0 of the source list is the front, the most recently added source.
//
// AddSource, DeleteSource and PopSource take the session lock. Lookups do
// not; code reading the list while another goroutine mutates it brackets the
// reads with Lock and Unlock. Update and the lookups are meant for the
// render goroutine.
type Session struct {
	mu       sync.Mutex
	entries  []sourceEntry
	attached map[SourceID]Node
	nextID   SourceID
	scratch  []sourceEntry

	settings     Settings
	config       [len(ViewModes)]*Group
	renderer     Renderer
	fadingTarget float64
	active       bool
	failed       Source
	recorders    []Recorder
	filename     string
	closed       bool

	statsMu sync.Mutex
	stats   Stats
}

// SessionOption configures a Session at construction.
type SessionOption func(*Session)

// WithSettings seeds the output resolution and view configurations.
func WithSettings(st Settings) SessionOption {
	return func(s *Session) {
		s.settings = st.normalized()
	}
}

// WithRenderer replaces the default ebiten RenderView.
func WithRenderer(r Renderer) SessionOption {
	return func(s *Session) {
		s.renderer = r
	}
}

// NewSession creates an empty, active session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		attached: make(map[SourceID]Node),
		settings: DefaultSettings(),
		active:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = NewRenderView(s.settings.Width, s.settings.Height)
	}

	for _, m := range ViewModes {
		g := NewGroup("config/" + m.String())
		v := s.settings.View(m)
		g.Scale = mgl32.Vec3(v.Scale)
		g.Translation = mgl32.Vec3(v.Translation)
		s.config[m] = g
	}
	s.config[ViewRendering].Scale = s.settings.Resolution()
	return s
}

// Lock acquires the source list lock for a multi-step critical section.
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the lock taken by Lock.
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// AddSource attaches the rendering subgraph of src to the render workspace
// and inserts src at the front of the list. Adding a source twice returns
// its existing ID.
func (s *Session) AddSource(src Source) SourceID {
	if src == nil {
		panic("vmix: cannot add nil source")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(src); i >= 0 {
		return s.entries[i].id
	}
	s.nextID++
	e := sourceEntry{id: s.nextID, src: src}
	if g := src.Group(ViewRendering); g != nil {
		s.renderer.Scene().WS().Attach(g)
		s.attached[e.id] = g
	}
	s.entries = slices.Insert(s.entries, 0, e)
	return e.id
}

// DeleteSource detaches, removes and disposes src. It returns the position
// of the element that followed src (NumSources when src was last), or -1
// when src is not in the session.
func (s *Session) DeleteSource(src Source) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(src)
	if i < 0 {
		return -1
	}
	s.removeLocked(i)
	src.Dispose()
	return i
}

// PopSource detaches and removes the front source without disposing it.
// The caller owns the returned source. It returns nil on an empty session.
func (s *Session) PopSource() Source {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return nil
	}
	src := s.entries[0].src
	s.removeLocked(0)
	return src
}

func (s *Session) removeLocked(i int) {
	e := s.entries[i]
	if n, ok := s.attached[e.id]; ok {
		s.renderer.Scene().WS().Detach(n)
		delete(s.attached, e.id)
	}
	s.entries = slices.Delete(s.entries, i, i+1)
}

func (s *Session) indexLocked(src Source) int {
	for i, e := range s.entries {
		if e.src == src {
			return i
		}
	}
	return -1
}

// At returns the source at position i, or nil when i is out of range.
func (s *Session) At(i int) Source {
	if i < 0 || i >= len(s.entries) {
		return nil
	}
	return s.entries[i].src
}

// Index returns the position of src, or -1 when it is not in the session.
func (s *Session) Index(src Source) int {
	return s.indexLocked(src)
}

// ID returns the identifier assigned to src by AddSource.
func (s *Session) ID(src Source) (SourceID, bool) {
	if i := s.indexLocked(src); i >= 0 {
		return s.entries[i].id, true
	}
	return 0, false
}

// ByID returns the source with the given identifier, or nil.
func (s *Session) ByID(id SourceID) Source {
	for _, e := range s.entries {
		if e.id == id {
			return e.src
		}
	}
	return nil
}

// Find returns the first source, in list order, called name.
func (s *Session) Find(name string) Source {
	for _, e := range s.entries {
		if e.src.HasName(name) {
			return e.src
		}
	}
	return nil
}

// FindByNode returns the first source owning n in one of its subgraphs.
func (s *Session) FindByNode(n Node) Source {
	if n == nil {
		return nil
	}
	for _, e := range s.entries {
		if e.src.HasNode(n) {
			return e.src
		}
	}
	return nil
}

// Sources returns a copy of the source list, front first.
func (s *Session) Sources() []Source {
	out := make([]Source, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.src
	}
	return out
}

// NumSources returns the number of sources.
func (s *Session) NumSources() int {
	return len(s.entries)
}

// Empty reports whether the session has no source.
func (s *Session) Empty() bool {
	return len(s.entries) == 0
}

// Update runs one frame of the pipeline. Failed sources are skipped and the
// last one met is kept as FailedSource until the next Update.
func (s *Session) Update(dt float64) {
	start := time.Now()
	s.failed = nil

	s.mu.Lock()
	s.scratch = append(s.scratch[:0], s.entries...)
	s.mu.Unlock()
	numSources := len(s.scratch)

	for _, e := range s.scratch {
		if e.src.Failed() {
			s.failed = e.src
			continue
		}
		e.src.Render()
		e.src.Update(dt)
	}
	clear(s.scratch)
	sourceTime := time.Since(start)

	s.stepFading()

	// The workspace is shared with AddSource and DeleteSource.
	drawStart := time.Now()
	s.mu.Lock()
	s.renderer.Update(dt)
	s.renderer.Draw()
	s.mu.Unlock()
	drawTime := time.Since(drawStart)

	frame := s.renderer.Frame()
	kept := s.recorders[:0]
	for _, r := range s.recorders {
		r.AddFrame(frame, dt)
		if r.Finished() {
			r.Stop()
			continue
		}
		kept = append(kept, r)
	}
	clear(s.recorders[len(kept):])
	s.recorders = kept

	s.statsMu.Lock()
	s.stats.Frames++
	if s.failed != nil {
		s.stats.FailedFrames++
	}
	s.stats.LastSourceTime = sourceTime
	s.stats.LastDrawTime = drawTime
	s.stats.LastUpdate = time.Since(start)
	s.stats.Sources = numSources
	s.stats.Recorders = len(s.recorders)
	s.stats.Fading = s.renderer.Fading()
	st := s.stats
	s.statsMu.Unlock()

	if globalDebug {
		st.debugLog(s.filename)
	}
}

// stepFading halves the distance between the live fading and its target,
// snapping to the target once closer than the epsilon.
func (s *Session) stepFading() {
	f := s.renderer.Fading()
	switch d := s.fadingTarget - f; {
	case math.Abs(d) > s.settings.FadingEpsilon:
		s.renderer.SetFading(f + d/2)
	case d != 0:
		s.renderer.SetFading(s.fadingTarget)
	}
}

// FailedSource returns the last failed source met by the previous Update.
func (s *Session) FailedSource() Source {
	return s.failed
}

// SetActive activates or deactivates every source. Calls that do not change
// the state have no effect.
func (s *Session) SetActive(on bool) {
	if s.active == on {
		return
	}
	s.active = on
	for _, e := range s.entries {
		e.src.SetActive(on)
	}
}

// Active reports whether the session is active.
func (s *Session) Active() bool {
	return s.active
}

// SetFading sets the fading target, clamped to [0,1]. With forceNow the live
// value jumps to the target instead of approaching it over the next frames.
func (s *Session) SetFading(f float64, forceNow bool) {
	s.fadingTarget = clamp01(f)
	if forceNow {
		s.renderer.SetFading(s.fadingTarget)
	}
}

// Fading returns the fading target.
func (s *Session) Fading() float64 {
	return s.fadingTarget
}

// CurrentFading returns the live fading value applied by the renderer.
func (s *Session) CurrentFading() float64 {
	return s.renderer.Fading()
}

// Renderer returns the render pipeline of the session.
func (s *Session) Renderer() Renderer {
	return s.renderer
}

// Frame returns the frame buffer produced by the last Update.
func (s *Session) Frame() *FrameBuffer {
	return s.renderer.Frame()
}

// Config returns the configuration group of a view. Views restore their
// zoom and pan from it and store them back when they change.
func (s *Session) Config(mode ViewMode) *Group {
	if int(mode) >= len(s.config) {
		return nil
	}
	return s.config[mode]
}

// SetResolution resizes the output frame.
func (s *Session) SetResolution(res mgl32.Vec3) {
	s.renderer.SetResolution(res)
	if g := s.config[ViewRendering]; g != nil {
		g.SetScale(res)
	}
}

// Resolution returns the output frame size as (width, height, 0).
func (s *Session) Resolution() mgl32.Vec3 {
	return s.config[ViewRendering].Scale
}

// Settings returns the settings the session was created with.
func (s *Session) Settings() Settings {
	return s.settings
}

// Filename returns the file the session was loaded from or saved to.
func (s *Session) Filename() string {
	return s.filename
}

// SetFilename records the file backing the session.
func (s *Session) SetFilename(name string) {
	s.filename = name
}

// Stats returns the counters of the last Update. Safe for concurrent use.
func (s *Session) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// AddRecorder appends r to the recorders fed by Update.
func (s *Session) AddRecorder(r Recorder) {
	if r == nil {
		return
	}
	s.recorders = append(s.recorders, r)
}

// FrontRecorder returns the oldest recorder, or nil.
func (s *Session) FrontRecorder() Recorder {
	if len(s.recorders) == 0 {
		return nil
	}
	return s.recorders[0]
}

// Recorders returns a copy of the recorder list.
func (s *Session) Recorders() []Recorder {
	return slices.Clone(s.recorders)
}

// StopRecorders stops every recorder. Stopped recorders report finished
// and are dropped by the next Update.
func (s *Session) StopRecorders() {
	for _, r := range s.recorders {
		r.Stop()
	}
}

// ClearRecorders stops and drops every recorder.
func (s *Session) ClearRecorders() {
	s.StopRecorders()
	clear(s.recorders)
	s.recorders = s.recorders[:0]
}

// TransferRecorders moves every recorder to dest without stopping them.
func (s *Session) TransferRecorders(dest *Session) {
	if dest == nil || dest == s {
		return
	}
	dest.recorders = append(dest.recorders, s.recorders...)
	clear(s.recorders)
	s.recorders = s.recorders[:0]
}

// Close stops the recorders, disposes every source and releases the output
// frame. The session must not be used afterwards.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.ClearRecorders()

	s.mu.Lock()
	for len(s.entries) > 0 {
		src := s.entries[0].src
		s.removeLocked(0)
		src.Dispose()
	}
	s.mu.Unlock()

	for i, g := range s.config {
		g.Dispose()
		s.config[i] = nil
	}
	if d, ok := s.renderer.(interface{ Dispose() }); ok {
		d.Dispose()
	}
}
