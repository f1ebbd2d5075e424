package vmix

import (
	"fmt"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// fakeRenderer records the calls of a session without drawing anything.
type fakeRenderer struct {
	scene    *Scene
	fading   float64
	res      mgl32.Vec3
	updates  int
	draws    int
	disposed bool
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{scene: NewScene()}
}

func (r *fakeRenderer) Scene() *Scene                { return r.scene }
func (r *fakeRenderer) Update(dt float64)            { r.updates++; r.scene.Update(dt) }
func (r *fakeRenderer) Draw()                        { r.draws++ }
func (r *fakeRenderer) Frame() *FrameBuffer          { return nil }
func (r *fakeRenderer) Fading() float64              { return r.fading }
func (r *fakeRenderer) SetFading(f float64)          { r.fading = f }
func (r *fakeRenderer) SetResolution(res mgl32.Vec3) { r.res = res }
func (r *fakeRenderer) Dispose()                     { r.disposed = true }

// testSource counts the calls made by a session.
type testSource struct {
	SourceBase
	log         *[]string
	renders     int
	updates     int
	activations int
	disposals   int
	failed      bool
}

func newTestSource(name string) *testSource {
	s := &testSource{}
	s.init(name, SymbolPoint)
	return s
}

func (s *testSource) Render() {
	s.renders++
	if s.log != nil {
		*s.log = append(*s.log, "render "+s.name)
	}
}

func (s *testSource) Update(dt float64) {
	s.updates++
	if s.log != nil {
		*s.log = append(*s.log, "update "+s.name)
	}
}

func (s *testSource) Failed() bool { return s.failed }

func (s *testSource) SetActive(on bool) {
	s.activations++
	s.SourceBase.SetActive(on)
}

func (s *testSource) Dispose() {
	s.disposals++
	s.SourceBase.Dispose()
}

// testRecorder finishes after limit frames, never when limit is zero.
type testRecorder struct {
	limit   int
	frames  int
	stopped int
}

func (r *testRecorder) AddFrame(*FrameBuffer, float64) { r.frames++ }
func (r *testRecorder) Finished() bool {
	return r.stopped > 0 || (r.limit > 0 && r.frames >= r.limit)
}
func (r *testRecorder) Stop() { r.stopped++ }

func newTestSession() (*Session, *fakeRenderer) {
	r := newFakeRenderer()
	return NewSession(WithRenderer(r)), r
}

func TestAddSourceInsertsAtFront(t *testing.T) {
	s, r := newTestSession()
	a, b := newTestSource("a"), newTestSource("b")
	idA := s.AddSource(a)
	idB := s.AddSource(b)

	if s.At(0) != Source(b) || s.At(1) != Source(a) {
		t.Fatal("the last added source should be at the front")
	}
	if idA == idB {
		t.Error("sources should get distinct ids")
	}
	if s.ByID(idA) != Source(a) {
		t.Error("ByID should find a")
	}
	ws := r.Scene().WS()
	if !ws.Contains(a.Group(ViewRendering)) || !ws.Contains(b.Group(ViewRendering)) {
		t.Error("rendering groups should be attached to the workspace")
	}
}

func TestAddSourceTwice(t *testing.T) {
	s, r := newTestSession()
	a := newTestSource("a")
	id := s.AddSource(a)
	if again := s.AddSource(a); again != id {
		t.Errorf("second AddSource = %d, want %d", again, id)
	}
	if s.NumSources() != 1 {
		t.Errorf("NumSources = %d, want 1", s.NumSources())
	}
	if n := r.Scene().WS().NumChildren(); n != 1 {
		t.Errorf("workspace has %d children, want 1", n)
	}
}

func TestAddNilSourcePanics(t *testing.T) {
	s, _ := newTestSession()
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	s.AddSource(nil)
}

func TestDeleteSource(t *testing.T) {
	s, r := newTestSession()
	a, b, c := newTestSource("a"), newTestSource("b"), newTestSource("c")
	s.AddSource(a)
	s.AddSource(b)
	s.AddSource(c)
	group := b.Group(ViewRendering)

	if got := s.DeleteSource(b); got != 1 {
		t.Errorf("DeleteSource = %d, want 1", got)
	}
	if s.At(1) != Source(a) {
		t.Error("the next source should take the deleted position")
	}
	if b.disposals != 1 {
		t.Errorf("disposals = %d, want 1", b.disposals)
	}
	if r.Scene().WS().Contains(group) {
		t.Error("deleted source should be detached")
	}

	if got := s.DeleteSource(b); got != -1 {
		t.Errorf("second DeleteSource = %d, want -1", got)
	}
	if b.disposals != 1 {
		t.Error("deleting an absent source must not dispose it again")
	}
	if got := s.DeleteSource(a); got != 1 {
		t.Errorf("deleting the last source = %d, want 1", got)
	}
	if s.NumSources() != 1 || s.At(0) != Source(c) {
		t.Error("only c should remain")
	}
}

func TestPopSource(t *testing.T) {
	s, r := newTestSession()
	if s.PopSource() != nil {
		t.Fatal("PopSource on an empty session should return nil")
	}
	a, b := newTestSource("a"), newTestSource("b")
	s.AddSource(a)
	s.AddSource(b)

	got := s.PopSource()
	if got != Source(b) {
		t.Fatal("PopSource should return the front source")
	}
	if b.disposals != 0 {
		t.Error("popped source must not be disposed")
	}
	if b.Group(ViewRendering).Parent() != nil {
		t.Error("popped source should be detached")
	}
	if r.Scene().WS().NumChildren() != 1 || s.NumSources() != 1 {
		t.Error("one source should remain")
	}
	if _, ok := s.ID(b); ok {
		t.Error("popped source should lose its id")
	}
}

func TestFindSources(t *testing.T) {
	s, _ := newTestSession()
	a, b, dup := newTestSource("a"), newTestSource("b"), newTestSource("a")
	s.AddSource(a)
	s.AddSource(b)
	s.AddSource(dup)

	if s.Find("a") != Source(dup) {
		t.Error("Find should return the first match in list order")
	}
	if s.Find("b") != Source(b) {
		t.Error("Find(b) failed")
	}
	if s.Find("missing") != nil {
		t.Error("Find(missing) should be nil")
	}

	if s.FindByNode(b.Surface(ViewGeometry)) != Source(b) {
		t.Error("FindByNode should resolve a node of any view")
	}
	if s.FindByNode(NewSurface("foreign")) != nil {
		t.Error("foreign node should not resolve")
	}
	if s.FindByNode(nil) != nil {
		t.Error("nil node should not resolve")
	}
}

func TestSourceLookups(t *testing.T) {
	s, _ := newTestSession()
	if !s.Empty() {
		t.Error("new session should be empty")
	}
	a := newTestSource("a")
	s.AddSource(a)

	if s.At(-1) != nil || s.At(1) != nil {
		t.Error("At out of range should be nil")
	}
	if s.Index(a) != 0 || s.Index(newTestSource("x")) != -1 {
		t.Error("Index mismatch")
	}
	if got := s.Sources(); len(got) != 1 || got[0] != Source(a) {
		t.Error("Sources should list a")
	}
	if s.ByID(999) != nil {
		t.Error("unknown id should be nil")
	}
}

func TestUpdateOrder(t *testing.T) {
	s, r := newTestSession()
	var log []string
	for _, name := range []string{"a", "b", "c"} {
		src := newTestSource(name)
		src.log = &log
		s.AddSource(src)
	}

	s.Update(1.0 / 60)

	want := []string{"render c", "update c", "render b", "update b", "render a", "update a"}
	assertNames(t, log, want)
	if r.updates != 1 || r.draws != 1 {
		t.Errorf("renderer updates/draws = %d/%d, want 1/1", r.updates, r.draws)
	}
}

func TestUpdateSkipsFailedSource(t *testing.T) {
	s, _ := newTestSession()
	a, b := newTestSource("a"), newTestSource("b")
	b.failed = true
	s.AddSource(a)
	s.AddSource(b)

	s.Update(0)
	if b.renders != 0 || b.updates != 0 {
		t.Error("failed source should not render or update")
	}
	if a.renders != 1 || a.updates != 1 {
		t.Error("healthy source should render and update")
	}
	if s.FailedSource() != Source(b) {
		t.Error("FailedSource should report b")
	}
	if s.Stats().FailedFrames != 1 {
		t.Errorf("FailedFrames = %d, want 1", s.Stats().FailedFrames)
	}

	b.failed = false
	s.Update(0)
	if s.FailedSource() != nil {
		t.Error("FailedSource should reset on the next update")
	}
	if s.Index(b) < 0 {
		t.Error("failed sources stay in the session")
	}
}

func TestUpdateKeepsLastFailedSource(t *testing.T) {
	s, _ := newTestSession()
	a, b, c := newTestSource("a"), newTestSource("b"), newTestSource("c")
	a.failed = true
	c.failed = true
	s.AddSource(a)
	s.AddSource(b)
	s.AddSource(c)

	// list order is c, b, a
	s.Update(0)
	if s.FailedSource() != Source(a) {
		t.Error("FailedSource should be a, the later failing source in list order")
	}
	if b.renders != 1 || a.renders != 0 || c.renders != 0 {
		t.Error("only the healthy source should render")
	}
	if s.Stats().FailedFrames != 1 {
		t.Errorf("FailedFrames = %d, want 1", s.Stats().FailedFrames)
	}
}

func TestFadingConverges(t *testing.T) {
	s, _ := newTestSession()
	s.SetFading(1, false)
	if s.Fading() != 1 || s.CurrentFading() != 0 {
		t.Fatalf("target/current = %v/%v, want 1/0", s.Fading(), s.CurrentFading())
	}

	s.Update(0)
	if s.CurrentFading() != 0.5 {
		t.Errorf("after one update = %v, want 0.5", s.CurrentFading())
	}

	steps := 1
	prev := s.CurrentFading()
	for s.CurrentFading() != 1 && steps < 100 {
		s.Update(0)
		steps++
		if s.CurrentFading() < prev {
			t.Fatal("fading should approach its target monotonically")
		}
		prev = s.CurrentFading()
	}
	if steps > 15 {
		t.Errorf("fading took %d updates, want at most 15", steps)
	}

	s.Update(0)
	if s.CurrentFading() != 1 {
		t.Error("fading should stay on its target")
	}
}

func TestSetFadingClamps(t *testing.T) {
	s, _ := newTestSession()
	s.SetFading(2, false)
	if s.Fading() != 1 {
		t.Errorf("Fading = %v, want 1", s.Fading())
	}
	s.SetFading(-1, true)
	if s.Fading() != 0 || s.CurrentFading() != 0 {
		t.Error("negative fading should clamp to 0")
	}
	s.SetFading(0.3, true)
	if s.CurrentFading() != 0.3 {
		t.Errorf("forced fading = %v, want 0.3", s.CurrentFading())
	}
}

func TestSetActiveOnlyOnChange(t *testing.T) {
	s, _ := newTestSession()
	a := newTestSource("a")
	s.AddSource(a)

	s.SetActive(true)
	if a.activations != 0 {
		t.Error("activating an active session should do nothing")
	}
	s.SetActive(false)
	if a.activations != 1 || a.Active() || s.Active() {
		t.Error("deactivation should reach the source")
	}
	if a.Group(ViewRendering).Visible {
		t.Error("inactive source should be hidden from rendering")
	}
	s.SetActive(false)
	if a.activations != 1 {
		t.Error("repeated deactivation should do nothing")
	}
}

func TestRecordersPrunedWhenFinished(t *testing.T) {
	s, _ := newTestSession()
	short := &testRecorder{limit: 3}
	long := &testRecorder{}
	s.AddRecorder(nil)
	s.AddRecorder(short)
	s.AddRecorder(long)

	if s.FrontRecorder() != Recorder(short) {
		t.Fatal("FrontRecorder should be the oldest recorder")
	}
	for i := 0; i < 2; i++ {
		s.Update(0)
	}
	if len(s.Recorders()) != 2 {
		t.Fatal("both recorders should still run")
	}

	s.Update(0)
	if short.frames != 3 || short.stopped != 1 {
		t.Errorf("short recorder frames/stopped = %d/%d, want 3/1", short.frames, short.stopped)
	}
	if got := s.Recorders(); len(got) != 1 || got[0] != Recorder(long) {
		t.Error("finished recorder should be dropped")
	}
	if s.Stats().Recorders != 1 {
		t.Errorf("Stats.Recorders = %d, want 1", s.Stats().Recorders)
	}
}

func TestStopRecorders(t *testing.T) {
	s, _ := newTestSession()
	r := &testRecorder{}
	s.AddRecorder(r)

	s.StopRecorders()
	if r.stopped != 1 {
		t.Error("StopRecorders should stop the recorder")
	}
	if len(s.Recorders()) != 1 {
		t.Error("stopped recorders stay until the next update")
	}
	s.Update(0)
	if len(s.Recorders()) != 0 {
		t.Error("stopped recorder should be dropped by Update")
	}
}

func TestClearRecorders(t *testing.T) {
	s, _ := newTestSession()
	r := &testRecorder{}
	s.AddRecorder(r)
	s.ClearRecorders()
	if r.stopped != 1 || s.FrontRecorder() != nil {
		t.Error("ClearRecorders should stop and drop")
	}
}

func TestTransferRecorders(t *testing.T) {
	src, _ := newTestSession()
	dst, _ := newTestSession()
	r1, r2 := &testRecorder{}, &testRecorder{}
	src.AddRecorder(r1)
	src.AddRecorder(r2)

	src.TransferRecorders(nil)
	src.TransferRecorders(src)
	if len(src.Recorders()) != 2 {
		t.Fatal("transfer to nil or self should do nothing")
	}

	src.TransferRecorders(dst)
	if len(src.Recorders()) != 0 {
		t.Error("source session should have no recorder left")
	}
	got := dst.Recorders()
	if len(got) != 2 || got[0] != Recorder(r1) || got[1] != Recorder(r2) {
		t.Error("recorders should move in order")
	}
	if r1.stopped != 0 || r2.stopped != 0 {
		t.Error("transferred recorders keep running")
	}
}

func TestCloseDisposesEverything(t *testing.T) {
	s, r := newTestSession()
	a, b := newTestSource("a"), newTestSource("b")
	s.AddSource(a)
	s.AddSource(b)
	rec := &testRecorder{}
	s.AddRecorder(rec)

	s.Close()
	if a.disposals != 1 || b.disposals != 1 {
		t.Error("Close should dispose every source")
	}
	if !s.Empty() {
		t.Error("Close should empty the session")
	}
	if rec.stopped != 1 || len(s.Recorders()) != 0 {
		t.Error("Close should stop the recorders")
	}
	if !r.disposed {
		t.Error("Close should dispose the renderer")
	}

	s.Close()
	if a.disposals != 1 || rec.stopped != 1 {
		t.Error("second Close should do nothing")
	}
}

func TestConcurrentAddSource(t *testing.T) {
	s, _ := newTestSession()
	const workers, perWorker = 8, 25

	var wg sync.WaitGroup
	ids := make(chan SourceID, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- s.AddSource(newTestSource(fmt.Sprintf("w%d-%d", w, i)))
			}
		}(w)
	}
	wg.Wait()
	close(ids)

	if s.NumSources() != workers*perWorker {
		t.Errorf("NumSources = %d, want %d", s.NumSources(), workers*perWorker)
	}
	seen := make(map[SourceID]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("id %d assigned twice", id)
		}
		seen[id] = true
	}
}

func TestUpdateWhileAddingSources(t *testing.T) {
	s, _ := newTestSession()
	const total = 100

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < total; i++ {
			s.AddSource(newTestSource(fmt.Sprintf("src%d", i)))
		}
	}()

	last := 0
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		s.Update(1.0 / 60)
		n := s.Stats().Sources
		if n < last || n > total {
			t.Fatalf("Stats().Sources = %d after %d", n, last)
		}
		last = n
	}

	s.Update(0)
	if got := s.Stats().Sources; got != total {
		t.Errorf("Stats().Sources = %d, want %d", got, total)
	}
}

func TestSessionConfigFromSettings(t *testing.T) {
	st := DefaultSettings()
	st.Width, st.Height = 640, 480
	st.Views[ViewGeometry.String()] = ViewSettings{
		Scale:       [3]float32{2, 2, 1},
		Translation: [3]float32{0.5, 0, 0},
	}
	s := NewSession(WithSettings(st), WithRenderer(newFakeRenderer()))

	assertVec3(t, "geometry scale", s.Config(ViewGeometry).Scale, mgl32.Vec3{2, 2, 1})
	assertVec3(t, "geometry translation", s.Config(ViewGeometry).Translation, mgl32.Vec3{0.5, 0, 0})
	assertVec3(t, "layer scale", s.Config(ViewLayer).Scale, mgl32.Vec3{1, 1, 1})
	assertVec3(t, "resolution", s.Resolution(), mgl32.Vec3{640, 480, 0})
	if s.Config(ViewMode(42)) != nil {
		t.Error("unknown view should have no config")
	}
}

func TestSetResolution(t *testing.T) {
	s, r := newTestSession()
	s.SetResolution(mgl32.Vec3{800, 600, 0})
	assertVec3(t, "renderer", r.res, mgl32.Vec3{800, 600, 0})
	assertVec3(t, "session", s.Resolution(), mgl32.Vec3{800, 600, 0})
}

func TestSessionStats(t *testing.T) {
	s, _ := newTestSession()
	s.AddSource(newTestSource("a"))
	s.SetFading(0.5, true)
	s.Update(0)
	s.Update(0)

	st := s.Stats()
	if st.Frames != 2 || st.Sources != 1 || st.FailedFrames != 0 {
		t.Errorf("stats = %+v", st)
	}
	if st.Fading != 0.5 {
		t.Errorf("Stats.Fading = %v, want 0.5", st.Fading)
	}
}

func TestNewSessionDefaultRenderer(t *testing.T) {
	st := DefaultSettings()
	st.Width, st.Height = 32, 16
	s := NewSession(WithSettings(st))
	defer s.Close()

	fb := s.Frame()
	if fb == nil || fb.Width() != 32 || fb.Height() != 16 {
		t.Fatal("default renderer should follow the settings resolution")
	}
	if s.Settings().FadingEpsilon != DefaultFadingEpsilon {
		t.Error("missing epsilon should fall back to the default")
	}
}
