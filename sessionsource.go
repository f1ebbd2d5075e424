package vmix

import (
	"context"
	"sync/atomic"
)

type sessionResult struct {
	session *Session
	err     error
}

// SessionSource displays the output of a nested session. The nested session
// is loaded on a background goroutine; the source reports failed when the
// load fails.
type SessionSource struct {
	SourceBase

	path    string
	session *Session
	failed  atomic.Bool

	loading chan sessionResult
	// cancel outlives a successful load: the nested session's own sources
	// load under the same context and stop when this source reloads or is
	// disposed.
	cancel context.CancelFunc
}

// NewSessionSource creates a source without session. Call Load to give it one.
func NewSessionSource(name string) *SessionSource {
	s := &SessionSource{}
	s.init(name, SymbolSession)
	return s
}

// Load starts loading the session at path with load. An empty path gives the
// source a new empty session right away. A previous load still running is
// cancelled.
func (s *SessionSource) Load(ctx context.Context, path string, load SessionLoader) {
	s.cancelLoad()
	s.path = path
	s.failed.Store(false)

	if path == "" {
		s.setSession(NewSession())
		return
	}
	if load == nil {
		Logger().Warn("session source has no loader", "source", s.name, "path", path)
		s.failed.Store(true)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan sessionResult, 1)
	s.loading, s.cancel = ch, cancel
	go func() {
		sess, err := load(ctx, path)
		ch <- sessionResult{session: sess, err: err}
	}()
}

// Loading reports whether a load is still in progress.
func (s *SessionSource) Loading() bool {
	return s.loading != nil
}

// Path returns the file of the nested session.
func (s *SessionSource) Path() string {
	return s.path
}

// Session returns the nested session, nil until loaded.
func (s *SessionSource) Session() *Session {
	return s.session
}

// Detach hands the nested session over to the caller. The source keeps
// displaying nothing afterwards.
func (s *SessionSource) Detach() *Session {
	sess := s.session
	s.session = nil
	s.SetTexture(nil)
	return sess
}

// Failed reports whether loading the nested session failed.
func (s *SessionSource) Failed() bool {
	return s.failed.Load()
}

// Render shows the last frame of the nested session on the surfaces.
func (s *SessionSource) Render() {
	if s.session == nil {
		return
	}
	if fb := s.session.Frame(); fb != nil {
		s.SetTexture(fb.Image())
	}
}

// Update collects a finished load, then runs one frame of the nested session.
func (s *SessionSource) Update(dt float64) {
	s.poll()
	if s.session != nil {
		s.session.Update(dt)
	}
}

// SetActive forwards the state to the nested session.
func (s *SessionSource) SetActive(on bool) {
	s.SourceBase.SetActive(on)
	if s.session != nil {
		s.session.SetActive(on)
	}
}

// Dispose cancels a pending load and closes the nested session.
func (s *SessionSource) Dispose() {
	s.cancelLoad()
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
	s.SourceBase.Dispose()
}

func (s *SessionSource) poll() {
	if s.loading == nil {
		return
	}
	select {
	case r := <-s.loading:
		s.loading = nil
		if r.err != nil || r.session == nil {
			s.cancel()
			s.cancel = nil
			Logger().Warn("session source load failed", "source", s.name, "path", s.path, "error", r.err)
			s.failed.Store(true)
			return
		}
		s.setSession(r.session)
	default:
	}
}

func (s *SessionSource) setSession(sess *Session) {
	if s.session != nil {
		s.session.Close()
	}
	s.session = sess
	sess.SetActive(s.active)
	if fb := sess.Frame(); fb != nil {
		s.SetTexture(fb.Image())
		s.SetAspectRatio(fb.AspectRatio())
	}
}

// cancelLoad cancels the context of the last load. A load still running is
// abandoned and a session it produces anyway is closed.
func (s *SessionSource) cancelLoad() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.loading == nil {
		return
	}
	ch := s.loading
	s.loading = nil
	go func() {
		if r := <-ch; r.session != nil {
			r.session.Close()
		}
	}()
}
