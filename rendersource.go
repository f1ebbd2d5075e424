package vmix

// RenderSource loops the output of a session back as a source. It shows the
// frame of the previous Update, copied into a buffer of its own since a
// frame buffer cannot be drawn onto itself.
type RenderSource struct {
	SourceBase
	session *Session
	copy    *FrameBuffer
}

// NewRenderSource creates a loopback of session. A nil session makes the
// source failed until SetSession is called.
func NewRenderSource(name string, session *Session) *RenderSource {
	r := &RenderSource{session: session}
	r.init(name, SymbolRender)
	return r
}

// Session returns the looped session.
func (r *RenderSource) Session() *Session {
	return r.session
}

// SetSession changes the looped session.
func (r *RenderSource) SetSession(s *Session) {
	r.session = s
}

// Failed reports whether the source has no session to loop.
func (r *RenderSource) Failed() bool {
	return r.session == nil
}

// Render copies the current output frame of the session.
func (r *RenderSource) Render() {
	if r.session == nil {
		return
	}
	fb := r.session.Frame()
	if fb == nil || fb.image == nil {
		return
	}
	if r.copy == nil || r.copy.w != fb.w || r.copy.h != fb.h {
		if r.copy != nil {
			r.copy.Dispose()
		}
		r.copy = NewFrameBuffer(fb.w, fb.h)
		r.SetTexture(r.copy.image)
		r.SetAspectRatio(fb.AspectRatio())
	}
	r.copy.Clear()
	r.copy.image.DrawImage(fb.image, nil)
}

// Dispose releases the copy buffer.
func (r *RenderSource) Dispose() {
	if r.copy != nil {
		r.copy.Dispose()
		r.copy = nil
	}
	r.SourceBase.Dispose()
}
