package vmix

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// PNGRecorder writes every frame it receives as a numbered PNG file.
// Encoding runs on a background goroutine; AddFrame only copies the pixels
// and never waits for the encoder. A frame arriving while the queue is full
// is dropped and counted by Dropped.
//
// The recorder finishes after MaxFrames frames or once Duration of frame
// time has been recorded, whichever comes first. Zero disables a limit.
type PNGRecorder struct {
	Dir       string
	Label     string
	MaxFrames int
	Duration  time.Duration

	grab  func(*FrameBuffer) *image.NRGBA
	write func(path string, img image.Image) error

	mu      sync.Mutex
	state   RecorderState
	stopped bool
	frames  int
	dropped int
	elapsed time.Duration

	errMu sync.Mutex
	err   error

	stamp string
	jobs  chan pngJob
	done  chan struct{}
}

type pngJob struct {
	index int
	img   *image.NRGBA
}

// NewPNGRecorder creates a recorder writing into dir. Files are named
// <timestamp>_<label>_<index>.png.
func NewPNGRecorder(dir, label string) *PNGRecorder {
	r := &PNGRecorder{
		Dir:   dir,
		Label: sanitizeLabel(label),
		grab:  (*FrameBuffer).Snapshot,
		write: writePNG,
		stamp: time.Now().Format("20060102_150405"),
		jobs:  make(chan pngJob, 8),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

// AddFrame captures the frame and queues it for encoding. Frames received
// after the recorder finished are ignored.
func (r *PNGRecorder) AddFrame(frame *FrameBuffer, dt float64) {
	if frame == nil || r.Finished() {
		return
	}
	img := r.grab(frame)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == RecorderFinished {
		return
	}
	r.elapsed += time.Duration(dt * float64(time.Second))
	select {
	case r.jobs <- pngJob{index: r.frames, img: img}:
		r.frames++
	default:
		r.dropped++
	}
	if (r.MaxFrames > 0 && r.frames >= r.MaxFrames) || (r.Duration > 0 && r.elapsed >= r.Duration) {
		r.state = RecorderFinished
	}
}

// Finished reports whether the recorder reached a limit or was stopped.
func (r *PNGRecorder) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == RecorderFinished
}

// State returns the current lifecycle state.
func (r *PNGRecorder) State() RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Stop finishes the recorder and lets the worker drain the queued frames.
// It does not wait; use Wait for that.
func (r *PNGRecorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = RecorderFinished
	if !r.stopped {
		r.stopped = true
		close(r.jobs)
	}
}

// Wait blocks until every queued frame is written. Stop must be called first.
func (r *PNGRecorder) Wait() {
	<-r.done
}

// Frames returns the number of frames queued for writing so far.
func (r *PNGRecorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Dropped returns the number of frames skipped because the encoder was
// behind.
func (r *PNGRecorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Err returns the first error met while writing files.
func (r *PNGRecorder) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

// Path returns the file name used for the frame at index.
func (r *PNGRecorder) Path(index int) string {
	return filepath.Join(r.Dir, fmt.Sprintf("%s_%s_%05d.png", r.stamp, r.Label, index))
}

func (r *PNGRecorder) run() {
	defer close(r.done)
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		r.fail(fmt.Errorf("mkdir %s: %w", r.Dir, err))
		for range r.jobs {
		}
		return
	}
	for job := range r.jobs {
		if job.img == nil {
			continue
		}
		if err := r.write(r.Path(job.index), job.img); err != nil {
			r.fail(err)
		}
	}
}

func (r *PNGRecorder) fail(err error) {
	Logger().Warn("recorder write failed", "label", r.Label, "error", err)
	r.errMu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.errMu.Unlock()
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "recording" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "recording"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
