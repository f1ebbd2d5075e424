package vmix

import (
	"context"
	"fmt"
)

// SessionCreator fills a freshly created session from a file, adding its
// sources through AddSource.
type SessionCreator interface {
	Load(ctx context.Context, s *Session, path string) error
}

// SessionLoader builds a complete session from a file. SessionSource uses it
// to load nested sessions in the background.
type SessionLoader func(ctx context.Context, path string) (*Session, error)

// LoadSession creates a session and lets creator populate it. On success the
// session remembers path as its filename; on failure the partial session is
// closed and nil is returned.
func LoadSession(ctx context.Context, path string, creator SessionCreator, opts ...SessionOption) (*Session, error) {
	s := NewSession(opts...)
	if err := creator.Load(ctx, s, path); err != nil {
		s.Close()
		return nil, fmt.Errorf("vmix: load session %s: %w", path, err)
	}
	s.SetFilename(path)
	return s, nil
}

// NewSessionLoader returns a SessionLoader calling LoadSession with creator.
func NewSessionLoader(creator SessionCreator, opts ...SessionOption) SessionLoader {
	return func(ctx context.Context, path string) (*Session, error) {
		return LoadSession(ctx, path, creator, opts...)
	}
}
