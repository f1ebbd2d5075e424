package vmix

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

// captureLogs routes the package logger to a buffer for the duration of the
// test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(NewLogger(&buf, slog.LevelDebug))
	t.Cleanup(func() { SetLogger(prev) })
	return &buf
}

func withDebugMode(t *testing.T) {
	t.Helper()
	SetDebugMode(true)
	t.Cleanup(func() { SetDebugMode(false) })
}

func expectPanicContaining(t *testing.T, want string) {
	t.Helper()
	r := recover()
	if r == nil {
		t.Fatal("expected panic, got none")
	}
	if msg := fmt.Sprint(r); !strings.Contains(msg, want) {
		t.Errorf("panic message should mention %q, got: %s", want, msg)
	}
}

func TestDebugModeDisposedChildPanics(t *testing.T) {
	withDebugMode(t)
	parent := NewGroup("parent")
	child := NewSurface("child")
	child.Dispose()

	defer expectPanicContaining(t, "disposed")
	parent.Attach(child)
}

func TestDebugModeDisposedParentPanics(t *testing.T) {
	withDebugMode(t)
	parent := NewSwitch("parent")
	parent.Dispose()

	defer expectPanicContaining(t, "disposed")
	parent.Attach(NewSurface("child"))
}

func TestReleaseModeDisposedNodeNoPanic(t *testing.T) {
	SetDebugMode(false)
	child := NewSurface("child")
	child.Dispose()

	NewGroup("parent").Attach(child)
}

func TestDebugModeTreeDepthWarning(t *testing.T) {
	withDebugMode(t)
	logs := captureLogs(t)

	current := NewGroup("root")
	for i := 0; i < debugMaxTreeDepth+5; i++ {
		child := NewGroup(fmt.Sprintf("depth_%d", i))
		current.Attach(child)
		current = child
	}

	if !strings.Contains(logs.String(), "tree depth exceeds threshold") {
		t.Errorf("expected tree depth warning, got: %q", logs.String())
	}
}

func TestDebugModeChildCountWarning(t *testing.T) {
	withDebugMode(t)
	logs := captureLogs(t)

	parent := NewGroup("many_children")
	for i := 0; i < debugMaxChildCount+1; i++ {
		parent.Attach(NewDisk(fmt.Sprintf("c_%d", i)))
	}

	out := logs.String()
	if !strings.Contains(out, "child count exceeds threshold") || !strings.Contains(out, "many_children") {
		t.Errorf("expected child count warning, got: %q", out)
	}
}

func TestDebugModeLogsSessionFrames(t *testing.T) {
	withDebugMode(t)
	logs := captureLogs(t)

	s, _ := newTestSession()
	s.SetFilename("show.yaml")
	s.Update(0)

	out := logs.String()
	if !strings.Contains(out, "session frame") || !strings.Contains(out, "show.yaml") {
		t.Errorf("expected a frame log line, got: %q", out)
	}
}

func TestNewLoggerRenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, slog.LevelInfo)
	l.Warn("failed", "error", errors.New("boom"))
	l.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "err=boom") {
		t.Errorf("error key should be renamed, got: %q", out)
	}
	if !strings.Contains(out, "component=vmix") {
		t.Errorf("component attribute missing, got: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("records below the level should be dropped")
	}
}

func TestSetLoggerNil(t *testing.T) {
	prev := Logger()
	defer SetLogger(prev)

	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("SetLogger(nil) should install a no-op logger")
	}
	Logger().Warn("discarded")
}
