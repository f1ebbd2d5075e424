package vmix

import (
	"fmt"
	"time"
)

// globalDebug mirrors the most recent SetDebugMode call so that node
// operations (which lack a Session pointer) can check it cheaply.
var globalDebug bool

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// misuse panics, tree depth and child count warnings are logged, and
// per-frame session stats are logged at debug level.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// DebugMode reports whether debug mode is enabled.
func DebugMode() bool {
	return globalDebug
}

// Stats holds per-session counters updated by Session.Update.
type Stats struct {
	Frames         uint64        // completed Update calls
	FailedFrames   uint64        // Update calls that met at least one failed source
	LastUpdate     time.Duration // wall time of the last Update
	LastSourceTime time.Duration // time spent rendering and updating sources
	LastDrawTime   time.Duration // time spent in renderer Update and Draw
	Sources        int
	Recorders      int
	Fading         float64 // live fading value after the last Update
}

// debugLog logs the stats of the last frame.
func (st Stats) debugLog(filename string) {
	Logger().Debug("session frame",
		"session", filename,
		"frame", st.Frames,
		"sources", st.Sources,
		"recorders", st.Recorders,
		"source_time", st.LastSourceTime,
		"draw_time", st.LastDrawTime,
		"total", st.LastUpdate,
	)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Base, op string) {
	if n.disposed {
		panic(fmt.Sprintf("vmix debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Base) {
	depth := 0
	for p := n; p != nil; p = p.parentBase() {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "node", n.Name)
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Base, count int) {
	if count > debugMaxChildCount {
		Logger().Warn("child count exceeds threshold",
			"node", n.Name, "children", count, "threshold", debugMaxChildCount)
	}
}
