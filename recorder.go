package vmix

// Recorder consumes the frames produced by a session until it reports
// itself finished. The session stops and drops a finished recorder in the
// same update that observed it.
type Recorder interface {
	AddFrame(frame *FrameBuffer, dt float64)
	Finished() bool
	Stop()
}

// RecorderState is the lifecycle of a recorder. The only transition is
// RecorderActive to RecorderFinished.
type RecorderState uint8

const (
	RecorderActive RecorderState = iota
	RecorderFinished
)

// String returns "active" or "finished".
func (s RecorderState) String() string {
	if s == RecorderFinished {
		return "finished"
	}
	return "active"
}
