package model

// EyeState is the per-frame classification of the primary face.
type EyeState int

const (
	// EyesUnknown means no face was found, so no determination was made for the frame.
	EyesUnknown EyeState = iota
	EyesOpen
	EyesClosed
)

func (s EyeState) String() string {
	switch s {
	case EyesOpen:
		return "open"
	case EyesClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// AwakeState is the state of the drowsiness monitor.
type AwakeState int

const (
	Awake AwakeState = iota
	Alerting
)

func (s AwakeState) String() string {
	if s == Alerting {
		return "alerting"
	}
	return "awake"
}
