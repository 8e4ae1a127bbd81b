// Package drowsiness accumulates closed-eye time across frames and decides when to alert.
package drowsiness

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"drowsiness/internal/model"
)

// DefaultThreshold is how long the eyes must stay closed before alerting.
const DefaultThreshold = 2 * time.Second

// ErrInvalidThreshold is returned for a zero or negative threshold.
var ErrInvalidThreshold = errors.New("eyes closed threshold must be positive")

// AlertPolicy selects on which ALERTING frames an alert is emitted.
type AlertPolicy int

const (
	// PolicyContinuous emits an alert on every frame of an alerting episode.
	PolicyContinuous AlertPolicy = iota
	// PolicyEdge emits a single alert when an episode starts.
	PolicyEdge
)

func (p AlertPolicy) String() string {
	switch p {
	case PolicyContinuous:
		return "continuous"
	case PolicyEdge:
		return "edge"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy parses "continuous" or "edge" (case-insensitive, empty means continuous).
func ParsePolicy(s string) (AlertPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continuous", "every-frame":
		return PolicyContinuous, nil
	case "edge", "once":
		return PolicyEdge, nil
	default:
		return PolicyContinuous, fmt.Errorf("unknown alert policy %q", s)
	}
}

// Decision is the outcome of one Update.
type Decision struct {
	State          model.AwakeState
	ClosedDuration time.Duration
	// Alert is set when an alert must be dispatched for this frame.
	Alert          bool
	EpisodeStarted bool
	EpisodeEnded   bool
	// Episode numbers alerting episodes from 1; zero before the first one.
	Episode int
}

// Monitor is the drowsiness state machine for one camera. It is not safe
// for concurrent use: a single processing loop owns it.
type Monitor struct {
	threshold      time.Duration
	policy         AlertPolicy
	closedDuration time.Duration
	alerting       bool
	episode        int
}

// NewMonitor creates a monitor in the AWAKE state.
func NewMonitor(threshold time.Duration, policy AlertPolicy) (*Monitor, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidThreshold, threshold)
	}
	if policy != PolicyContinuous && policy != PolicyEdge {
		return nil, fmt.Errorf("unknown alert policy %s", policy)
	}

	return &Monitor{
		threshold: threshold,
		policy:    policy,
	}, nil
}

// Update feeds one frame's eye state and the time elapsed since the previous frame.
// Any state other than EyesClosed resets the accumulated duration.
// A non-positive dt adds nothing.
func (m *Monitor) Update(state model.EyeState, dt time.Duration) Decision {
	if state != model.EyesClosed {
		wasAlerting := m.alerting
		m.closedDuration = 0
		m.alerting = false

		return Decision{
			State:        model.Awake,
			EpisodeEnded: wasAlerting,
			Episode:      m.episode,
		}
	}

	if dt > 0 {
		m.closedDuration += dt
	}

	alerting := m.closedDuration >= m.threshold
	started := alerting && !m.alerting
	m.alerting = alerting
	if started {
		m.episode++
	}

	decision := Decision{
		State:          model.Awake,
		ClosedDuration: m.closedDuration,
		EpisodeStarted: started,
		Episode:        m.episode,
	}

	if alerting {
		decision.State = model.Alerting
		decision.Alert = m.policy == PolicyContinuous || started
	}

	return decision
}

// Reset returns the monitor to AWAKE with nothing accumulated.
func (m *Monitor) Reset() {
	m.closedDuration = 0
	m.alerting = false
}

// ClosedDuration is the time the eyes have been closed without interruption.
// It drops to zero on the first open or undetermined frame.
func (m *Monitor) ClosedDuration() time.Duration {
	return m.closedDuration
}

// Threshold is the closed duration at which the monitor starts alerting.
// It is fixed for the lifetime of the monitor.
func (m *Monitor) Threshold() time.Duration {
	return m.threshold
}

// Policy reports whether alerts fire on every alerting frame or only on
// the frame an episode starts.
func (m *Monitor) Policy() AlertPolicy {
	return m.policy
}

// State reports ALERTING while the accumulated duration meets the threshold.
func (m *Monitor) State() model.AwakeState {
	if m.alerting {
		return model.Alerting
	}
	return model.Awake
}
