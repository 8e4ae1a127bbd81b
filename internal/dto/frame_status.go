package dto

import (
	"encoding/json"
	"time"

	"drowsiness/internal/model"
)

// FrameStatus describes the outcome of processing one frame.
type FrameStatus struct {
	Session        string           `json:"session"`
	Camera         string           `json:"camera"`
	Frame          int              `json:"frame"`
	Timestamp      time.Time        `json:"timestamp"`
	Faces          []model.Region   `json:"faces"`
	Eyes           []model.Region   `json:"eyes"`
	EyeState       model.EyeState   `json:"-"`
	State          model.AwakeState `json:"-"`
	ClosedDuration time.Duration    `json:"-"`
	Alert          bool             `json:"alert"`
	Episode        int              `json:"episode"`
}

// MarshalJSON renders enums as strings and durations in milliseconds.
func (s FrameStatus) MarshalJSON() ([]byte, error) {
	type Alias FrameStatus
	return json.Marshal(&struct {
		Alias
		EyeState     string `json:"eyeState"`
		State        string `json:"state"`
		ClosedMillis int64  `json:"closedMs"`
	}{
		Alias:        Alias(s),
		EyeState:     s.EyeState.String(),
		State:        s.State.String(),
		ClosedMillis: s.ClosedDuration.Milliseconds(),
	})
}

// ViewerMessage is what viewers receive over the websocket.
type ViewerMessage struct {
	Camera string      `json:"camera"`
	Image  string      `json:"image,omitempty"` // base64 JPEG
	Status FrameStatus `json:"status"`
}
