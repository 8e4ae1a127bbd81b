package dto

import "time"

// AlertEvent is emitted for every frame the monitor decides to alert on.
type AlertEvent struct {
	Camera         string        `json:"camera"`
	Frame          int           `json:"frame"`
	Episode        int           `json:"episode"`
	ClosedDuration time.Duration `json:"closedDuration"`
	Timestamp      time.Time     `json:"timestamp"`
}
