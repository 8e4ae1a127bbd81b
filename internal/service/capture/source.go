// Package capture supplies frames from a camera, video file or stream.
package capture

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gocv.io/x/gocv"
)

// ErrEndOfStream is returned by Next when the source has no more frames.
var ErrEndOfStream = errors.New("end of stream")

// Frame is a single image sample. Image is owned by the Source and stays
// valid only until the next call to Next.
type Frame struct {
	Index     int
	Timestamp time.Time
	Image     gocv.Mat
}

// Source supplies frames in arrival order.
type Source interface {
	Next() (Frame, error)
	Close() error
}

// VideoSource reads frames through an OpenCV VideoCapture.
type VideoSource struct {
	endpoint string
	capture  *gocv.VideoCapture
	img      gocv.Mat
	index    int
	now      func() time.Time
}

// ParseEndpoint converts "0", "1", ... into a device id and leaves
// file paths and stream URLs as strings.
func ParseEndpoint(endpoint string) interface{} {
	trimmed := strings.TrimSpace(endpoint)
	if id, err := strconv.Atoi(trimmed); err == nil && id >= 0 {
		return id
	}
	return trimmed
}

// OpenVideoSource opens the camera or stream named by endpoint.
func OpenVideoSource(endpoint string) (*VideoSource, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("frame source endpoint is empty")
	}

	capture, err := gocv.OpenVideoCapture(ParseEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to open video capture %s: %w", endpoint, err)
	}

	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video capture %s is not opened", endpoint)
	}

	return &VideoSource{
		endpoint: endpoint,
		capture:  capture,
		img:      gocv.NewMat(),
		now:      time.Now,
	}, nil
}

// Next blocks until a frame is read. A failed or empty read ends the stream.
func (s *VideoSource) Next() (Frame, error) {
	if s.capture == nil {
		return Frame{}, ErrEndOfStream
	}

	if ok := s.capture.Read(&s.img); !ok || s.img.Empty() {
		return Frame{}, ErrEndOfStream
	}

	s.index++
	return Frame{
		Index:     s.index,
		Timestamp: s.now(),
		Image:     s.img,
	}, nil
}

// Endpoint returns the endpoint the source was opened with.
func (s *VideoSource) Endpoint() string {
	return s.endpoint
}

// Close releases the capture device and the frame buffer.
func (s *VideoSource) Close() error {
	var errs []error

	if s.capture != nil {
		if err := s.capture.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close video capture: %w", err))
		}
		s.capture = nil
	}

	if err := s.img.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to release frame buffer: %w", err))
	}

	return errors.Join(errs...)
}
