// Package display renders the annotated camera feed for the operator.
package display

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"drowsiness/internal/dto"
	"drowsiness/internal/logger"
	"drowsiness/internal/model"
)

// Display shows one annotated frame. Show reports true when the operator asked to quit.
type Display interface {
	Show(frame gocv.Mat, status dto.FrameStatus) bool
	Close() error
}

var (
	faceColor    = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	primaryColor = color.RGBA{R: 0, G: 200, B: 255, A: 0}
	eyeColor     = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	alertColor   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// StatusLine is the text drawn at the top of the frame.
func StatusLine(status dto.FrameStatus) string {
	return fmt.Sprintf("eyes: %s  closed: %.1fs  faces: %d",
		status.EyeState, status.ClosedDuration.Seconds(), len(status.Faces))
}

// Annotate draws face and eye rectangles, the status line and, while
// alerting, an ALERT banner. Faces[0] is the monitored face.
func Annotate(img *gocv.Mat, status dto.FrameStatus) error {
	for i, face := range status.Faces {
		c, thickness := faceColor, 2
		if i == 0 {
			c, thickness = primaryColor, 3
		}
		if err := gocv.Rectangle(img, face.Rect(), c, thickness); err != nil {
			return fmt.Errorf("failed to draw face rectangle: %v", err)
		}
	}

	for _, eye := range status.Eyes {
		if err := gocv.Rectangle(img, eye.Rect(), eyeColor, 1); err != nil {
			return fmt.Errorf("failed to draw eye rectangle: %v", err)
		}
	}

	if err := gocv.PutText(img, StatusLine(status), image.Pt(10, 25), gocv.FontHersheySimplex, 0.6, textColor, 2); err != nil {
		return fmt.Errorf("failed to draw text: %v", err)
	}

	if status.State == model.Alerting {
		banner := fmt.Sprintf("ALERT! Driver possibly asleep (%.1fs)", status.ClosedDuration.Seconds())
		if err := gocv.PutText(img, banner, image.Pt(10, img.Rows()-20), gocv.FontHersheySimplex, 0.9, alertColor, 2); err != nil {
			return fmt.Errorf("failed to draw text: %v", err)
		}
	}

	return nil
}

// Window is a local OpenCV window.
type Window struct {
	window   *gocv.Window
	annotate func(img *gocv.Mat, status dto.FrameStatus) error
	logger   *logger.Logger
	warned   bool
}

func NewWindow(title string, logger *logger.Logger) *Window {
	return &Window{
		window:   gocv.NewWindow(title),
		annotate: Annotate,
		logger:   logger,
	}
}

func (w *Window) Show(frame gocv.Mat, status dto.FrameStatus) bool {
	if frame.Empty() {
		return false
	}

	w.overlay(&frame, status)
	w.window.IMShow(frame)

	key := w.window.WaitKey(1)
	return IsQuitKey(key)
}

// overlay draws the annotations; a failed overlay still leaves the frame showable.
// Only the first failure of a streak is logged.
func (w *Window) overlay(frame *gocv.Mat, status dto.FrameStatus) bool {
	if err := w.annotate(frame, status); err != nil {
		if !w.warned {
			w.logger.Warning("Failed to annotate frame %d, showing it without overlay: %v", status.Frame, err)
			w.warned = true
		}
		return false
	}

	w.warned = false
	return true
}

func (w *Window) Close() error {
	return w.window.Close()
}

// IsQuitKey reports whether a WaitKey result is 'q' or 'Q'.
func IsQuitKey(key int) bool {
	k := key & 0xFF
	return key >= 0 && (k == 'q' || k == 'Q')
}

// Headless is used when no window is wanted.
type Headless struct{}

func (Headless) Show(gocv.Mat, dto.FrameStatus) bool { return false }
func (Headless) Close() error                        { return nil }
