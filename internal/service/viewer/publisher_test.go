package viewer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"testing"

	"gocv.io/x/gocv"

	"drowsiness/internal/dto"
	"drowsiness/internal/logger"
	"drowsiness/internal/model"
)

type fakeHub struct {
	clients  int
	messages [][]byte
}

func (h *fakeHub) Broadcast(message []byte) bool {
	h.messages = append(h.messages, message)
	return true
}

func (h *fakeHub) GetClientCount() int {
	return h.clients
}

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func decodeThumbnail(t *testing.T, encoded string) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("Invalid base64: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Invalid jpeg: %v", err)
	}
	return img
}

func TestEncodeThumbnail(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		maxWidth   int
		wantWidth  int
		wantHeight int
	}{
		{"downscaled", 1280, 720, 640, 640, 360},
		{"never upscaled", 320, 240, 640, 320, 240},
		{"no limit", 800, 600, 0, 800, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeThumbnail(solidImage(tt.width, tt.height), tt.maxWidth, 70)
			if err != nil {
				t.Fatalf("EncodeThumbnail failed: %v", err)
			}

			img := decodeThumbnail(t, encoded)
			if img.Bounds().Dx() != tt.wantWidth || img.Bounds().Dy() != tt.wantHeight {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantWidth, tt.wantHeight, img.Bounds().Dx(), img.Bounds().Dy())
			}
		})
	}
}

func TestPublisher_SkipsWithoutViewers(t *testing.T) {
	hub := &fakeHub{}
	p := NewPublisher(hub, 640, 70, logger.NewWriterLogger(io.Discard))

	p.Publish(gocv.Mat{}, dto.FrameStatus{Camera: "driver"})

	if len(hub.messages) != 0 {
		t.Errorf("Expected no broadcast without viewers, got %d", len(hub.messages))
	}
}

func TestPublisher_StatusOnlyForEmptyFrame(t *testing.T) {
	hub := &fakeHub{clients: 1}
	p := NewPublisher(hub, 640, 70, logger.NewWriterLogger(io.Discard))

	frame := gocv.NewMat()
	defer frame.Close()

	p.Publish(frame, dto.FrameStatus{Camera: "driver", Frame: 7, EyeState: model.EyesOpen})

	if len(hub.messages) != 1 {
		t.Fatalf("Expected 1 broadcast, got %d", len(hub.messages))
	}

	var msg struct {
		Camera string          `json:"camera"`
		Image  string          `json:"image"`
		Status json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(hub.messages[0], &msg); err != nil {
		t.Fatalf("Invalid message: %v", err)
	}
	if msg.Camera != "driver" || msg.Image != "" {
		t.Errorf("Unexpected message %+v", msg)
	}
	if !bytes.Contains(msg.Status, []byte(`"eyeState":"open"`)) {
		t.Errorf("Status missing eye state: %s", msg.Status)
	}
}
