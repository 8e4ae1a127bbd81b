package ai

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"drowsiness/internal/model"
)

const (
	yunetScoreThreshold = 0.6
	yunetNMSThreshold   = 0.3
	yunetTopK           = 5000
)

// YuNetDetector uses OpenCV's FaceDetectorYN for faces and an eye cascade for eyes.
type YuNetDetector struct {
	detector     gocv.FaceDetectorYN
	eyes         gocv.CascadeClassifier
	largestFirst bool
	mu           sync.Mutex
}

func NewYuNetDetector(modelPath string, eyes gocv.CascadeClassifier, largestFirst bool) (*YuNetDetector, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	// Rozmiar wejścia jest ustawiany ponownie dla każdej klatki
	detector := gocv.NewFaceDetectorYNWithParams(
		modelPath,
		"",
		image.Pt(320, 320),
		yunetScoreThreshold,
		yunetNMSThreshold,
		yunetTopK,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{
		detector:     detector,
		eyes:         eyes,
		largestFirst: largestFirst,
	}, nil
}

func (d *YuNetDetector) DetectFaces(frame gocv.Mat) ([]model.Region, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	d.detector.SetInputSize(image.Pt(frame.Cols(), frame.Rows()))

	out := gocv.NewMat()
	defer out.Close()

	d.detector.Detect(frame, &out)

	// Kolumny 0-3: x, y, w, h w pikselach; 4-13: punkty charakterystyczne; 14: wynik
	faces := make([]model.Region, 0, out.Rows())
	for r := 0; r < out.Rows(); r++ {
		faces = append(faces, model.Region{
			X:      int(out.GetFloatAt(r, 0)),
			Y:      int(out.GetFloatAt(r, 1)),
			Width:  int(out.GetFloatAt(r, 2)),
			Height: int(out.GetFloatAt(r, 3)),
		})
	}

	return OrderFaces(faces, d.largestFirst), nil
}

func (d *YuNetDetector) DetectEyes(frame gocv.Mat, face model.Region) ([]model.Region, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	gray, err := toGray(frame)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	return detectEyes(&d.eyes, gray, face), nil
}

func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.detector.Close()
	return d.eyes.Close()
}
