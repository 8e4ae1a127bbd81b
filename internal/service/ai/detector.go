package ai

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gocv.io/x/gocv"

	"drowsiness/internal/config"
	"drowsiness/internal/logger"
	"drowsiness/internal/model"
)

// RegionDetector finds faces in a frame and eyes inside a face.
// Zero detections is a valid result, not an error.
type RegionDetector interface {
	DetectFaces(frame gocv.Mat) ([]model.Region, error)
	DetectEyes(frame gocv.Mat, face model.Region) ([]model.Region, error)
	Close() error
}

const (
	BackendHaar  = "haar"
	BackendYuNet = "yunet"

	OrderScan    = "scan"
	OrderLargest = "largest"
)

// NewDetector builds the face backend selected by FACE_BACKEND. Eyes always
// come from the eye cascade.
func NewDetector(config *config.Config, logger *logger.Logger) (RegionDetector, error) {
	largestFirst := strings.EqualFold(config.FaceOrder, OrderLargest)

	switch strings.ToLower(config.FaceBackend) {
	case "", BackendHaar:
		d, err := NewCascadeDetector(config.FaceCascadePath, config.EyeCascadePath, config.FaceScaleFactor, config.FaceMinNeighbors, largestFirst)
		if err != nil {
			return nil, err
		}
		logger.Info("🧠 Haar cascade detector ready (scale %.2f, neighbors %d, order %s)",
			config.FaceScaleFactor, config.FaceMinNeighbors, config.FaceOrder)
		return d, nil

	case BackendYuNet:
		eyes, err := loadCascade(config.EyeCascadePath)
		if err != nil {
			return nil, err
		}
		d, err := NewYuNetDetector(config.YuNetModelPath, eyes, largestFirst)
		if err != nil {
			eyes.Close()
			return nil, err
		}
		logger.Info("🧠 YuNet face detector ready (%s)", config.YuNetModelPath)
		return d, nil
	}

	return nil, fmt.Errorf("unknown face backend: %s", config.FaceBackend)
}

func loadCascade(path string) (gocv.CascadeClassifier, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return gocv.CascadeClassifier{}, fmt.Errorf("cascade file not found: %s", path)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return gocv.CascadeClassifier{}, fmt.Errorf("failed to load cascade: %s", path)
	}
	return classifier, nil
}

// OrderFaces sorts faces largest-first when requested. The sort is stable,
// so equal-sized faces keep their scan order.
func OrderFaces(faces []model.Region, largestFirst bool) []model.Region {
	if !largestFirst || len(faces) < 2 {
		return faces
	}

	sort.SliceStable(faces, func(i, j int) bool {
		return faces[i].Area() > faces[j].Area()
	})
	return faces
}

// clampToFrame keeps a face inside the frame so it can be used as an ROI.
func clampToFrame(face model.Region, cols, rows int) (model.Region, bool) {
	r := model.Region{X: 0, Y: 0, Width: cols, Height: rows}.Rect().Intersect(face.Rect())
	if r.Empty() {
		return model.Region{}, false
	}
	return model.RegionFromRect(r), true
}

// detectEyes runs the eye cascade on the face ROI of a grayscale frame and
// returns eye regions in frame coordinates.
func detectEyes(eyes *gocv.CascadeClassifier, gray gocv.Mat, face model.Region) []model.Region {
	roi, ok := clampToFrame(face, gray.Cols(), gray.Rows())
	if !ok {
		return nil
	}

	faceGray := gray.Region(roi.Rect())
	defer faceGray.Close()

	rects := eyes.DetectMultiScale(faceGray)
	regions := make([]model.Region, 0, len(rects))
	for _, r := range rects {
		regions = append(regions, model.RegionFromRect(r).Offset(roi.X, roi.Y))
	}
	return regions
}

func toGray(frame gocv.Mat) (gocv.Mat, error) {
	if frame.Empty() {
		return gocv.Mat{}, fmt.Errorf("empty frame")
	}

	gray := gocv.NewMat()
	if frame.Channels() == 1 {
		frame.CopyTo(&gray)
		return gray, nil
	}

	if err := gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray); err != nil {
		gray.Close()
		return gocv.Mat{}, fmt.Errorf("failed to convert image to grayscale: %v", err)
	}
	return gray, nil
}
