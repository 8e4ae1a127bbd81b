package ai

import (
	"image"
	"sync"

	"gocv.io/x/gocv"

	"drowsiness/internal/model"
)

// CascadeDetector finds faces and eyes with Haar cascades.
type CascadeDetector struct {
	faces        gocv.CascadeClassifier
	eyes         gocv.CascadeClassifier
	scaleFactor  float64
	minNeighbors int
	largestFirst bool
	mu           sync.Mutex
}

func NewCascadeDetector(facePath, eyePath string, scaleFactor float64, minNeighbors int, largestFirst bool) (*CascadeDetector, error) {
	faces, err := loadCascade(facePath)
	if err != nil {
		return nil, err
	}

	eyes, err := loadCascade(eyePath)
	if err != nil {
		faces.Close()
		return nil, err
	}

	return &CascadeDetector{
		faces:        faces,
		eyes:         eyes,
		scaleFactor:  scaleFactor,
		minNeighbors: minNeighbors,
		largestFirst: largestFirst,
	}, nil
}

func (d *CascadeDetector) DetectFaces(frame gocv.Mat) ([]model.Region, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	gray, err := toGray(frame)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	rects := d.faces.DetectMultiScaleWithParams(gray, d.scaleFactor, d.minNeighbors, 0, image.Point{}, image.Point{})

	faces := make([]model.Region, 0, len(rects))
	for _, r := range rects {
		faces = append(faces, model.RegionFromRect(r))
	}

	return OrderFaces(faces, d.largestFirst), nil
}

func (d *CascadeDetector) DetectEyes(frame gocv.Mat, face model.Region) ([]model.Region, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	gray, err := toGray(frame)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	return detectEyes(&d.eyes, gray, face), nil
}

func (d *CascadeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	errFaces := d.faces.Close()
	errEyes := d.eyes.Close()
	if errFaces != nil {
		return errFaces
	}
	return errEyes
}
