// Package viewer streams annotated thumbnails and frame status to remote viewers.
package viewer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"drowsiness/internal/dto"
	"drowsiness/internal/logger"
	"drowsiness/internal/service/display"
)

// Broadcaster is the part of the websocket hub the publisher needs.
type Broadcaster interface {
	Broadcast(message []byte) bool
	GetClientCount() int
}

type Publisher struct {
	hub      Broadcaster
	maxWidth int
	quality  int
	logger   *logger.Logger
}

func NewPublisher(hub Broadcaster, maxWidth, quality int, logger *logger.Logger) *Publisher {
	return &Publisher{
		hub:      hub,
		maxWidth: maxWidth,
		quality:  quality,
		logger:   logger,
	}
}

// Publish does nothing while nobody is watching.
func (p *Publisher) Publish(frame gocv.Mat, status dto.FrameStatus) {
	if p.hub.GetClientCount() == 0 {
		return
	}

	msg := dto.ViewerMessage{Camera: status.Camera, Status: status}

	if !frame.Empty() {
		encoded, err := p.snapshot(frame, status)
		if err != nil {
			p.logger.Error("Failed to encode viewer frame: %v", err)
		} else {
			msg.Image = encoded
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("Failed to marshal viewer message: %v", err)
		return
	}

	p.hub.Broadcast(data)
}

func (p *Publisher) snapshot(frame gocv.Mat, status dto.FrameStatus) (string, error) {
	annotated := frame.Clone()
	defer annotated.Close()

	if err := display.Annotate(&annotated, status); err != nil {
		return "", err
	}

	img, err := annotated.ToImage()
	if err != nil {
		return "", fmt.Errorf("failed to convert frame: %v", err)
	}

	return EncodeThumbnail(img, p.maxWidth, p.quality)
}

// EncodeThumbnail scales img down to maxWidth (never up) and returns it as base64 JPEG.
func EncodeThumbnail(img image.Image, maxWidth, quality int) (string, error) {
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Linear)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
