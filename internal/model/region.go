package model

import "image"

// Region is an axis-aligned rectangle locating a face or an eye within a frame.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RegionFromRect converts a detector rectangle into a Region.
func RegionFromRect(r image.Rectangle) Region {
	return Region{
		X:      r.Min.X,
		Y:      r.Min.Y,
		Width:  r.Dx(),
		Height: r.Dy(),
	}
}

// Rect returns the region as an image.Rectangle for drawing and ROI extraction.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Area returns width*height, zero for degenerate regions.
func (r Region) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Offset translates a region found inside an ROI back into frame coordinates.
func (r Region) Offset(dx, dy int) Region {
	r.X += dx
	r.Y += dy
	return r
}
