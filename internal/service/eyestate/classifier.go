// Package eyestate reduces the detector output for a frame to a single EyeState.
package eyestate

import "drowsiness/internal/model"

// Primary returns the face the decision is made on: the first one reported by the detector.
func Primary(faces []model.Region) (model.Region, bool) {
	if len(faces) == 0 {
		return model.Region{}, false
	}
	return faces[0], true
}

// Classify returns EyesUnknown when no face is present, EyesClosed when the
// primary face has no eye regions and EyesOpen otherwise.
// eyesIn is only called for the primary face.
func Classify(faces []model.Region, eyesIn func(model.Region) []model.Region) model.EyeState {
	face, ok := Primary(faces)
	if !ok {
		return model.EyesUnknown
	}

	if len(eyesIn(face)) == 0 {
		return model.EyesClosed
	}
	return model.EyesOpen
}
