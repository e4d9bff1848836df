// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vision

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Presenter geometry heuristics. A detected face only counts as the
// presenter when it sits in the middle of the frame and is large enough;
// small or off-center faces (audience members, thumbnail photos on a slide)
// are masked as faces but contribute no body region.
const (
	// presenterCenterBand is the fraction of the frame width, centered,
	// within which a face center must fall to count as the presenter.
	presenterCenterBand = 0.6
	// presenterMinSizeFrac is the minimum face width or height relative to
	// the frame dimension for presenter status.
	presenterMinSizeFrac = 0.1
	bodyWidthFactor      = 4
	bodyHeightFactor     = 3
)

// FaceDetector wraps a Haar cascade classifier. The model load is expensive,
// so the process shares one read-only detector behind a one-time-init guard.
type FaceDetector struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
}

var (
	faceOnce     sync.Once
	faceDetector *FaceDetector
	faceLoadErr  error
)

// LoadFaceDetector returns the process-wide face detector, loading the
// cascade model from cascadeFile on first call. Subsequent calls return the
// same instance regardless of path.
func LoadFaceDetector(cascadeFile string) (*FaceDetector, error) {
	faceOnce.Do(func() {
		classifier := gocv.NewCascadeClassifier()
		if !classifier.Load(cascadeFile) {
			_ = classifier.Close()
			faceLoadErr = fmt.Errorf("load face cascade %s: model load failed", cascadeFile)
			return
		}
		faceDetector = &FaceDetector{classifier: classifier}
	})
	return faceDetector, faceLoadErr
}

// DetectFaces runs the cascade over one grayscale frame and returns the raw
// face bounding boxes. The classifier is not reentrant, so calls serialize
// on an internal lock; detection on downscaled frames is cheap enough that
// this is not a bottleneck.
func (d *FaceDetector) DetectFaces(gray gocv.Mat) []image.Rectangle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.DetectMultiScale(gray)
}

// PresenterRects applies the presenter heuristics to raw face boxes for a
// frame of the given dimensions. It returns whether any face qualified as a
// notable subject, plus the full mask list: every face box, and one inferred
// upper-body box per notable face.
//
// The body is not separately detected; it is expanded geometrically from the
// face: same horizontal center, 4x the face width, 3x the face height,
// positioned directly below the face, clamped to zero at the left and top
// frame edges.
func PresenterRects(faces []image.Rectangle, frameW, frameH int) (bool, []image.Rectangle) {
	rects := make([]image.Rectangle, 0, len(faces)*2)
	notable := false

	loBand := (1.0 - presenterCenterBand) / 2.0 * float64(frameW)
	hiBand := (1.0 + presenterCenterBand) / 2.0 * float64(frameW)

	for _, face := range faces {
		rects = append(rects, face)

		cx := float64(face.Min.X+face.Max.X) / 2.0
		big := float64(face.Dx()) > presenterMinSizeFrac*float64(frameW) ||
			float64(face.Dy()) > presenterMinSizeFrac*float64(frameH)
		if cx < loBand || cx > hiBand || !big {
			continue
		}
		notable = true
		rects = append(rects, expandBody(face))
	}
	return notable, rects
}

func expandBody(face image.Rectangle) image.Rectangle {
	w := face.Dx()
	h := face.Dy()
	cx := face.Min.X + w/2

	x0 := cx - (bodyWidthFactor*w)/2
	if x0 < 0 {
		x0 = 0
	}
	y0 := face.Max.Y
	if y0 < 0 {
		y0 = 0
	}
	return image.Rect(x0, y0, x0+bodyWidthFactor*w, y0+bodyHeightFactor*h)
}
