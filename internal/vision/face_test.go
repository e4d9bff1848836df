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
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenterRectsCenteredLargeFace(t *testing.T) {
	// A 40x40 face centered in a 320x240 frame: in the center band and
	// larger than 10% of the frame height.
	face := image.Rect(140, 60, 180, 100)
	notable, rects := PresenterRects([]image.Rectangle{face}, 320, 240)

	assert.True(t, notable)
	assert.Len(t, rects, 2, "face plus one inferred body")
	assert.Equal(t, face, rects[0])

	body := rects[1]
	assert.Equal(t, 160, body.Dx(), "body is 4x the face width")
	assert.Equal(t, 120, body.Dy(), "body is 3x the face height")
	assert.Equal(t, face.Max.Y, body.Min.Y, "body starts directly below the face")
	// Same horizontal center as the face.
	assert.Equal(t, face.Min.X+face.Dx()/2, body.Min.X+body.Dx()/2)
}

func TestPresenterRectsOffCenterFace(t *testing.T) {
	// Big enough, but sitting at the left edge, outside the middle 60%.
	face := image.Rect(0, 60, 40, 100)
	notable, rects := PresenterRects([]image.Rectangle{face}, 320, 240)

	assert.False(t, notable)
	assert.Len(t, rects, 1, "face is masked, no body inferred")
}

func TestPresenterRectsSmallFace(t *testing.T) {
	// Centered, but a thumbnail-sized face on a slide.
	face := image.Rect(155, 115, 165, 125)
	notable, rects := PresenterRects([]image.Rectangle{face}, 320, 240)

	assert.False(t, notable)
	assert.Len(t, rects, 1)
}

func TestPresenterRectsBodyClampedAtLeftEdge(t *testing.T) {
	// Face near the left edge of the center band: the expanded body would
	// start at negative x and must clamp to zero.
	face := image.Rect(65, 50, 115, 100)
	notable, rects := PresenterRects([]image.Rectangle{face}, 320, 240)

	assert.True(t, notable)
	body := rects[1]
	assert.Equal(t, 0, body.Min.X)
	assert.Equal(t, 200, body.Dx(), "full body width is kept after clamping")
}

func TestPresenterRectsMultipleFaces(t *testing.T) {
	presenter := image.Rect(140, 60, 180, 100)
	audience := image.Rect(10, 200, 20, 210)
	notable, rects := PresenterRects([]image.Rectangle{audience, presenter}, 320, 240)

	assert.True(t, notable)
	// Both faces masked, one body for the presenter.
	assert.Len(t, rects, 3)
}

func TestPresenterRectsNoFaces(t *testing.T) {
	notable, rects := PresenterRects(nil, 320, 240)
	assert.False(t, notable)
	assert.Empty(t, rects)
}
