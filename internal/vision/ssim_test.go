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
	"math/rand"
	"testing"

	"github.com/zeebo/assert"
)

// gradientPlane builds a deterministic non-uniform test image.
func gradientPlane(w, h int) Plane {
	p := NewPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p.Pix[y*w+x] = uint8((x*7 + y*13) % 256)
		}
	}
	return p
}

func TestSSIMIdenticalImages(t *testing.T) {
	p := gradientPlane(64, 48)
	score := SSIM(p, p.Clone())
	if score < 0.9999 {
		t.Fatalf("identical images scored %v, want 1.0", score)
	}
}

func TestSSIMMismatchedDimensions(t *testing.T) {
	assert.Equal(t, 0.0, SSIM(NewPlane(10, 10), NewPlane(20, 20)))
	assert.Equal(t, 0.0, SSIM(NewPlane(0, 0), NewPlane(0, 0)))
}

func TestSSIMBoundedForNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := NewPlane(32, 32)
	b := NewPlane(32, 32)
	for i := range a.Pix {
		a.Pix[i] = uint8(rng.Intn(256))
		b.Pix[i] = uint8(rng.Intn(256))
	}
	score := SSIM(a, b)
	assert.True(t, score >= 0 && score <= 1)
	// Two unrelated noise fields should not look similar.
	assert.True(t, score < 0.5)
}

func TestSSIMSmallerThanWindow(t *testing.T) {
	a := gradientPlane(3, 3)
	score := SSIM(a, a.Clone())
	if score < 0.9999 {
		t.Fatalf("identical 3x3 images scored %v, want 1.0", score)
	}
}

func TestSSIMDetectsLocalChange(t *testing.T) {
	a := gradientPlane(64, 48)
	b := a.Clone()
	MaskRects(b, []image.Rectangle{image.Rect(10, 10, 40, 30)})
	score := SSIM(a, b)
	assert.True(t, score < 1.0)
}

func TestMaskRectsZeroesAndClamps(t *testing.T) {
	p := gradientPlane(16, 16)
	MaskRects(p, []image.Rectangle{image.Rect(8, 8, 100, 100)})
	for y := 8; y < 16; y++ {
		for x := 8; x < 16; x++ {
			assert.Equal(t, uint8(0), p.At(x, y))
		}
	}
	// Outside the rect is untouched.
	assert.Equal(t, gradientPlane(16, 16).At(0, 0), p.At(0, 0))

	// A rect fully out of bounds is a no-op.
	MaskRects(p, []image.Rectangle{image.Rect(-10, -10, -1, -1)})
}
