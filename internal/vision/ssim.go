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

// Package vision provides the image primitives the scene-detection pipeline
// is built on: grayscale planes, the structural-similarity (SSIM) metric,
// video decoding/seeking, and presenter (face/body) detection and masking.
//
// SSIM here is the windowed formulation: per 7x7 window the local means,
// variances and covariance of the two images are combined into a local score,
// and the image score is the mean of all fully-interior windows. Scores are
// in [0,1] for 8-bit input, 1.0 meaning identical.
package vision

import "image"

// ssimWindow is the side length of the local comparison window.
const ssimWindow = 7

// SSIM regularization constants for 8-bit dynamic range (L=255):
// c1=(0.01*L)^2, c2=(0.03*L)^2. They stabilize the division when local means
// or variances are near zero.
const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)
)

// Plane is a tightly-packed 8-bit grayscale image.
type Plane struct {
	W, H int
	Pix  []uint8
}

// NewPlane allocates a zeroed plane of the given dimensions.
func NewPlane(w, h int) Plane {
	return Plane{W: w, H: h, Pix: make([]uint8, w*h)}
}

// PlaneFromBytes wraps an existing row-major pixel buffer. The buffer is not
// copied; it must hold exactly w*h bytes.
func PlaneFromBytes(w, h int, pix []uint8) Plane {
	return Plane{W: w, H: h, Pix: pix}
}

// Clone returns a deep copy of the plane.
func (p Plane) Clone() Plane {
	out := Plane{W: p.W, H: p.H, Pix: make([]uint8, len(p.Pix))}
	copy(out.Pix, p.Pix)
	return out
}

// At returns the pixel at (x, y). No bounds checking.
func (p Plane) At(x, y int) uint8 {
	return p.Pix[y*p.W+x]
}

// MaskRects blanks the given rectangles in place, clamped to the plane
// bounds. Used to zero out presenter regions before structural comparison.
func MaskRects(p Plane, rects []image.Rectangle) {
	bounds := image.Rect(0, 0, p.W, p.H)
	for _, r := range rects {
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := p.Pix[y*p.W+r.Min.X : y*p.W+r.Max.X]
			for i := range row {
				row[i] = 0
			}
		}
	}
}

// SSIM computes the mean structural similarity between two planes of equal
// dimensions. Inputs smaller than the window are compared as a single window.
// Mismatched dimensions score 0.
func SSIM(a, b Plane) float64 {
	if a.W != b.W || a.H != b.H || a.W == 0 || a.H == 0 {
		return 0
	}

	win := ssimWindow
	if a.W < win {
		win = a.W
	}
	if a.H < win {
		win = a.H
	}

	// Integral images over x, y, x^2, y^2 and x*y let every window sum be
	// read in constant time.
	iw := a.W + 1
	ih := a.H + 1
	sx := make([]float64, iw*ih)
	sy := make([]float64, iw*ih)
	sxx := make([]float64, iw*ih)
	syy := make([]float64, iw*ih)
	sxy := make([]float64, iw*ih)
	for y := 0; y < a.H; y++ {
		for x := 0; x < a.W; x++ {
			pa := float64(a.Pix[y*a.W+x])
			pb := float64(b.Pix[y*a.W+x])
			i := (y+1)*iw + (x + 1)
			up := y*iw + (x + 1)
			left := (y+1)*iw + x
			diag := y*iw + x
			sx[i] = pa + sx[up] + sx[left] - sx[diag]
			sy[i] = pb + sy[up] + sy[left] - sy[diag]
			sxx[i] = pa*pa + sxx[up] + sxx[left] - sxx[diag]
			syy[i] = pb*pb + syy[up] + syy[left] - syy[diag]
			sxy[i] = pa*pb + sxy[up] + sxy[left] - sxy[diag]
		}
	}

	windowSum := func(s []float64, x0, y0 int) float64 {
		x1 := x0 + win
		y1 := y0 + win
		return s[y1*iw+x1] - s[y0*iw+x1] - s[y1*iw+x0] + s[y0*iw+x0]
	}

	np := float64(win * win)
	covNorm := 1.0
	if np > 1 {
		// Unbiased sample (co)variance.
		covNorm = np / (np - 1)
	}

	var total float64
	var count int
	for y0 := 0; y0+win <= a.H; y0++ {
		for x0 := 0; x0+win <= a.W; x0++ {
			ux := windowSum(sx, x0, y0) / np
			uy := windowSum(sy, x0, y0) / np
			vx := covNorm * (windowSum(sxx, x0, y0)/np - ux*ux)
			vy := covNorm * (windowSum(syy, x0, y0)/np - uy*uy)
			vxy := covNorm * (windowSum(sxy, x0, y0)/np - ux*uy)

			a1 := 2*ux*uy + ssimC1
			a2 := 2*vxy + ssimC2
			b1 := ux*ux + uy*uy + ssimC1
			b2 := vx + vy + ssimC2
			total += (a1 * a2) / (b1 * b2)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	score := total / float64(count)
	// Negative local covariance can pull the mean slightly below zero on
	// pathological inputs; the pipeline treats SSIM as a [0,1] similarity.
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
