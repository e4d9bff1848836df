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

	"gocv.io/x/gocv"
)

// VideoHandle wraps a decoder bound to one source file. It owns the native
// frame count, frame rate and dimensions (probed once at open) and supports
// random access by absolute native frame number. Not safe for concurrent
// use; each pipeline instance owns its handle exclusively.
type VideoHandle struct {
	cap        *gocv.VideoCapture
	path       string
	fps        float64
	frameCount int
	width      int
	height     int
	buf        gocv.Mat
}

// OpenVideo opens the decoder and probes the stream properties. An error
// means the asset is unreadable; a missing file should be checked by the
// caller beforehand, since the decoder cannot distinguish the two cases.
func OpenVideo(path string) (*VideoHandle, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	if !cap.IsOpened() {
		_ = cap.Close()
		return nil, fmt.Errorf("open video %s: decoder could not open stream", path)
	}
	return &VideoHandle{
		cap:        cap,
		path:       path,
		fps:        cap.Get(gocv.VideoCaptureFPS),
		frameCount: int(cap.Get(gocv.VideoCaptureFrameCount)),
		width:      int(cap.Get(gocv.VideoCaptureFrameWidth)),
		height:     int(cap.Get(gocv.VideoCaptureFrameHeight)),
		buf:        gocv.NewMat(),
	}, nil
}

// Path returns the source file path.
func (v *VideoHandle) Path() string { return v.path }

// FPS returns the native frame rate reported by the decoder.
func (v *VideoHandle) FPS() float64 { return v.fps }

// FrameCount returns the native frame count reported by the decoder.
func (v *VideoHandle) FrameCount() int { return v.frameCount }

// Width returns the native frame width in pixels.
func (v *VideoHandle) Width() int { return v.width }

// Height returns the native frame height in pixels.
func (v *VideoHandle) Height() int { return v.height }

// Seek positions the decoder at an absolute native frame number.
func (v *VideoHandle) Seek(frame int) {
	v.cap.Set(gocv.VideoCapturePosFrames, float64(frame))
}

// PosSeconds returns the decoder-reported position in seconds.
func (v *VideoHandle) PosSeconds() float64 {
	return v.cap.Get(gocv.VideoCapturePosMsec) / 1000.0
}

// ReadFrame decodes the next frame at native resolution. The returned Mat is
// an internal scratch buffer valid until the next call; callers needing the
// pixels beyond that must Clone it.
func (v *VideoHandle) ReadFrame() (gocv.Mat, bool) {
	if ok := v.cap.Read(&v.buf); !ok || v.buf.Empty() {
		return v.buf, false
	}
	return v.buf, true
}

// Close releases the decoder and scratch buffers.
func (v *VideoHandle) Close() error {
	v.buf.Close()
	return v.cap.Close()
}

// DownscaleGray resizes a BGR frame to w x h and converts it to grayscale.
// The caller owns (and must Close) the returned Mat.
func DownscaleGray(src gocv.Mat, w, h int) gocv.Mat {
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(src, &resized, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
	gray := gocv.NewMat()
	gocv.CvtColor(resized, &gray, gocv.ColorBGRToGray)
	return gray
}

// Grayscale converts a BGR frame to grayscale at its native size. The caller
// owns the returned Mat.
func Grayscale(src gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	return gray
}

// MatToPlane copies a single-channel Mat into a Plane.
func MatToPlane(m gocv.Mat) Plane {
	return PlaneFromBytes(m.Cols(), m.Rows(), m.ToBytes())
}

// EncodePNG serializes a Mat as PNG bytes, the format handed to the OCR
// engine.
func EncodePNG(m gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".png", m)
	if err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	defer buf.Close()
	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// WriteJPEG persists a frame as a JPEG image file.
func WriteJPEG(path string, m gocv.Mat) error {
	if ok := gocv.IMWrite(path, m); !ok {
		return fmt.Errorf("write image %s: encoder failed", path)
	}
	return nil
}
