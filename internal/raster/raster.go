// Package raster provides image loading, validation, and conversion between
// Go images and OpenCV Mats for the analysis pipeline.
//
// Every pipeline invocation works on its own Mat copy; nothing in this
// package retains state between calls.
package raster

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	apperr "micrograph-analyzer/internal/errors"

	_ "golang.org/x/image/tiff"

	"gocv.io/x/gocv"
)

// Load decodes an image file (PNG, JPEG, or TIFF) into a BGR Mat.
func Load(path string) (gocv.Mat, error) {
	f, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("decode image: %w", err)
	}
	return FromImage(img)
}

// FromImage converts a Go image.Image to an 8-bit BGR Mat.
func FromImage(src image.Image) (gocv.Mat, error) {
	if src == nil {
		return gocv.NewMat(), apperr.NewInputError("image is nil")
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gocv.NewMat(), apperr.NewInputError("image is empty")
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// 16-bit to 8-bit, BGR order for OpenCV
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}

// Validate checks that a Mat is usable as pipeline input.
// It fails fast before any stage runs.
func Validate(m gocv.Mat) error {
	if m.Empty() {
		return apperr.NewInputError("image is empty")
	}
	if m.Rows() < 1 || m.Cols() < 1 {
		return apperr.NewInputError("image has zero dimensions")
	}
	ch := m.Channels()
	if ch != 1 && ch != 3 {
		return apperr.NewInputError(fmt.Sprintf("unsupported channel count: %d", ch))
	}
	return nil
}

// ToGray returns a single-channel copy of src. The caller owns the result.
func ToGray(src gocv.Mat) gocv.Mat {
	if src.Channels() == 1 {
		return src.Clone()
	}
	gray := gocv.NewMat()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	return gray
}

// WithLuminance applies fn to the luminance projection of src and
// recombines the result.
//
// This is the single color-mode contract for luminance-only transforms:
// grayscale input passes through fn directly; color input is converted to
// YCrCb, fn runs on the Y channel, and the filtered Y is substituted back
// without altering chrominance. fn must return an 8-bit single-channel Mat
// of the same size and owns no reference to its input after returning.
func WithLuminance(src gocv.Mat, fn func(gray gocv.Mat) (gocv.Mat, error)) (gocv.Mat, error) {
	if src.Channels() == 1 {
		return fn(src)
	}

	ycrcb := gocv.NewMat()
	defer ycrcb.Close()
	gocv.CvtColor(src, &ycrcb, gocv.ColorBGRToYCrCb)

	planes := gocv.Split(ycrcb)
	defer func() {
		for i := range planes {
			planes[i].Close()
		}
	}()

	filtered, err := fn(planes[0])
	if err != nil {
		return gocv.NewMat(), err
	}
	defer filtered.Close()

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge([]gocv.Mat{filtered, planes[1], planes[2]}, &merged)

	dst := gocv.NewMat()
	gocv.CvtColor(merged, &dst, gocv.ColorYCrCbToBGR)
	return dst, nil
}

// NormalizeTo8U min-max normalizes src into the 0–255 display range and
// quantizes to 8-bit. The caller owns the result.
func NormalizeTo8U(src gocv.Mat) gocv.Mat {
	norm := gocv.NewMat()
	defer norm.Close()
	gocv.Normalize(src, &norm, 0, 255, gocv.NormMinMax)

	dst := gocv.NewMat()
	norm.ConvertTo(&dst, gocv.MatTypeCV8U)
	return dst
}

// Save writes a Mat to disk; the format follows the file extension.
func Save(path string, m gocv.Mat) error {
	if ok := gocv.IMWrite(path, m); !ok {
		return fmt.Errorf("write image %s failed", path)
	}
	return nil
}
