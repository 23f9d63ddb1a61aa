package filter

import (
	"micrograph-analyzer/internal/raster"

	"gocv.io/x/gocv"
)

// Frequency-domain band filters. Each runs on the luminance projection of
// the input (chrominance passes through untouched), applies a centered
// square passband mask over the 2-D spectrum, and normalizes the filtered
// magnitude back to the 8-bit display range.

func fourierLowPass(src gocv.Mat, p params) (gocv.Mat, error) {
	cutoff := p.integer("cutoff_frequency", 30)
	return raster.WithLuminance(src, func(gray gocv.Mat) (gocv.Mat, error) {
		return frequencyMask(gray, func(dy, dx int) bool {
			return dy <= cutoff && dx <= cutoff
		})
	})
}

func fourierHighPass(src gocv.Mat, p params) (gocv.Mat, error) {
	cutoff := p.integer("cutoff_frequency", 30)
	return raster.WithLuminance(src, func(gray gocv.Mat) (gocv.Mat, error) {
		return frequencyMask(gray, func(dy, dx int) bool {
			return dy > cutoff || dx > cutoff
		})
	})
}

func fourierBandPass(src gocv.Mat, p params) (gocv.Mat, error) {
	low := p.integer("low_cutoff", 10)
	high := p.integer("high_cutoff", 50)
	return raster.WithLuminance(src, func(gray gocv.Mat) (gocv.Mat, error) {
		return frequencyMask(gray, func(dy, dx int) bool {
			inHigh := dy <= high && dx <= high
			inLow := dy <= low && dx <= low
			return inHigh && !inLow
		})
	})
}

// frequencyMask transforms gray to the frequency domain, zeroes every
// coefficient for which keep returns false, and inverse-transforms back.
//
// keep receives the coefficient's distance from the DC component along each
// axis. The forward DFT leaves DC at the corners, so the distance for row y
// is min(y, rows-y), equivalent to masking around the center of a shifted
// spectrum without performing the quadrant swap.
func frequencyMask(gray gocv.Mat, keep func(dy, dx int) bool) (gocv.Mat, error) {
	f32 := gocv.NewMat()
	defer f32.Close()
	gray.ConvertTo(&f32, gocv.MatTypeCV32F)

	freq := gocv.NewMat()
	defer freq.Close()
	gocv.DFT(f32, &freq, gocv.DftComplexOutput)

	rows, cols := freq.Rows(), freq.Cols()
	for y := 0; y < rows; y++ {
		dy := y
		if rows-y < dy {
			dy = rows - y
		}
		for x := 0; x < cols; x++ {
			dx := x
			if cols-x < dx {
				dx = cols - x
			}
			if !keep(dy, dx) {
				freq.SetFloatAt(y, x*2, 0)
				freq.SetFloatAt(y, x*2+1, 0)
			}
		}
	}

	inverse := gocv.NewMat()
	defer inverse.Close()
	gocv.DFT(freq, &inverse, gocv.DftInverse|gocv.DftScale|gocv.DftComplexOutput)

	planes := gocv.Split(inverse)
	defer func() {
		for i := range planes {
			planes[i].Close()
		}
	}()

	mag := gocv.NewMat()
	defer mag.Close()
	gocv.Magnitude(planes[0], planes[1], &mag)

	return raster.NormalizeTo8U(mag), nil
}
