package segment

import (
	"image"

	"gocv.io/x/gocv"
)

// ThresholdOptions configures threshold-based segmentation.
type ThresholdOptions struct {
	// Adaptive selects local Gaussian-weighted thresholding instead of the
	// global Otsu optimum.
	Adaptive bool
	// BlockSize is the adaptive neighborhood size (coerced odd, min 3).
	BlockSize int
	// C is the constant subtracted from the adaptive local mean.
	C float64
	// Invert binarizes dark-on-light targets (pores, graphite) instead of
	// bright-on-dark.
	Invert bool
	// KernelSize is the square structuring element used for the open and
	// close clean-up passes. Zero means 3.
	KernelSize int
}

// DefaultThresholdOptions returns the clean-up defaults shared by the
// threshold-segmented analyzers.
func DefaultThresholdOptions() ThresholdOptions {
	return ThresholdOptions{BlockSize: 11, C: 2, KernelSize: 3}
}

// Threshold binarizes gray and returns the external contours of the
// foreground after one open and one close pass to remove speckle and fill
// small gaps.
func Threshold(gray gocv.Mat, opts ThresholdOptions) []Region {
	binary := Binarize(gray, opts)
	defer binary.Close()
	return extractRegions(binary)
}

// Binarize produces the cleaned binary mask used by Threshold. Exposed
// because watershed splitting needs the mask itself, not its contours.
// The caller owns the returned Mat.
func Binarize(gray gocv.Mat, opts ThresholdOptions) gocv.Mat {
	binary := gocv.NewMat()

	if opts.Adaptive {
		block := opts.BlockSize
		if block < 3 {
			block = 3
		}
		if block%2 == 0 {
			block++
		}
		thresholdType := gocv.ThresholdBinary
		if opts.Invert {
			thresholdType = gocv.ThresholdBinaryInv
		}
		gocv.AdaptiveThreshold(gray, &binary, 255, gocv.AdaptiveThresholdGaussian, thresholdType, block, float32(opts.C))
	} else {
		thresholdType := gocv.ThresholdBinary + gocv.ThresholdOtsu
		if opts.Invert {
			thresholdType = gocv.ThresholdBinaryInv + gocv.ThresholdOtsu
		}
		gocv.Threshold(gray, &binary, 0, 255, thresholdType)
	}

	k := opts.KernelSize
	if k < 1 {
		k = 3
	}
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: k, Y: k})
	defer kernel.Close()

	gocv.MorphologyEx(binary, &binary, gocv.MorphOpen, kernel)
	gocv.MorphologyEx(binary, &binary, gocv.MorphClose, kernel)

	return binary
}
