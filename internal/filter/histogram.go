package filter

import (
	"micrograph-analyzer/internal/raster"

	"gocv.io/x/gocv"
)

// histogramEqualization equalizes the luminance channel; chrominance of
// color input is preserved.
func histogramEqualization(src gocv.Mat, _ params) (gocv.Mat, error) {
	return raster.WithLuminance(src, func(gray gocv.Mat) (gocv.Mat, error) {
		dst := gocv.NewMat()
		gocv.EqualizeHist(gray, &dst)
		return dst, nil
	})
}

// adaptiveThreshold binarizes against a Gaussian-weighted local mean.
func adaptiveThreshold(src gocv.Mat, p params) (gocv.Mat, error) {
	block := oddKernel(p.integer("block_size", 11))
	if block < 3 {
		block = 3
	}
	c := p.float("c", 2)

	gray := raster.ToGray(src)
	defer gray.Close()

	dst := gocv.NewMat()
	gocv.AdaptiveThreshold(gray, &dst, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, block, float32(c))
	return dst, nil
}

// otsuThreshold binarizes with the global optimum threshold.
func otsuThreshold(src gocv.Mat, _ params) (gocv.Mat, error) {
	gray := raster.ToGray(src)
	defer gray.Close()

	dst := gocv.NewMat()
	gocv.Threshold(gray, &dst, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)
	return dst, nil
}
