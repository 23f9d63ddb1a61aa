package filter

import (
	"fmt"
	"image"

	"micrograph-analyzer/internal/raster"

	"gocv.io/x/gocv"
)

func gaussianBlur(src gocv.Mat, p params) (gocv.Mat, error) {
	k := oddKernel(p.integer("kernel_size", 5))
	sigma := p.float("sigma", 1.0)

	dst := gocv.NewMat()
	gocv.GaussianBlur(src, &dst, image.Point{X: k, Y: k}, sigma, sigma, gocv.BorderDefault)
	return dst, nil
}

func medianFilter(src gocv.Mat, p params) (gocv.Mat, error) {
	k := oddKernel(p.integer("kernel_size", 5))

	dst := gocv.NewMat()
	gocv.MedianBlur(src, &dst, k)
	return dst, nil
}

func bilateralFilter(src gocv.Mat, p params) (gocv.Mat, error) {
	d := p.integer("d", 15)
	sigmaColor := p.float("sigma_color", 75)
	sigmaSpace := p.float("sigma_space", 75)

	// BilateralFilter requires a 1- or 3-channel 8-bit image, which
	// raster.Validate has already guaranteed.
	dst := gocv.NewMat()
	gocv.BilateralFilter(src, &dst, d, sigmaColor, sigmaSpace)
	return dst, nil
}

// unsharpMask sharpens by subtracting a Gaussian-blurred copy. A positive
// threshold excludes low-contrast pixels from sharpening so flat matrix
// areas keep their original values.
func unsharpMask(src gocv.Mat, p params) (gocv.Mat, error) {
	k := oddKernel(p.integer("kernel_size", 5))
	sigma := p.float("sigma", 1.0)
	amount := p.float("amount", 1.0)
	threshold := p.float("threshold", 0)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Point{X: k, Y: k}, sigma, sigma, gocv.BorderDefault)

	sharpened := gocv.NewMat()
	gocv.AddWeighted(src, 1.0+amount, blurred, -amount, 0, &sharpened)

	if threshold > 0 {
		diff := gocv.NewMat()
		defer diff.Close()
		gocv.AbsDiff(src, blurred, &diff)

		grayDiff := diff
		if diff.Channels() > 1 {
			grayDiff = gocv.NewMat()
			defer grayDiff.Close()
			gocv.CvtColor(diff, &grayDiff, gocv.ColorBGRToGray)
		}

		lowContrast := gocv.NewMat()
		defer lowContrast.Close()
		gocv.Threshold(grayDiff, &lowContrast, float32(threshold), 255, gocv.ThresholdBinaryInv)

		src.CopyToWithMask(&sharpened, lowContrast)
	}

	return sharpened, nil
}

func sharpen(src gocv.Mat, p params) (gocv.Mat, error) {
	return unsharpMask(src, params{
		"kernel_size": p.integer("kernel_size", 3),
		"sigma":       p.float("sigma", 1.0),
		"amount":      p.float("amount", 1.0),
	})
}

// edgeDetection extracts edges from the luminance projection. The result is
// single-channel: downstream stages treat edge maps as masks, not photos.
func edgeDetection(src gocv.Mat, p params) (gocv.Mat, error) {
	method := p.str("method", "canny")
	low := p.float("low_threshold", 50)
	high := p.float("high_threshold", 150)

	gray := raster.ToGray(src)
	defer gray.Close()

	switch method {
	case "canny":
		dst := gocv.NewMat()
		gocv.Canny(gray, &dst, float32(low), float32(high))
		return dst, nil

	case "sobel":
		gradX := gocv.NewMat()
		defer gradX.Close()
		gradY := gocv.NewMat()
		defer gradY.Close()
		gocv.Sobel(gray, &gradX, gocv.MatTypeCV32F, 1, 0, 3, 1, 0, gocv.BorderDefault)
		gocv.Sobel(gray, &gradY, gocv.MatTypeCV32F, 0, 1, 3, 1, 0, gocv.BorderDefault)

		mag := gocv.NewMat()
		defer mag.Close()
		gocv.Magnitude(gradX, gradY, &mag)
		return raster.NormalizeTo8U(mag), nil

	case "laplacian":
		lap := gocv.NewMat()
		defer lap.Close()
		gocv.Laplacian(gray, &lap, gocv.MatTypeCV32F, 3, 1, 0, gocv.BorderDefault)
		return raster.NormalizeTo8U(lap), nil

	default:
		return gocv.NewMat(), fmt.Errorf("unknown edge method %q", method)
	}
}

func noiseReduction(src gocv.Mat, p params) (gocv.Mat, error) {
	h := float32(p.float("h", 10))

	dst := gocv.NewMat()
	if src.Channels() == 3 {
		gocv.FastNlMeansDenoisingColoredWithParams(src, &dst, h, h, 7, 21)
	} else {
		gocv.FastNlMeansDenoisingWithParams(src, &dst, h, 7, 21)
	}
	return dst, nil
}

// contrastEnhancement rescales intensities linearly: dst = alpha*src + beta.
func contrastEnhancement(src gocv.Mat, p params) (gocv.Mat, error) {
	alpha := p.float("alpha", 1.5)
	beta := p.float("beta", 0)

	dst := gocv.NewMat()
	gocv.ConvertScaleAbs(src, &dst, alpha, beta)
	return dst, nil
}
