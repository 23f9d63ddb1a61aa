package filter

import (
	"image"

	"gocv.io/x/gocv"
)

func morphologicalErosion(src gocv.Mat, p params) (gocv.Mat, error) {
	return iterateMorph(src, p, func(in gocv.Mat, out *gocv.Mat, kernel gocv.Mat) {
		gocv.Erode(in, out, kernel)
	})
}

func morphologicalDilation(src gocv.Mat, p params) (gocv.Mat, error) {
	return iterateMorph(src, p, func(in gocv.Mat, out *gocv.Mat, kernel gocv.Mat) {
		gocv.Dilate(in, out, kernel)
	})
}

func morphologicalOpening(src gocv.Mat, p params) (gocv.Mat, error) {
	return morphEx(src, p, gocv.MorphOpen)
}

func morphologicalClosing(src gocv.Mat, p params) (gocv.Mat, error) {
	return morphEx(src, p, gocv.MorphClose)
}

// iterateMorph applies a single-step morphological operation the configured
// number of iterations with a square structuring element.
func iterateMorph(src gocv.Mat, p params, step func(gocv.Mat, *gocv.Mat, gocv.Mat)) (gocv.Mat, error) {
	k := p.integer("kernel_size", 3)
	if k < 1 {
		k = 1
	}
	iterations := p.integer("iterations", 1)
	if iterations < 1 {
		iterations = 1
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: k, Y: k})
	defer kernel.Close()

	current := src.Clone()
	for i := 0; i < iterations; i++ {
		next := gocv.NewMat()
		step(current, &next, kernel)
		current.Close()
		current = next
	}
	return current, nil
}

func morphEx(src gocv.Mat, p params, op gocv.MorphType) (gocv.Mat, error) {
	k := p.integer("kernel_size", 3)
	if k < 1 {
		k = 1
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: k, Y: k})
	defer kernel.Close()

	dst := gocv.NewMat()
	gocv.MorphologyEx(src, &dst, op, kernel)
	return dst, nil
}
