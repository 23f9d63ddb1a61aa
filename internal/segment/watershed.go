package segment

import (
	"gocv.io/x/gocv"
)

// WatershedOptions configures marker-controlled region splitting.
type WatershedOptions struct {
	// SeedFraction selects sure-foreground seeds: pixels whose distance to
	// the background exceeds this fraction of the maximum distance. Higher
	// values split more aggressively. Zero means 0.8.
	SeedFraction float64
	// Threshold controls the initial binarization.
	Threshold ThresholdOptions
}

// DefaultWatershedOptions returns the splitting defaults for grain
// separation.
func DefaultWatershedOptions() WatershedOptions {
	return WatershedOptions{SeedFraction: 0.8, Threshold: DefaultThresholdOptions()}
}

// Watershed separates touching same-intensity regions. Simple contour
// extraction merges adjacent grains into one blob; this derives seed
// markers from the distance transform and flood-grows them against the
// binarized mask, yielding one Region per marker basin.
//
// src must be the original raster (the flood grows along its gradients);
// gray is its luminance projection.
func Watershed(src, gray gocv.Mat, opts WatershedOptions) []Region {
	if opts.SeedFraction <= 0 || opts.SeedFraction >= 1 {
		opts.SeedFraction = 0.8
	}

	binary := Binarize(gray, opts.Threshold)
	defer binary.Close()

	// Distance to the nearest background pixel; peaks sit at blob centers.
	dist := gocv.NewMat()
	defer dist.Close()
	distLabels := gocv.NewMat()
	defer distLabels.Close()
	gocv.DistanceTransform(binary, &dist, &distLabels, gocv.DistL2, gocv.DistanceMask5, gocv.DistanceLabelCComp)

	_, maxDist, _, _ := gocv.MinMaxLoc(dist)
	if maxDist <= 0 {
		return nil
	}

	// Sure foreground: distance above the seed fraction of the maximum.
	sureFg32 := gocv.NewMat()
	defer sureFg32.Close()
	gocv.Threshold(dist, &sureFg32, float32(opts.SeedFraction)*maxDist, 255, gocv.ThresholdBinary)

	sureFg := gocv.NewMat()
	defer sureFg.Close()
	sureFg32.ConvertTo(&sureFg, gocv.MatTypeCV8U)

	markers := gocv.NewMat()
	defer markers.Close()
	componentCount := gocv.ConnectedComponents(sureFg, &markers)
	if componentCount < 2 {
		// No seeds above the threshold; fall back to plain contours.
		return extractRegions(binary)
	}

	// Shift labels so background is 1 and mark the unknown band (foreground
	// not covered by a seed) as 0 for the flood to resolve.
	rows, cols := markers.Rows(), markers.Cols()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			label := markers.GetIntAt(y, x) + 1
			if binary.GetUCharAt(y, x) > 0 && sureFg.GetUCharAt(y, x) == 0 {
				label = 0
			}
			markers.SetIntAt(y, x, label)
		}
	}

	// Watershed wants a 3-channel image.
	color := src
	var converted gocv.Mat
	if src.Channels() == 1 {
		converted = gocv.NewMat()
		defer converted.Close()
		gocv.CvtColor(src, &converted, gocv.ColorGrayToBGR)
		color = converted
	}
	gocv.Watershed(color, &markers)

	// One region per marker basin. Label 1 is background; -1 marks ridges.
	var regions []Region
	mask := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	defer mask.Close()
	for label := 2; label <= componentCount; label++ {
		mask.SetTo(gocv.NewScalar(0, 0, 0, 0))
		hasPixels := false
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				if markers.GetIntAt(y, x) == int32(label) {
					mask.SetUCharAt(y, x, 255)
					hasPixels = true
				}
			}
		}
		if !hasPixels {
			continue
		}
		regions = append(regions, extractRegions(mask)...)
	}
	return regions
}
