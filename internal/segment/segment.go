// Package segment converts preprocessed grayscale rasters into sets of
// candidate regions.
//
// Four strategies are provided: global/adaptive thresholding (uniform-fill
// targets), edge-based extraction (contrast-boundary targets),
// marker-controlled watershed splitting (touching same-intensity regions),
// and intensity clustering (multi-phase composition). All of them emit
// disjoint Regions with no classification attached; degenerate contours are
// dropped at the source so downstream stages never see an empty boundary.
package segment

import (
	"image"

	"gocv.io/x/gocv"
)

// Region is the ordered closed outer boundary of one connected candidate
// feature. A Region always has at least three points and non-zero area.
type Region struct {
	Points []image.Point
}

// PointVector rebuilds the gocv contour for this region. The caller owns
// the returned vector and must Close it.
func (r Region) PointVector() gocv.PointVector {
	return gocv.NewPointVectorFromPoints(r.Points)
}

// regionsFromContours converts a contour set into Regions, dropping
// degenerate contours (fewer than three points or zero enclosed area).
func regionsFromContours(contours gocv.PointsVector) []Region {
	var regions []Region
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if contour.Size() < 3 {
			continue
		}
		if gocv.ContourArea(contour) <= 0 {
			continue
		}
		regions = append(regions, Region{Points: contour.ToPoints()})
	}
	return regions
}

// extractRegions finds external contours of a binary mask and converts
// them to Regions.
func extractRegions(binary gocv.Mat) []Region {
	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	return regionsFromContours(contours)
}
