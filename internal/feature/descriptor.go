// Package feature derives geometric and intensity descriptors from
// segmented regions.
package feature

import (
	"image"
	"image/color"
	"math"

	"micrograph-analyzer/internal/segment"
	"micrograph-analyzer/pkg/geometry"

	"gocv.io/x/gocv"
)

// Descriptor is the immutable measurement record attached 1:1 to a Region.
type Descriptor struct {
	Area               float64          `json:"area"`
	Perimeter          float64          `json:"perimeter"`
	Circularity        float64          `json:"circularity"`
	BoundingBox        geometry.RectInt `json:"bounding_box"`
	AspectRatio        float64          `json:"aspect_ratio"`
	Centroid           geometry.Point2D `json:"centroid"`
	EquivalentDiameter float64          `json:"equivalent_diameter"`
	MeanIntensity      float64          `json:"mean_intensity"`
}

// Compute measures a region against the grayscale raster it was segmented
// from. It is a pure function of its inputs: identical coordinates always
// produce identical descriptors. Degenerate regions (zero area or zero
// perimeter) yield well-defined zero values, never an error.
//
// Circularity is 4·pi·area/perimeter²: 1.0 for a perfect circle, lower for
// irregular or elongated shapes, 0 for degenerate boundaries.
func Compute(gray gocv.Mat, region segment.Region) Descriptor {
	if len(region.Points) == 0 {
		return Descriptor{}
	}

	contour := region.PointVector()
	defer contour.Close()

	var d Descriptor
	d.Area = gocv.ContourArea(contour)
	d.Perimeter = gocv.ArcLength(contour, true)
	if d.Perimeter > 0 {
		d.Circularity = 4 * math.Pi * d.Area / (d.Perimeter * d.Perimeter)
	}
	if d.Area > 0 {
		d.EquivalentDiameter = math.Sqrt(4 * d.Area / math.Pi)
	}

	d.BoundingBox = geometry.FromImageRect(gocv.BoundingRect(contour))
	d.AspectRatio = d.BoundingBox.AspectRatio()

	mask := regionMask(gray.Rows(), gray.Cols(), region)
	defer mask.Close()

	moments := gocv.Moments(mask, true)
	if m00 := moments["m00"]; m00 > 0 {
		d.Centroid = geometry.Point2D{
			X: moments["m10"] / m00,
			Y: moments["m01"] / m00,
		}
		d.MeanIntensity = gray.MeanWithMask(mask).Val1
	}

	return d
}

// regionMask rasterizes a region's filled interior. The caller owns the
// returned Mat.
func regionMask(rows, cols int, region segment.Region) gocv.Mat {
	mask := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)

	contours := gocv.NewPointsVectorFromPoints([][]image.Point{region.Points})
	defer contours.Close()

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.DrawContours(&mask, contours, -1, white, -1)
	return mask
}
