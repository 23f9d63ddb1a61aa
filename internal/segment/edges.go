package segment

import (
	"image"

	"gocv.io/x/gocv"
)

// EdgeOptions configures edge-based segmentation.
type EdgeOptions struct {
	// LowThreshold and HighThreshold are the Canny hysteresis bounds.
	LowThreshold  float64
	HighThreshold float64
	// DilateIterations closes small gaps in the extracted boundaries.
	// Zero disables dilation (line detection wants thin edges).
	DilateIterations int
}

// DefaultEdgeOptions returns the Canny bounds used across the edge-based
// analyzers.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{LowThreshold: 50, HighThreshold: 150, DilateIterations: 1}
}

// Edges extracts regions whose targets are defined by contrast boundaries
// rather than uniform fill: boundary extraction, then dilation to close
// small gaps, then external contours.
func Edges(gray gocv.Mat, opts EdgeOptions) []Region {
	edges := EdgeMask(gray, opts)
	defer edges.Close()
	return extractRegions(edges)
}

// EdgeMask returns the dilated Canny edge mask. Exposed for the dendritic
// analyzer, which feeds it to line detection instead of contour extraction.
// The caller owns the returned Mat.
func EdgeMask(gray gocv.Mat, opts EdgeOptions) gocv.Mat {
	edges := gocv.NewMat()
	gocv.Canny(gray, &edges, float32(opts.LowThreshold), float32(opts.HighThreshold))

	if opts.DilateIterations > 0 {
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
		defer kernel.Close()
		for i := 0; i < opts.DilateIterations; i++ {
			gocv.Dilate(edges, &edges, kernel)
		}
	}
	return edges
}
