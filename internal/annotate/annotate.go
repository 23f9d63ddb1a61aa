// Package annotate renders per-feature overlays onto a copy of the source
// image for human review. Rendering is purely cosmetic: it never mutates
// the source and never influences any numeric result.
package annotate

import (
	"image"
	"image/color"

	"micrograph-analyzer/pkg/geometry"

	"gocv.io/x/gocv"
)

// Overlay describes one feature to draw: a boundary outline, an optional
// bounding box, and a text label placed near the feature.
type Overlay struct {
	// Boundary is drawn as a contour outline; exactly two points are drawn
	// as a line segment (dendritic arms).
	Boundary []image.Point
	// Box, when non-nil, is drawn as an axis-aligned rectangle.
	Box *geometry.RectInt
	// BoxColor defaults to Color when zero.
	BoxColor color.RGBA
	Label    string
	// LabelAt positions the label text, usually the feature centroid.
	LabelAt image.Point
	Color   color.RGBA
}

// Render returns a copy of src with every overlay drawn on it.
func Render(src gocv.Mat, overlays []Overlay) gocv.Mat {
	out := src.Clone()

	for _, ov := range overlays {
		switch {
		case len(ov.Boundary) == 2:
			gocv.Line(&out, ov.Boundary[0], ov.Boundary[1], ov.Color, 2)
		case len(ov.Boundary) > 2:
			contours := gocv.NewPointsVectorFromPoints([][]image.Point{ov.Boundary})
			gocv.DrawContours(&out, contours, -1, ov.Color, 2)
			contours.Close()
		}

		if ov.Box != nil {
			boxColor := ov.BoxColor
			if boxColor == (color.RGBA{}) {
				boxColor = ov.Color
			}
			gocv.Rectangle(&out, ov.Box.ToImageRect(), boxColor, 1)
		}

		if ov.Label != "" {
			gocv.PutText(&out, ov.Label, ov.LabelAt, gocv.FontHersheySimplex, 0.4, ov.Color, 1)
		}
	}

	return out
}

// palette matches the review-image color rotation used for numbered
// features (BGR-ordered image, so R and B here are swapped on screen).
var palette = []color.RGBA{
	{R: 255, G: 0, B: 0, A: 255},
	{R: 0, G: 255, B: 0, A: 255},
	{R: 0, G: 0, B: 255, A: 255},
	{R: 255, G: 255, B: 0, A: 255},
	{R: 255, G: 0, B: 255, A: 255},
	{R: 0, G: 255, B: 255, A: 255},
	{R: 128, G: 0, B: 0, A: 255},
	{R: 0, G: 128, B: 0, A: 255},
	{R: 0, G: 0, B: 128, A: 255},
	{R: 128, G: 128, B: 0, A: 255},
}

// PaletteColor returns a stable color for an indexed feature.
func PaletteColor(i int) color.RGBA {
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// Green, Red, Blue, Cyan are the fixed label colors used by specific
// analysis kinds (nodules, flakes, inclusion boxes, coating).
var (
	Green = color.RGBA{G: 255, A: 255}
	Red   = color.RGBA{R: 255, A: 255}
	Blue  = color.RGBA{B: 255, A: 255}
	Cyan  = color.RGBA{G: 255, B: 255, A: 255}
)
