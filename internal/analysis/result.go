package analysis

import (
	"image"

	"gocv.io/x/gocv"

	"micrograph-analyzer/internal/feature"
	"micrograph-analyzer/pkg/geometry"
)

// Calibration converts pixel measurements to physical units.
// A zero value means uncalibrated and all measurements stay in pixels.
type Calibration struct {
	MicronsPerPixel float64 `json:"microns_per_pixel" yaml:"microns_per_pixel"`
}

// Enabled reports whether a physical scale is available.
func (c Calibration) Enabled() bool {
	return c.MicronsPerPixel > 0
}

// Length converts a pixel length to microns, or returns it unchanged
// when uncalibrated.
func (c Calibration) Length(px float64) float64 {
	if !c.Enabled() {
		return px
	}
	return px * c.MicronsPerPixel
}

// Area converts a pixel area to square microns, or returns it unchanged
// when uncalibrated.
func (c Calibration) Area(px float64) float64 {
	if !c.Enabled() {
		return px
	}
	return px * c.MicronsPerPixel * c.MicronsPerPixel
}

// FeatureRecord is one detected feature with its shape descriptor,
// assigned label, and any kind-specific measurements.
type FeatureRecord struct {
	feature.Descriptor
	Label Label `json:"label"`

	// Dendritic segments carry endpoints, length, and orientation.
	Start  geometry.Point2D `json:"start,omitempty"`
	End    geometry.Point2D `json:"end,omitempty"`
	Length float64          `json:"length,omitempty"`
	Angle  float64          `json:"angle,omitempty"`

	// Coating regions carry an estimated layer thickness.
	Thickness float64 `json:"thickness,omitempty"`

	// Boundary holds the region contour for rendering. It is excluded
	// from serialized output.
	Boundary []image.Point `json:"-"`
}

// PhaseStat summarizes one intensity phase from phase analysis.
type PhaseStat struct {
	Phase         int     `json:"phase"`
	AreaPercent   float64 `json:"area_percent"`
	MeanIntensity float64 `json:"mean_intensity"`
	RegionCount   int     `json:"region_count"`
}

// Result is the outcome of one analysis run. Annotated holds the source
// image with overlays drawn; the caller owns it and must Close it.
type Result struct {
	Kind        Kind               `json:"kind"`
	Count       int                `json:"count"`
	Features    []FeatureRecord    `json:"features"`
	Percentages map[string]float64 `json:"percentages,omitempty"`
	Buckets     map[string]int     `json:"buckets,omitempty"`
	Phases      []PhaseStat        `json:"phases,omitempty"`
	Summary     Summary            `json:"summary"`
	Params      Params             `json:"params"`
	Calibration Calibration        `json:"calibration"`
	Annotated   gocv.Mat           `json:"-"`
}

// Close releases the annotated image.
func (r *Result) Close() {
	if r != nil && !r.Annotated.Empty() {
		r.Annotated.Close()
	}
}
