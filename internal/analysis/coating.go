package analysis

import (
	"fmt"

	"gocv.io/x/gocv"

	"micrograph-analyzer/internal/annotate"
	"micrograph-analyzer/internal/feature"
	"micrograph-analyzer/internal/segment"
)

// coatingPolicy measures coating layers on cross-sectioned samples. The
// layer boundary is a contrast edge, not a uniform fill, so segmentation
// runs Canny on the unblurred grayscale; smoothing first would wash out the
// thin interface lines that define the layer.
func coatingPolicy() regionPolicy {
	return regionPolicy{
		segment: func(_, work gocv.Mat, p Params) []segment.Region {
			return segment.Edges(work, coatingEdgeOptions(p.Value("detection_sensitivity")))
		},
		accept: func(d feature.Descriptor, p Params) bool {
			t := layerThickness(d)
			return d.Area >= p.Value("min_area") &&
				t >= p.Value("min_thickness") &&
				t <= p.Value("max_thickness")
		},
		build: func(_ int, d feature.Descriptor, reg segment.Region, _ Params, cal Calibration) (FeatureRecord, annotate.Overlay) {
			// Acceptance bounds are pixel thresholds; the reported
			// thickness carries the physical scale when calibrated.
			t := cal.Length(layerThickness(d))
			rec := FeatureRecord{
				Descriptor: d,
				Label:      LabelCoating,
				Thickness:  t,
				Boundary:   reg.Points,
			}
			label := fmt.Sprintf("%.1f px", t)
			if cal.Enabled() {
				label = fmt.Sprintf("%.1f um", t)
			}
			ov := annotate.Overlay{
				Boundary: reg.Points,
				Label:    label,
				LabelAt:  d.Centroid.ToImagePoint(),
				Color:    annotate.Cyan,
			}
			return rec, ov
		},
		metric:   func(rec FeatureRecord, _ Calibration) float64 { return rec.Thickness },
		finalize: coatingAggregate,
	}
}

// coatingEdgeOptions maps detection sensitivity onto the Canny hysteresis
// bounds: higher sensitivity lowers the bounds and admits weaker edges.
func coatingEdgeOptions(sensitivity float64) segment.EdgeOptions {
	high := 255 * (1 - sensitivity)
	if high < 30 {
		high = 30
	}
	return segment.EdgeOptions{
		LowThreshold:     high / 2,
		HighThreshold:    high,
		DilateIterations: 1,
	}
}

// layerThickness estimates the coating thickness as half the short side of
// the bounding box: a layer region is a long thin band, so its short side
// spans the layer twice (both interfaces).
func layerThickness(d feature.Descriptor) float64 {
	return d.BoundingBox.MinorLength() / 2
}

func coatingAggregate(res *Result, imageArea float64, _ Params) {
	var total float64
	for _, f := range res.Features {
		total += f.Area
	}
	pct := 0.0
	if imageArea > 0 {
		pct = total / imageArea * 100
	}
	res.Percentages = map[string]float64{"coverage": pct}
}
