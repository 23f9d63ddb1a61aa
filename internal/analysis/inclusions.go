package analysis

import (
	"fmt"

	"gocv.io/x/gocv"

	"micrograph-analyzer/internal/annotate"
	"micrograph-analyzer/internal/feature"
	"micrograph-analyzer/internal/segment"
)

// Inclusion size classes by pixel area.
const (
	inclusionMediumArea = 50
	inclusionLargeArea  = 200
)

// inclusionsPolicy detects non-metallic inclusions: small bright regions
// with a sharp contrast boundary. Edge-based segmentation finds them even
// when a global threshold would merge them with the matrix.
func inclusionsPolicy() regionPolicy {
	return regionPolicy{
		blur: true,
		segment: func(_, work gocv.Mat, _ Params) []segment.Region {
			return segment.Edges(work, segment.DefaultEdgeOptions())
		},
		accept: func(d feature.Descriptor, p Params) bool {
			return d.Area >= p.Value("min_size") &&
				d.Area <= p.Value("max_size") &&
				d.Circularity >= p.Value("shape_threshold") &&
				d.MeanIntensity >= p.Value("intensity_threshold")*255
		},
		build: func(_ int, d feature.Descriptor, reg segment.Region, _ Params, _ Calibration) (FeatureRecord, annotate.Overlay) {
			rec := FeatureRecord{Descriptor: d, Label: LabelInclusion, Boundary: reg.Points}
			box := d.BoundingBox
			ov := annotate.Overlay{
				Box:     &box,
				Label:   fmt.Sprintf("%.0f", d.Area),
				LabelAt: box.ToImageRect().Min,
				Color:   annotate.Blue,
			}
			return rec, ov
		},
		metric:   func(rec FeatureRecord, _ Calibration) float64 { return rec.Area },
		finalize: inclusionsAggregate,
	}
}

// classifyInclusionSize buckets an inclusion by its pixel area.
func classifyInclusionSize(area float64) string {
	switch {
	case area < inclusionMediumArea:
		return "small"
	case area < inclusionLargeArea:
		return "medium"
	default:
		return "large"
	}
}

func inclusionsAggregate(res *Result, imageArea float64, _ Params) {
	buckets := map[string]int{"small": 0, "medium": 0, "large": 0}
	var total float64
	for _, f := range res.Features {
		buckets[classifyInclusionSize(f.Area)]++
		total += f.Area
	}
	res.Buckets = buckets
	pct := 0.0
	if imageArea > 0 {
		pct = total / imageArea * 100
	}
	res.Percentages = map[string]float64{"inclusion_area": pct}
}
