package analysis

import (
	"strconv"

	"gocv.io/x/gocv"

	"micrograph-analyzer/internal/annotate"
	"micrograph-analyzer/internal/feature"
	"micrograph-analyzer/internal/segment"
)

// particlesPolicy counts dispersed second-phase particles: bright regions
// against the matrix, as small as a few pixels. The intensity gate rejects
// dim patches the threshold picked up at grain boundaries.
func particlesPolicy() regionPolicy {
	return regionPolicy{
		blur: true,
		segment: func(_, work gocv.Mat, _ Params) []segment.Region {
			return segment.Threshold(work, segment.DefaultThresholdOptions())
		},
		accept: func(d feature.Descriptor, p Params) bool {
			return d.Area >= p.Value("min_size") &&
				d.Area <= p.Value("max_size") &&
				d.Circularity >= p.Value("shape_threshold") &&
				d.MeanIntensity >= p.Value("intensity_threshold")*255
		},
		build: func(i int, d feature.Descriptor, reg segment.Region, _ Params, _ Calibration) (FeatureRecord, annotate.Overlay) {
			rec := FeatureRecord{Descriptor: d, Label: LabelParticle, Boundary: reg.Points}
			ov := annotate.Overlay{
				Boundary: reg.Points,
				Label:    strconv.Itoa(i + 1),
				LabelAt:  d.Centroid.ToImagePoint(),
				Color:    annotate.Red,
			}
			return rec, ov
		},
		metric:   func(rec FeatureRecord, _ Calibration) float64 { return rec.Area },
		finalize: particlesAggregate,
	}
}

func particlesAggregate(res *Result, imageArea float64, _ Params) {
	var total float64
	for _, f := range res.Features {
		total += f.Area
	}
	pct := 0.0
	if imageArea > 0 {
		pct = total / imageArea * 100
	}
	res.Percentages = map[string]float64{"particle_area": pct}
}
