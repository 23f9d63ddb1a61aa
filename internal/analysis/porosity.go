package analysis

import (
	"fmt"

	"gocv.io/x/gocv"

	"micrograph-analyzer/internal/annotate"
	"micrograph-analyzer/internal/feature"
	"micrograph-analyzer/internal/segment"
)

// porosityPolicy detects pores: dark, roughly round voids against a bright
// matrix. A global Otsu inverse threshold picks up uniformly dark interiors;
// setting the adaptive parameter switches to local thresholding for images
// with uneven illumination.
func porosityPolicy() regionPolicy {
	return regionPolicy{
		blur: true,
		segment: func(_, work gocv.Mat, p Params) []segment.Region {
			opts := segment.DefaultThresholdOptions()
			opts.Invert = true
			opts.Adaptive = p.Value("adaptive") != 0
			return segment.Threshold(work, opts)
		},
		accept: acceptPore,
		build: func(_ int, d feature.Descriptor, reg segment.Region, _ Params, _ Calibration) (FeatureRecord, annotate.Overlay) {
			rec := FeatureRecord{Descriptor: d, Label: LabelPore, Boundary: reg.Points}
			ov := annotate.Overlay{
				Boundary: reg.Points,
				Label:    fmt.Sprintf("%.0f", d.Area),
				LabelAt:  d.Centroid.ToImagePoint(),
				Color:    annotate.Green,
			}
			return rec, ov
		},
		metric:   func(rec FeatureRecord, _ Calibration) float64 { return rec.Area },
		finalize: porosityAggregate,
	}
}

func acceptPore(d feature.Descriptor, p Params) bool {
	return d.Area >= p.Value("min_area") &&
		d.Area <= p.Value("max_area") &&
		d.Circularity >= p.Value("circularity_threshold")
}

// porosityAggregate reports the pore area fraction of the whole raster.
// Zero features yield 0%, never a division error.
func porosityAggregate(res *Result, imageArea float64, _ Params) {
	var total float64
	for _, f := range res.Features {
		total += f.Area
	}
	pct := 0.0
	if imageArea > 0 {
		pct = total / imageArea * 100
	}
	res.Percentages = map[string]float64{"porosity": pct}
}
