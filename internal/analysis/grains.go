package analysis

import (
	"strconv"

	"gocv.io/x/gocv"

	"micrograph-analyzer/internal/annotate"
	"micrograph-analyzer/internal/feature"
	"micrograph-analyzer/internal/segment"
)

// grainPolicy measures grain structure. Grains touch each other, so plain
// contour extraction merges neighbors into one blob; watershed splitting
// with distance-transform seeds recovers the individual grains. Accepted
// grains are bounded by pixel area.
func grainPolicy() regionPolicy {
	return regionPolicy{
		blur: true,
		segment: func(src, work gocv.Mat, p Params) []segment.Region {
			opts := segment.DefaultWatershedOptions()
			if s := p.Value("watershed_seed_threshold"); s > 0 {
				opts.SeedFraction = s
			}
			return segment.Watershed(src, work, opts)
		},
		accept: func(d feature.Descriptor, p Params) bool {
			return d.Area >= p.Value("min_grain_size") &&
				d.Area <= p.Value("max_grain_size")
		},
		build: func(i int, d feature.Descriptor, reg segment.Region, _ Params, _ Calibration) (FeatureRecord, annotate.Overlay) {
			rec := FeatureRecord{Descriptor: d, Label: LabelGrain, Boundary: reg.Points}
			ov := annotate.Overlay{
				Boundary: reg.Points,
				Label:    strconv.Itoa(i + 1),
				LabelAt:  d.Centroid.ToImagePoint(),
				Color:    annotate.PaletteColor(i),
			}
			return rec, ov
		},
		metric:   func(rec FeatureRecord, cal Calibration) float64 { return cal.Area(rec.Area) },
		finalize: grainsAggregate,
	}
}

func grainsAggregate(res *Result, imageArea float64, _ Params) {
	var total float64
	for _, f := range res.Features {
		total += f.Area
	}
	pct := 0.0
	if imageArea > 0 {
		pct = total / imageArea * 100
	}
	res.Percentages = map[string]float64{"grain_area": pct}
}
