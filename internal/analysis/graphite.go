package analysis

import (
	"image/color"

	"gocv.io/x/gocv"

	"micrograph-analyzer/internal/annotate"
	"micrograph-analyzer/internal/feature"
	"micrograph-analyzer/internal/segment"
)

// Flake length bands (pixels) for the Type A through Type E classes.
var flakeBands = []struct {
	limit float64
	label Label
}{
	{25, LabelTypeA},
	{50, LabelTypeB},
	{100, LabelTypeC},
	{200, LabelTypeD},
}

var flakeTypeColors = map[Label]color.RGBA{
	LabelTypeA: annotate.Green,
	LabelTypeB: {R: 255, G: 255, A: 255},
	LabelTypeC: {R: 255, G: 165, A: 255},
	LabelTypeD: annotate.Red,
	LabelTypeE: {R: 128, B: 128, A: 255},
}

// nodularityPolicy classifies graphite particles in ductile iron as nodules
// or flakes and reports the nodularity percentage: the area of nodular
// graphite over all graphite.
func nodularityPolicy() regionPolicy {
	return regionPolicy{
		blur: true,
		segment: func(_, work gocv.Mat, _ Params) []segment.Region {
			opts := segment.DefaultThresholdOptions()
			opts.Invert = true
			return segment.Threshold(work, opts)
		},
		accept: func(d feature.Descriptor, p Params) bool {
			return d.Area >= p.Value("min_area") && d.Area <= p.Value("max_area")
		},
		build: func(_ int, d feature.Descriptor, reg segment.Region, p Params, _ Calibration) (FeatureRecord, annotate.Overlay) {
			label := classifyGraphite(d, p)
			rec := FeatureRecord{Descriptor: d, Label: label, Boundary: reg.Points}
			ov := annotate.Overlay{
				Boundary: reg.Points,
				LabelAt:  d.Centroid.ToImagePoint(),
			}
			if label == LabelNodule {
				ov.Label, ov.Color = "N", annotate.Green
			} else {
				ov.Label, ov.Color = "F", annotate.Red
			}
			return rec, ov
		},
		metric:   func(rec FeatureRecord, _ Calibration) float64 { return rec.Area },
		finalize: nodularityAggregate,
	}
}

// classifyGraphite labels one graphite particle. A nodule must be round and
// must not be elongated; everything else is flake graphite. The width over
// height ratio is taken from the raw bounding box, so the elongation test
// only fires on horizontally stretched particles.
func classifyGraphite(d feature.Descriptor, p Params) Label {
	if d.Circularity >= p.Value("min_circularity") &&
		d.AspectRatio <= p.Value("shape_factor_threshold") {
		return LabelNodule
	}
	return LabelFlake
}

// nodularityAggregate reports nodule area over total graphite area. No
// graphite at all yields 0%, never a division error.
func nodularityAggregate(res *Result, _ float64, _ Params) {
	var noduleArea, totalArea float64
	nodules, flakes := 0, 0
	for _, f := range res.Features {
		totalArea += f.Area
		if f.Label == LabelNodule {
			noduleArea += f.Area
			nodules++
		} else {
			flakes++
		}
	}
	pct := 0.0
	if totalArea > 0 {
		pct = noduleArea / totalArea * 100
	}
	res.Percentages = map[string]float64{"nodularity": pct}
	res.Buckets = map[string]int{"nodules": nodules, "flakes": flakes}
}

// flakesPolicy measures flake graphite in gray iron: elongated dark
// particles classified into Type A through Type E length bands.
func flakesPolicy() regionPolicy {
	return regionPolicy{
		blur: true,
		segment: func(_, work gocv.Mat, _ Params) []segment.Region {
			opts := segment.DefaultThresholdOptions()
			opts.Invert = true
			return segment.Threshold(work, opts)
		},
		accept: func(d feature.Descriptor, p Params) bool {
			length := d.BoundingBox.MajorLength()
			minor := d.BoundingBox.MinorLength()
			if minor <= 0 {
				return false
			}
			return length >= p.Value("min_length") &&
				length <= p.Value("max_length") &&
				length/minor >= p.Value("aspect_ratio_threshold")
		},
		build: func(_ int, d feature.Descriptor, reg segment.Region, p Params, _ Calibration) (FeatureRecord, annotate.Overlay) {
			length := d.BoundingBox.MajorLength()
			label := LabelFlake
			if p.Value("type_classification") != 0 {
				label = classifyFlakeType(length)
			}
			rec := FeatureRecord{
				Descriptor: d,
				Label:      label,
				Length:     length,
				Boundary:   reg.Points,
			}
			ov := annotate.Overlay{
				Boundary: reg.Points,
				Label:    string(label),
				LabelAt:  d.Centroid.ToImagePoint(),
				Color:    flakeColor(label),
			}
			return rec, ov
		},
		metric:   func(rec FeatureRecord, _ Calibration) float64 { return rec.Length },
		finalize: flakesAggregate,
	}
}

// classifyFlakeType assigns the length band. Bands are contiguous and
// exhaustive: every non-negative length maps to exactly one type.
func classifyFlakeType(length float64) Label {
	for _, band := range flakeBands {
		if length < band.limit {
			return band.label
		}
	}
	return LabelTypeE
}

func flakeColor(label Label) color.RGBA {
	if c, ok := flakeTypeColors[label]; ok {
		return c
	}
	return annotate.Red
}

func flakesAggregate(res *Result, imageArea float64, _ Params) {
	buckets := make(map[string]int)
	var total float64
	for _, f := range res.Features {
		buckets[string(f.Label)]++
		total += f.Area
	}
	res.Buckets = buckets
	pct := 0.0
	if imageArea > 0 {
		pct = total / imageArea * 100
	}
	res.Percentages = map[string]float64{"flake_area": pct}
}
