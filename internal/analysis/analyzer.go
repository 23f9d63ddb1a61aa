package analysis

import (
	"image"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"micrograph-analyzer/internal/annotate"
	apperr "micrograph-analyzer/internal/errors"
	"micrograph-analyzer/internal/feature"
	"micrograph-analyzer/internal/raster"
	"micrograph-analyzer/internal/segment"
)

// Analyzer runs the kind-specific classification pipelines. Parameters are
// read from the registry snapshot taken at the start of each run, so a
// concurrent Update never changes a run mid-flight.
type Analyzer struct {
	log         zerolog.Logger
	registry    *Registry
	Calibration Calibration
}

// New creates an Analyzer backed by the given parameter registry.
func New(log zerolog.Logger, registry *Registry, cal Calibration) *Analyzer {
	return &Analyzer{log: log, registry: registry, Calibration: cal}
}

// Run analyzes src with the named kind. Overrides, when non-empty, are
// validated and applied on top of the registry snapshot for this run only;
// the registry itself is not modified. The caller owns src and the
// returned Result's annotated image.
func (a *Analyzer) Run(src gocv.Mat, kind Kind, overrides Params) (*Result, error) {
	if err := raster.Validate(src); err != nil {
		return nil, err
	}

	cfg := a.registry.Snapshot()
	if len(overrides) > 0 {
		next, err := cfg.WithOverrides(kind, overrides)
		if err != nil {
			return nil, err
		}
		cfg = next
	}
	params, err := cfg.Kind(kind)
	if err != nil {
		return nil, err
	}

	gray := raster.ToGray(src)
	defer gray.Close()

	a.log.Debug().
		Str("kind", string(kind)).
		Int("width", src.Cols()).
		Int("height", src.Rows()).
		Msg("analysis started")

	var res *Result
	switch kind {
	case KindPorosity:
		res, err = a.runRegions(src, gray, params, porosityPolicy())
	case KindPhases:
		res, err = a.runPhases(src, gray, params)
	case KindInclusions:
		res, err = a.runRegions(src, gray, params, inclusionsPolicy())
	case KindGrainSize:
		res, err = a.runRegions(src, gray, params, grainPolicy())
	case KindDendritic:
		res, err = a.runDendritic(src, gray, params)
	case KindParticles:
		res, err = a.runRegions(src, gray, params, particlesPolicy())
	case KindNodularity:
		res, err = a.runRegions(src, gray, params, nodularityPolicy())
	case KindFlakes:
		res, err = a.runRegions(src, gray, params, flakesPolicy())
	case KindCoating:
		res, err = a.runRegions(src, gray, params, coatingPolicy())
	default:
		return nil, apperr.NewParameterError("unknown analysis kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	res.Kind = kind
	res.Params = params
	res.Calibration = a.Calibration

	a.log.Info().
		Str("kind", string(kind)).
		Int("count", res.Count).
		Msg("analysis finished")
	return res, nil
}

// regionPolicy is the per-kind plug-in for the shared contour pipeline:
// segment, measure, accept, label, annotate.
type regionPolicy struct {
	// blur smooths the raster before segmentation. Measurements are always
	// taken against the unblurred grayscale.
	blur bool
	// segment extracts candidate regions. src is the original raster (some
	// strategies flood along its gradients), work the possibly blurred
	// grayscale.
	segment func(src, work gocv.Mat, p Params) []segment.Region
	// accept decides whether a measured candidate is a real feature.
	accept func(d feature.Descriptor, p Params) bool
	// build labels one accepted feature and describes its overlay. i is the
	// accepted-feature index.
	build func(i int, d feature.Descriptor, reg segment.Region, p Params, cal Calibration) (FeatureRecord, annotate.Overlay)
	// metric selects the quantity summarized across all features.
	metric func(rec FeatureRecord, cal Calibration) float64
	// finalize fills kind-specific aggregates (percentages, buckets).
	finalize func(res *Result, imageArea float64, p Params)
}

func (a *Analyzer) runRegions(src, gray gocv.Mat, p Params, pol regionPolicy) (*Result, error) {
	work := gray
	if pol.blur {
		blurred := gocv.NewMat()
		gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)
		defer blurred.Close()
		work = blurred
	}

	regions := pol.segment(src, work, p)
	a.log.Debug().Int("candidates", len(regions)).Msg("segmentation done")

	records := []FeatureRecord{}
	var (
		overlays []annotate.Overlay
		metrics  []float64
	)
	for _, reg := range regions {
		d := feature.Compute(gray, reg)
		if !pol.accept(d, p) {
			continue
		}
		rec, ov := pol.build(len(records), d, reg, p, a.Calibration)
		records = append(records, rec)
		overlays = append(overlays, ov)
		metrics = append(metrics, pol.metric(rec, a.Calibration))
	}

	res := &Result{
		Count:    len(records),
		Features: records,
		Summary:  Summarize(metrics),
	}
	if pol.finalize != nil {
		pol.finalize(res, float64(gray.Rows()*gray.Cols()), p)
	}
	res.Annotated = annotate.Render(src, overlays)
	return res, nil
}
