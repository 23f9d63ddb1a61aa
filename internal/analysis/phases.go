package analysis

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"micrograph-analyzer/internal/annotate"
	"micrograph-analyzer/internal/feature"
	"micrograph-analyzer/internal/segment"
)

// runPhases quantifies the phase composition by intensity clustering.
// Phases are numbered from 0 by ascending intensity, so phase 0 is always
// the darkest constituent regardless of clustering order.
func (a *Analyzer) runPhases(src, gray gocv.Mat, p Params) (*Result, error) {
	work := gray
	if s := p.Value("smoothing_factor"); s > 0 {
		k := 2*int(math.Ceil(2*s)) + 1
		blurred := gocv.NewMat()
		gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), s, s, gocv.BorderDefault)
		defer blurred.Close()
		work = blurred
	}

	clusters, err := segment.Cluster(work, int(p.Value("n_clusters")), p.Value("min_area"))
	if err != nil {
		return nil, err
	}

	total := float64(gray.Rows() * gray.Cols())
	var (
		records  []FeatureRecord
		overlays []annotate.Overlay
		phases   []PhaseStat
		areas    []float64
	)
	for _, c := range clusters {
		phase := c.ClusterID
		pct := 0.0
		if total > 0 {
			pct = float64(c.PixelCount) / total * 100
		}
		phases = append(phases, PhaseStat{
			Phase:         phase,
			AreaPercent:   pct,
			MeanIntensity: c.MeanIntensity,
			RegionCount:   len(c.Regions),
		})

		phaseLabel := Label(fmt.Sprintf("phase %d", phase))
		color := annotate.PaletteColor(c.ClusterID)
		for _, reg := range c.Regions {
			d := feature.Compute(gray, reg)
			records = append(records, FeatureRecord{
				Descriptor: d,
				Label:      phaseLabel,
				Boundary:   reg.Points,
			})
			areas = append(areas, d.Area)
			overlays = append(overlays, annotate.Overlay{
				Boundary: reg.Points,
				Label:    fmt.Sprintf("P%d", phase),
				LabelAt:  d.Centroid.ToImagePoint(),
				Color:    color,
			})
		}
	}

	res := &Result{
		Count:     len(records),
		Features:  records,
		Phases:    phases,
		Summary:   Summarize(areas),
		Annotated: annotate.Render(src, overlays),
	}
	return res, nil
}
