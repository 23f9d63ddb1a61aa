package analysis

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"micrograph-analyzer/internal/annotate"
	"micrograph-analyzer/internal/segment"
	"micrograph-analyzer/pkg/geometry"
)

// houghVoteScale maps line_detection_threshold to the Hough accumulator
// vote minimum: threshold 0.1 requires 50 collinear edge pixels.
const houghVoteScale = 500

// runDendritic measures dendritic arm spacing. Arms show up as parallel
// line segments in the edge map; probabilistic Hough finds the segments,
// the angle gate keeps the primary arm family, and the spacing statistics
// summarize the accepted segment lengths.
func (a *Analyzer) runDendritic(src, gray gocv.Mat, p Params) (*Result, error) {
	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)
	defer blurred.Close()

	// Thin edges. Dilation would merge adjacent arms into blobs that the
	// line detector cannot separate.
	opts := segment.DefaultEdgeOptions()
	opts.DilateIterations = 0
	edges := segment.EdgeMask(blurred, opts)
	defer edges.Close()

	votes := int(math.Round(p.Value("line_detection_threshold") * houghVoteScale))
	if votes < 1 {
		votes = 1
	}
	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, 1, math.Pi/180, votes,
		float32(p.Value("min_spacing")), float32(p.Value("max_spacing")))

	var (
		records  []FeatureRecord
		overlays []annotate.Overlay
	)
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		start := geometry.NewPoint2D(float64(v[0]), float64(v[1]))
		end := geometry.NewPoint2D(float64(v[2]), float64(v[3]))
		length := geometry.SegmentLength(start, end)
		angle := normalizeAngle(geometry.SegmentAngleDegrees(start, end))
		if !acceptSegment(length, angle, p) {
			continue
		}
		// Gates compare pixel lengths; the reported length carries the
		// physical scale when calibrated.
		records = append(records, FeatureRecord{
			Label:  LabelSegment,
			Start:  start,
			End:    end,
			Length: a.Calibration.Length(length),
			Angle:  angle,
		})
		mid := geometry.NewPoint2D((start.X+end.X)/2, (start.Y+end.Y)/2)
		overlays = append(overlays, annotate.Overlay{
			Boundary: []image.Point{start.ToImagePoint(), end.ToImagePoint()},
			Label:    fmt.Sprintf("%.0f", a.Calibration.Length(length)),
			LabelAt:  mid.ToImagePoint(),
			Color:    annotate.Green,
		})
	}

	lengths := make([]float64, 0, len(records))
	for _, r := range records {
		lengths = append(lengths, r.Length)
	}
	res := &Result{
		Count:     len(records),
		Features:  records,
		Summary:   Summarize(lengths),
		Annotated: annotate.Render(src, overlays),
	}
	return res, nil
}

// acceptSegment keeps arms whose length falls inside the spacing window and
// whose orientation stays within the angle gate.
func acceptSegment(length, angle float64, p Params) bool {
	return length >= p.Value("min_spacing") &&
		length <= p.Value("max_spacing") &&
		math.Abs(angle) <= p.Value("angle_threshold")
}

// normalizeAngle folds an orientation into (-90, 90]. A segment has no
// direction, so 170 degrees and -10 degrees are the same arm orientation.
func normalizeAngle(deg float64) float64 {
	for deg > 90 {
		deg -= 180
	}
	for deg <= -90 {
		deg += 180
	}
	return deg
}
