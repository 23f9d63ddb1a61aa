package analysis

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"

	apperr "micrograph-analyzer/internal/errors"
	"micrograph-analyzer/internal/logging"
)

var black = color.RGBA{A: 255}

func newAnalyzer() *Analyzer {
	log := logging.Nop()
	return New(log, NewRegistry(log), Calibration{})
}

// brightField returns a BGR image filled with a bright matrix tone.
func brightField(w, h int) gocv.Mat {
	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	m.SetTo(gocv.NewScalar(255, 255, 255, 0))
	return m
}

func TestRunPorositySingleCircle(t *testing.T) {
	src := brightField(200, 200)
	defer src.Close()
	gocv.Circle(&src, image.Pt(100, 100), 10, black, -1)

	a := newAnalyzer()
	res, err := a.Run(src, KindPorosity, Params{
		"min_area":              10,
		"max_area":              10000,
		"circularity_threshold": 0.3,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()

	if res.Count != 1 {
		t.Fatalf("Count = %d, want 1 pore", res.Count)
	}
	pore := res.Features[0]
	if pore.Label != LabelPore {
		t.Errorf("label = %v, want pore", pore.Label)
	}
	wantArea := math.Pi * 10 * 10
	if math.Abs(pore.Area-wantArea)/wantArea > 0.4 {
		t.Errorf("area = %v, want about %v", pore.Area, wantArea)
	}
	if pore.Circularity < 0.7 {
		t.Errorf("circularity = %v, want near 1", pore.Circularity)
	}

	pct := res.Percentages["porosity"]
	wantPct := pore.Area / (200 * 200) * 100
	if math.Abs(pct-wantPct) > 1e-9 {
		t.Errorf("porosity = %v, want %v", pct, wantPct)
	}
	if pct < 0 || pct > 100 {
		t.Errorf("porosity %v outside [0,100]", pct)
	}
	if res.Annotated.Empty() {
		t.Error("no annotated image produced")
	}
	if res.Params["min_area"] != 10 {
		t.Errorf("result params = %v, want run overrides", res.Params)
	}
}

func TestRunPorosityFeaturelessImage(t *testing.T) {
	src := gocv.NewMatWithSize(200, 200, gocv.MatTypeCV8UC3)
	defer src.Close()

	a := newAnalyzer()
	res, err := a.Run(src, KindPorosity, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()

	if res.Count != 0 {
		t.Errorf("Count = %d, want 0 on a featureless image", res.Count)
	}
	if got := res.Percentages["porosity"]; got != 0 {
		t.Errorf("porosity = %v, want 0", got)
	}
	if res.Summary != (Summary{}) {
		t.Errorf("Summary = %+v, want zero value", res.Summary)
	}
}

func TestRunNodularityMixedGraphite(t *testing.T) {
	src := brightField(200, 200)
	defer src.Close()
	// A tall ellipse reads as a nodule under the width/height test; a long
	// horizontal bar reads as a flake.
	gocv.Ellipse(&src, image.Pt(60, 60), image.Pt(10, 20), 0, 0, 360, black, -1)
	rect := image.Rect(100, 140, 160, 146)
	gocv.Rectangle(&src, rect, black, -1)

	a := newAnalyzer()
	res, err := a.Run(src, KindNodularity, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()

	if res.Buckets["nodules"] != 1 || res.Buckets["flakes"] != 1 {
		t.Fatalf("buckets = %v, want 1 nodule and 1 flake", res.Buckets)
	}
	pct := res.Percentages["nodularity"]
	if pct <= 50 || pct >= 95 {
		t.Errorf("nodularity = %v, want the ellipse's area share (between 50 and 95)", pct)
	}
}

func TestRunFlakesTypeBands(t *testing.T) {
	src := brightField(300, 200)
	defer src.Close()
	// Two flakes in different length bands: 20 px (Type A) and 60 px (Type C).
	gocv.Rectangle(&src, image.Rect(20, 50, 40, 54), black, -1)
	gocv.Rectangle(&src, image.Rect(20, 120, 80, 126), black, -1)

	a := newAnalyzer()
	res, err := a.Run(src, KindFlakes, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()

	if res.Count != 2 {
		t.Fatalf("Count = %d, want 2 flakes", res.Count)
	}
	if res.Buckets["Type A"] != 1 || res.Buckets["Type C"] != 1 {
		t.Errorf("buckets = %v, want one Type A and one Type C", res.Buckets)
	}
	for _, f := range res.Features {
		if f.Length <= 0 {
			t.Errorf("flake length = %v, want positive", f.Length)
		}
	}
	if got := res.Percentages["flake_area"]; got <= 0 || got >= 100 {
		t.Errorf("flake_area = %v, want the flakes' area share", got)
	}
}

func TestRunPhasesThreeBands(t *testing.T) {
	src := gocv.NewMatWithSize(90, 90, gocv.MatTypeCV8UC3)
	defer src.Close()
	mid := src.Region(image.Rect(0, 30, 90, 60))
	mid.SetTo(gocv.NewScalar(128, 128, 128, 0))
	mid.Close()
	bottom := src.Region(image.Rect(0, 60, 90, 90))
	bottom.SetTo(gocv.NewScalar(250, 250, 250, 0))
	bottom.Close()

	a := newAnalyzer()
	res, err := a.Run(src, KindPhases, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()

	if len(res.Phases) != 3 {
		t.Fatalf("got %d phases, want 3", len(res.Phases))
	}
	var totalPct float64
	for i, ph := range res.Phases {
		if ph.Phase != i {
			t.Errorf("phase numbering = %d at index %d", ph.Phase, i)
		}
		totalPct += ph.AreaPercent
	}
	if math.Abs(totalPct-100) > 1 {
		t.Errorf("phase percentages sum to %v, want 100", totalPct)
	}
	for i := 1; i < len(res.Phases); i++ {
		if res.Phases[i-1].MeanIntensity >= res.Phases[i].MeanIntensity {
			t.Errorf("phases not ordered by intensity: %v >= %v",
				res.Phases[i-1].MeanIntensity, res.Phases[i].MeanIntensity)
		}
	}
}

func TestRunRejectsUnknownKind(t *testing.T) {
	src := brightField(50, 50)
	defer src.Close()

	a := newAnalyzer()
	if _, err := a.Run(src, Kind("texture"), nil); err == nil {
		t.Fatal("expected rejection of unknown kind")
	} else if !apperr.IsParameterError(err) {
		t.Errorf("error %v is not a parameter error", err)
	}
}

func TestRunRejectsBadOverride(t *testing.T) {
	src := brightField(50, 50)
	defer src.Close()

	a := newAnalyzer()
	if _, err := a.Run(src, KindPorosity, Params{"min_radius": 5}); err == nil {
		t.Fatal("expected rejection of unknown parameter")
	}
}

func TestRunRejectsEmptyImage(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	a := newAnalyzer()
	if _, err := a.Run(empty, KindPorosity, nil); err == nil {
		t.Fatal("expected rejection of empty image")
	} else if !apperr.IsInputError(err) {
		t.Errorf("error %v is not an input error", err)
	}
}

func TestRunOverridesDoNotTouchRegistry(t *testing.T) {
	src := brightField(100, 100)
	defer src.Close()

	log := logging.Nop()
	reg := NewRegistry(log)
	a := New(log, reg, Calibration{})

	res, err := a.Run(src, KindPorosity, Params{"min_area": 77})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	res.Close()

	p, _ := reg.Snapshot().Kind(KindPorosity)
	if p["min_area"] != 10 {
		t.Errorf("registry min_area = %v, want default 10 after per-run override", p["min_area"])
	}
}

func TestRunInclusionsKeepsBrightRegion(t *testing.T) {
	src := gocv.NewMatWithSize(200, 200, gocv.MatTypeCV8UC3)
	defer src.Close()
	bright := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	gocv.Circle(&src, image.Pt(100, 100), 8, bright, -1)

	a := newAnalyzer()
	res, err := a.Run(src, KindInclusions, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()

	if res.Count != 1 {
		t.Fatalf("Count = %d, want 1 inclusion", res.Count)
	}
	inc := res.Features[0]
	// The default intensity_threshold of 0.3 keeps regions brighter than
	// 76.5 on the 8-bit scale.
	if inc.MeanIntensity < 0.3*255 {
		t.Errorf("mean intensity = %v, below the acceptance floor", inc.MeanIntensity)
	}
	if res.Buckets["small"]+res.Buckets["medium"]+res.Buckets["large"] != 1 {
		t.Errorf("buckets = %v, want one size class filled", res.Buckets)
	}
	if got := res.Percentages["inclusion_area"]; got <= 0 {
		t.Errorf("inclusion_area = %v, want positive", got)
	}
}

func TestRunParticlesKeepsMidBrightParticle(t *testing.T) {
	src := gocv.NewMatWithSize(200, 200, gocv.MatTypeCV8UC3)
	defer src.Close()
	// Intensity 150 clears the default floor of 76.5 but sits well below
	// full scale.
	dim := color.RGBA{R: 150, G: 150, B: 150, A: 255}
	gocv.Circle(&src, image.Pt(100, 100), 6, dim, -1)

	a := newAnalyzer()
	res, err := a.Run(src, KindParticles, Params{"max_size": 300})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()

	if res.Count != 1 {
		t.Fatalf("Count = %d, want 1 particle", res.Count)
	}
	got := res.Features[0].MeanIntensity
	if got < 0.3*255 || got > 155 {
		t.Errorf("mean intensity = %v, want between 76.5 and 155", got)
	}
	if pct := res.Percentages["particle_area"]; pct <= 0 {
		t.Errorf("particle_area = %v, want positive", pct)
	}
}

func TestRunGrainsGatesOnArea(t *testing.T) {
	src := gocv.NewMatWithSize(120, 120, gocv.MatTypeCV8UC3)
	defer src.Close()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.Circle(&src, image.Pt(45, 60), 20, white, -1)
	gocv.Circle(&src, image.Pt(78, 60), 20, white, -1)

	a := newAnalyzer()

	// Each split grain covers about 1200 px, far above the default
	// max_grain_size of 200 px even though its equivalent diameter is
	// only about 40.
	res, err := a.Run(src, KindGrainSize, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Count != 0 {
		t.Errorf("Count = %d with default bounds, want 0", res.Count)
	}
	res.Close()

	res, err = a.Run(src, KindGrainSize, Params{"min_grain_size": 100, "max_grain_size": 5000})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()

	if res.Count != 2 {
		t.Fatalf("Count = %d, want 2 grains", res.Count)
	}
	if res.Summary.Mean < 500 {
		t.Errorf("summary mean = %v, want the grain area scale", res.Summary.Mean)
	}
	if pct := res.Percentages["grain_area"]; pct <= 0 || pct >= 100 {
		t.Errorf("grain_area = %v, want the grains' area share", pct)
	}
}

func TestRunDendriticSummarizesSegmentLengths(t *testing.T) {
	src := gocv.NewMatWithSize(200, 200, gocv.MatTypeCV8UC3)
	defer src.Close()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.Line(&src, image.Pt(20, 100), image.Pt(150, 100), white, 2)

	a := newAnalyzer()
	res, err := a.Run(src, KindDendritic, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()

	if res.Count < 1 {
		t.Fatal("no arm segments detected")
	}
	// A single 130 px arm must still yield length statistics.
	if res.Summary.Min <= 0 {
		t.Errorf("summary min = %v, want positive", res.Summary.Min)
	}
	if res.Summary.Mean < 50 || res.Summary.Mean > 140 {
		t.Errorf("summary mean = %v, want near the arm length of 130", res.Summary.Mean)
	}
	for _, f := range res.Features {
		if f.Length < 10 || f.Length > 140 {
			t.Errorf("segment length = %v, outside the drawn arm", f.Length)
		}
	}
}

func TestRunCoatingMeasuresLayer(t *testing.T) {
	src := gocv.NewMatWithSize(200, 200, gocv.MatTypeCV8UC3)
	defer src.Close()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.Rectangle(&src, image.Rect(20, 80, 180, 100), white, -1)

	a := newAnalyzer()
	res, err := a.Run(src, KindCoating, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()

	if res.Count < 1 {
		t.Fatal("no coating layer detected")
	}
	for _, f := range res.Features {
		if f.Thickness < 1 || f.Thickness > 100 {
			t.Errorf("thickness = %v, outside the acceptance bounds", f.Thickness)
		}
	}
	if pct := res.Percentages["coverage"]; pct <= 0 || pct >= 100 {
		t.Errorf("coverage = %v, want the layer's area share", pct)
	}
	if res.Annotated.Empty() {
		t.Error("no annotated image produced")
	}
}
