package segment

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func TestThresholdFindsBrightRegions(t *testing.T) {
	m := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC1)
	defer m.Close()
	gocv.Circle(&m, image.Pt(25, 25), 8, white, -1)
	gocv.Circle(&m, image.Pt(70, 70), 12, white, -1)

	regions := Threshold(m, DefaultThresholdOptions())
	if len(regions) != 2 {
		t.Fatalf("found %d regions, want 2", len(regions))
	}
	for i, r := range regions {
		if len(r.Points) < 3 {
			t.Errorf("region %d has %d boundary points, want at least 3", i, len(r.Points))
		}
	}
}

func TestThresholdInvertFindsDarkRegions(t *testing.T) {
	m := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC1)
	defer m.Close()
	m.SetTo(gocv.NewScalar(255, 0, 0, 0))
	gocv.Circle(&m, image.Pt(50, 50), 10, color.RGBA{A: 255}, -1)

	opts := DefaultThresholdOptions()
	opts.Invert = true
	regions := Threshold(m, opts)
	if len(regions) != 1 {
		t.Fatalf("found %d regions, want 1", len(regions))
	}
}

func TestThresholdOpenRemovesSpeckle(t *testing.T) {
	m := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC1)
	defer m.Close()
	gocv.Circle(&m, image.Pt(50, 50), 10, white, -1)
	// Single-pixel speckle must not survive the open pass.
	m.SetUCharAt(5, 5, 255)
	m.SetUCharAt(90, 12, 255)

	regions := Threshold(m, DefaultThresholdOptions())
	if len(regions) != 1 {
		t.Fatalf("found %d regions, want 1 (speckle not removed)", len(regions))
	}
}

func TestEdgesFindsContrastBoundary(t *testing.T) {
	m := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC1)
	defer m.Close()
	m.SetTo(gocv.NewScalar(200, 0, 0, 0))
	gocv.Circle(&m, image.Pt(50, 50), 15, color.RGBA{R: 20, G: 20, B: 20, A: 255}, -1)

	regions := Edges(m, DefaultEdgeOptions())
	if len(regions) == 0 {
		t.Fatal("no regions found along a strong contrast boundary")
	}
}

func TestEdgeMaskDilationOptional(t *testing.T) {
	m := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC1)
	defer m.Close()
	bar := m.Region(image.Rect(0, 40, 100, 60))
	bar.SetTo(gocv.NewScalar(255, 0, 0, 0))
	bar.Close()

	opts := DefaultEdgeOptions()
	opts.DilateIterations = 0
	thin := EdgeMask(m, opts)
	defer thin.Close()

	opts.DilateIterations = 1
	thick := EdgeMask(m, opts)
	defer thick.Close()

	thinCount := gocv.CountNonZero(thin)
	thickCount := gocv.CountNonZero(thick)
	if thinCount == 0 {
		t.Fatal("no edges detected")
	}
	if thickCount <= thinCount {
		t.Errorf("dilated mask has %d pixels, undilated %d; dilation had no effect",
			thickCount, thinCount)
	}
}

func TestWatershedSplitsTouchingBlobs(t *testing.T) {
	// Two overlapping circles merge into one blob under plain
	// thresholding; watershed must split them apart again.
	gray := gocv.NewMatWithSize(120, 120, gocv.MatTypeCV8UC1)
	defer gray.Close()
	gocv.Circle(&gray, image.Pt(45, 60), 20, white, -1)
	gocv.Circle(&gray, image.Pt(78, 60), 20, white, -1)

	merged := Threshold(gray, DefaultThresholdOptions())
	if len(merged) != 1 {
		t.Fatalf("plain threshold found %d regions, want 1 merged blob", len(merged))
	}

	src := gocv.NewMat()
	defer src.Close()
	gocv.CvtColor(gray, &src, gocv.ColorGrayToBGR)

	regions := Watershed(src, gray, DefaultWatershedOptions())
	if len(regions) != 2 {
		t.Fatalf("watershed found %d regions, want 2", len(regions))
	}
}

func TestWatershedFallsBackWithoutSeeds(t *testing.T) {
	gray := gocv.NewMatWithSize(60, 60, gocv.MatTypeCV8UC1)
	defer gray.Close()

	src := gocv.NewMat()
	defer src.Close()
	gocv.CvtColor(gray, &src, gocv.ColorGrayToBGR)

	regions := Watershed(src, gray, DefaultWatershedOptions())
	if len(regions) != 0 {
		t.Errorf("blank image yielded %d regions, want 0", len(regions))
	}
}

func TestClusterSeparatesIntensities(t *testing.T) {
	m := gocv.NewMatWithSize(90, 90, gocv.MatTypeCV8UC1)
	defer m.Close()
	mid := m.Region(image.Rect(0, 30, 90, 60))
	mid.SetTo(gocv.NewScalar(128, 0, 0, 0))
	mid.Close()
	top := m.Region(image.Rect(0, 60, 90, 90))
	top.SetTo(gocv.NewScalar(250, 0, 0, 0))
	top.Close()

	clusters, err := Cluster(m, 3, 10)
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if len(clusters) != 3 {
		t.Fatalf("got %d clusters, want 3", len(clusters))
	}
	// Ordered by ascending intensity.
	for i := 1; i < len(clusters); i++ {
		if clusters[i-1].Center >= clusters[i].Center {
			t.Errorf("clusters not ordered by center: %v >= %v",
				clusters[i-1].Center, clusters[i].Center)
		}
	}
	third := 90 * 30
	for i, c := range clusters {
		if c.PixelCount != third {
			t.Errorf("cluster %d has %d pixels, want %d", i, c.PixelCount, third)
		}
	}
}

func TestClusterRejectsBadK(t *testing.T) {
	m := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC1)
	defer m.Close()
	if _, err := Cluster(m, 1, 0); err == nil {
		t.Fatal("expected error for k < 2")
	}
}
