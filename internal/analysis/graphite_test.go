package analysis

import (
	"testing"

	"micrograph-analyzer/internal/feature"
	"micrograph-analyzer/pkg/geometry"
)

func TestClassifyFlakeType(t *testing.T) {
	tests := []struct {
		length float64
		want   Label
	}{
		{0, LabelTypeA},
		{24.9, LabelTypeA},
		{25, LabelTypeB},
		{49.9, LabelTypeB},
		{50, LabelTypeC},
		{99.9, LabelTypeC},
		{100, LabelTypeD},
		{199.9, LabelTypeD},
		{200, LabelTypeE},
		{1e6, LabelTypeE},
	}
	for _, tt := range tests {
		if got := classifyFlakeType(tt.length); got != tt.want {
			t.Errorf("classifyFlakeType(%v) = %v, want %v", tt.length, got, tt.want)
		}
	}
}

func TestClassifyFlakeTypeBandsAreExclusive(t *testing.T) {
	// Each boundary value belongs to exactly the upper band.
	for _, b := range []float64{25, 50, 100, 200} {
		below := classifyFlakeType(b - 0.001)
		at := classifyFlakeType(b)
		if below == at {
			t.Errorf("boundary %v: %v on both sides", b, at)
		}
	}
}

func TestClassifyGraphite(t *testing.T) {
	p := DefaultConfig().kinds[KindNodularity]

	round := feature.Descriptor{
		Circularity: 0.85,
		AspectRatio: 0.75,
		BoundingBox: geometry.RectInt{Width: 15, Height: 20},
	}
	if got := classifyGraphite(round, p); got != LabelNodule {
		t.Errorf("round particle = %v, want nodule", got)
	}

	irregular := feature.Descriptor{Circularity: 0.4, AspectRatio: 0.75}
	if got := classifyGraphite(irregular, p); got != LabelFlake {
		t.Errorf("irregular particle = %v, want flake", got)
	}

	elongated := feature.Descriptor{Circularity: 0.85, AspectRatio: 3.0}
	if got := classifyGraphite(elongated, p); got != LabelFlake {
		t.Errorf("elongated particle = %v, want flake", got)
	}
}

func TestNodularityAggregate(t *testing.T) {
	res := &Result{Features: []FeatureRecord{
		{Descriptor: feature.Descriptor{Area: 300}, Label: LabelNodule},
		{Descriptor: feature.Descriptor{Area: 100}, Label: LabelFlake},
	}}
	nodularityAggregate(res, 0, nil)
	if got := res.Percentages["nodularity"]; got != 75 {
		t.Errorf("nodularity = %v, want 75", got)
	}
	if res.Buckets["nodules"] != 1 || res.Buckets["flakes"] != 1 {
		t.Errorf("buckets = %v", res.Buckets)
	}
}

func TestNodularityAggregateNoGraphite(t *testing.T) {
	res := &Result{}
	nodularityAggregate(res, 0, nil)
	if got := res.Percentages["nodularity"]; got != 0 {
		t.Errorf("nodularity with no graphite = %v, want 0", got)
	}
}

func TestFlakeColorsCoverEveryType(t *testing.T) {
	for _, label := range []Label{LabelTypeA, LabelTypeB, LabelTypeC, LabelTypeD, LabelTypeE} {
		if _, ok := flakeTypeColors[label]; !ok {
			t.Errorf("no color for %v", label)
		}
	}
}
