package analysis

import (
	"testing"

	apperr "micrograph-analyzer/internal/errors"
	"micrograph-analyzer/internal/logging"
)

func TestDefaultConfigCoversAllKinds(t *testing.T) {
	cfg := DefaultConfig()
	for _, kind := range Kinds() {
		p, err := cfg.Kind(kind)
		if err != nil {
			t.Errorf("Kind(%s): %v", kind, err)
			continue
		}
		if len(p) == 0 {
			t.Errorf("Kind(%s) has no parameters", kind)
		}
	}
}

func TestWithOverridesMergesPartially(t *testing.T) {
	cfg := DefaultConfig()
	next, err := cfg.WithOverrides(KindPorosity, Params{"min_area": 25})
	if err != nil {
		t.Fatalf("WithOverrides: %v", err)
	}

	p, _ := next.Kind(KindPorosity)
	if p["min_area"] != 25 {
		t.Errorf("min_area = %v, want 25", p["min_area"])
	}
	if p["max_area"] != 10000 {
		t.Errorf("max_area = %v, want untouched default 10000", p["max_area"])
	}
	if next.Version() != cfg.Version()+1 {
		t.Errorf("version = %d, want %d", next.Version(), cfg.Version()+1)
	}

	// The original snapshot must be unaffected.
	orig, _ := cfg.Kind(KindPorosity)
	if orig["min_area"] != 10 {
		t.Errorf("original min_area = %v, want 10", orig["min_area"])
	}
}

func TestWithOverridesRejections(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name      string
		kind      Kind
		overrides Params
	}{
		{"unknown kind", Kind("fractals"), Params{"min_area": 1}},
		{"unknown field", KindPorosity, Params{"min_radius": 1}},
		{"negative value", KindPorosity, Params{"min_area": -5}},
		{"ratio above one", KindPorosity, Params{"circularity_threshold": 1.5}},
		{"min above max", KindPorosity, Params{"min_area": 500, "max_area": 100}},
		{"too few clusters", KindPhases, Params{"n_clusters": 1}},
	}
	for _, tt := range tests {
		if _, err := cfg.WithOverrides(tt.kind, tt.overrides); err == nil {
			t.Errorf("%s: expected rejection", tt.name)
		} else if !apperr.IsParameterError(err) {
			t.Errorf("%s: error %v is not a parameter error", tt.name, err)
		}
	}
}

func TestKindParamsAreCopies(t *testing.T) {
	cfg := DefaultConfig()
	p, _ := cfg.Kind(KindFlakes)
	p["min_length"] = 999

	again, _ := cfg.Kind(KindFlakes)
	if again["min_length"] != 10 {
		t.Errorf("mutating a returned Params leaked into the config: %v", again["min_length"])
	}
}

func TestRegistryUpdateAndReset(t *testing.T) {
	reg := NewRegistry(logging.Nop())

	before := reg.Snapshot()
	if err := reg.Update(KindNodularity, Params{"min_circularity": 0.9}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Snapshots taken before the update keep the old values.
	p, _ := before.Kind(KindNodularity)
	if p["min_circularity"] != 0.7 {
		t.Errorf("pre-update snapshot changed: %v", p["min_circularity"])
	}
	p, _ = reg.Snapshot().Kind(KindNodularity)
	if p["min_circularity"] != 0.9 {
		t.Errorf("post-update snapshot = %v, want 0.9", p["min_circularity"])
	}

	reg.Reset()
	p, _ = reg.Snapshot().Kind(KindNodularity)
	if p["min_circularity"] != 0.7 {
		t.Errorf("after Reset = %v, want default 0.7", p["min_circularity"])
	}
}

func TestRegistryKeepsStateOnRejectedUpdate(t *testing.T) {
	reg := NewRegistry(logging.Nop())
	if err := reg.Update(KindPorosity, Params{"min_area": 40}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := reg.Update(KindPorosity, Params{"bogus": 1}); err == nil {
		t.Fatal("expected rejection of unknown field")
	}
	p, _ := reg.Snapshot().Kind(KindPorosity)
	if p["min_area"] != 40 {
		t.Errorf("rejected update rolled back a previous good one: %v", p["min_area"])
	}
}
