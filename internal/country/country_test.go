package country

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePreset(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	box, err := r.Resolve("SG")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if box.MinLat != 1.15 || box.MaxLat != 1.47 || box.MinLon != 103.5 || box.MaxLon != 104.2 {
		t.Errorf("unexpected SG box: %+v", box)
	}

	// Codes are case-insensitive.
	lower, err := r.Resolve("sg")
	if err != nil {
		t.Fatalf("Resolve lowercase: %v", err)
	}
	if lower != box {
		t.Error("lowercase code resolved to a different box")
	}
}

func TestResolveUnknown(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if _, err := r.Resolve("ZZ"); err == nil {
		t.Error("expected error for unknown country code")
	}
}

func TestLoadFileOverrides(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	path := filepath.Join(t.TempDir(), "country_bbox.json")
	content := `{"sg": {"min_lat": 1.0, "max_lat": 2.0, "min_lon": 103.0, "max_lon": 105.0},
	             "XX": {"min_lat": -1, "max_lat": 1, "min_lon": -1, "max_lon": 1}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	box, err := r.Resolve("SG")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if box.MinLat != 1.0 || box.MaxLon != 105.0 {
		t.Errorf("override not applied: %+v", box)
	}

	if _, err := r.Resolve("XX"); err != nil {
		t.Errorf("added code not resolvable: %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if err := r.LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
