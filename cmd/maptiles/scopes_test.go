package main

import (
	"strings"
	"testing"

	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/config"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/country"
)

func testResolver(t *testing.T) *country.Resolver {
	t.Helper()
	resolver, err := country.NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return resolver
}

func TestBuildScopesWorldOnly(t *testing.T) {
	cfg := config.Default()
	cfg.MinZoom = 0
	cfg.MaxZoom = 4

	scopes, err := buildScopes(cfg, testResolver(t))
	if err != nil {
		t.Fatalf("buildScopes: %v", err)
	}
	if len(scopes) != 1 {
		t.Fatalf("expected 1 scope, got %d", len(scopes))
	}
	if scopes[0].MinZoom != 0 || scopes[0].MaxZoom != 4 {
		t.Errorf("world scope zoom range = %d-%d, want 0-4", scopes[0].MinZoom, scopes[0].MaxZoom)
	}
}

func TestBuildScopesWorldAndCountry(t *testing.T) {
	cfg := config.Default()
	cfg.Country = "SG"
	cfg.MinZoom = 0
	cfg.MaxZoom = 9

	scopes, err := buildScopes(cfg, testResolver(t))
	if err != nil {
		t.Fatalf("buildScopes: %v", err)
	}
	if len(scopes) != 2 {
		t.Fatalf("expected 2 scopes, got %d", len(scopes))
	}
	if scopes[0].MaxZoom != 6 {
		t.Errorf("world scope max zoom = %d, want 6", scopes[0].MaxZoom)
	}
	if scopes[1].MinZoom != 7 || scopes[1].MaxZoom != 9 {
		t.Errorf("country scope zoom range = %d-%d, want 7-9", scopes[1].MinZoom, scopes[1].MaxZoom)
	}
	if scopes[1].Box == scopes[0].Box {
		t.Error("country scope should use the country bounding box, not the world")
	}
}

func TestBuildScopesCountryOnly(t *testing.T) {
	cfg := config.Default()
	cfg.Country = "SG"
	cfg.MinZoom = 8
	cfg.MaxZoom = 10

	scopes, err := buildScopes(cfg, testResolver(t))
	if err != nil {
		t.Fatalf("buildScopes: %v", err)
	}
	if len(scopes) != 1 {
		t.Fatalf("expected 1 scope, got %d", len(scopes))
	}
	if scopes[0].MinZoom != 8 || scopes[0].MaxZoom != 10 {
		t.Errorf("country scope zoom range = %d-%d, want 8-10", scopes[0].MinZoom, scopes[0].MaxZoom)
	}
}

func TestBuildScopesHighZoomWithoutCountry(t *testing.T) {
	cfg := config.Default()
	cfg.MinZoom = 7
	cfg.MaxZoom = 10

	_, err := buildScopes(cfg, testResolver(t))
	if err == nil {
		t.Fatal("expected error for zoom 7+ without a country")
	}
	if !strings.Contains(err.Error(), "require -country") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuildScopesUnknownCountry(t *testing.T) {
	cfg := config.Default()
	cfg.Country = "XX"
	cfg.MinZoom = 0
	cfg.MaxZoom = 9

	if _, err := buildScopes(cfg, testResolver(t)); err == nil {
		t.Fatal("expected error for unknown country code")
	}
}
