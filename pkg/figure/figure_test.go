package figure

import (
	"math"
	"testing"
)

func TestParseSimplePath(t *testing.T) {
	points := Parse("M 10 20 L 30 40 L 50 60")
	want := []CanvasPoint{{10, 20}, {30, 40}, {50, 60}}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d", len(points), len(want))
	}
	for i, p := range points {
		if p != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestParseNegativeAndDecimal(t *testing.T) {
	points := Parse("M -10.5 20.25 L 0 -3.5")
	want := []CanvasPoint{{-10.5, 20.25}, {0, -3.5}}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d", len(points), len(want))
	}
	for i, p := range points {
		if p != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestParseEmpty(t *testing.T) {
	if points := Parse(""); points != nil {
		t.Errorf("Parse(\"\") = %v, want nil", points)
	}
}

func TestParseTrailingIncompletePair(t *testing.T) {
	points := Parse("M 10 20 L 30")
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1 (incomplete trailing pair dropped)", len(points))
	}
}

func TestCanvasToGeoAnchorsFirstPoint(t *testing.T) {
	points := []CanvasPoint{{175, 175}, {225, 175}}
	geo := CanvasToGeo(points, 1.35, 103.82, 350.0)
	if len(geo) != 2 {
		t.Fatalf("got %d geo points, want 2", len(geo))
	}
	if math.Abs(geo[0][1]-1.35) > 1e-9 || math.Abs(geo[0][0]-103.82) > 1e-9 {
		t.Errorf("first point should anchor to start: got %v", geo[0])
	}
	// second point moved 50px east, should land east of the start point.
	if geo[1][0] <= geo[0][0] {
		t.Errorf("expected geo[1].lon > geo[0].lon, got %v vs %v", geo[1][0], geo[0][0])
	}
}

func TestCanvasToGeoEmpty(t *testing.T) {
	if geo := CanvasToGeo(nil, 1.0, 1.0, 350.0); geo != nil {
		t.Errorf("CanvasToGeo(nil) = %v, want nil", geo)
	}
}
