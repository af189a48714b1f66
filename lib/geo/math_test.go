package geo

import (
	"math"
	"testing"
)

func TestDistanceNM(t *testing.T) {
	// roughly 1 degree of latitude ~ 60nm
	d := DistanceNM(0, 0, 1, 0)
	if math.Abs(d-60) > 1 {
		t.Errorf("expected ~60nm, got %f", d)
	}
}

func TestDistanceNMSamePoint(t *testing.T) {
	d := DistanceNM(37.5, -122.3, 37.5, -122.3)
	if d > ToleranceNM {
		t.Errorf("expected ~0nm, got %f", d)
	}
}

func TestDistanceNMNaN(t *testing.T) {
	d := DistanceNM(math.NaN(), 0, 1, 0)
	if !math.IsInf(d, 1) {
		t.Errorf("expected +Inf for NaN input, got %f", d)
	}
}

func TestPointInPolygonSquare(t *testing.T) {
	square := Polygon{Points: []Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 1, Lon: 1},
		{Lat: 1, Lon: 0},
	}}

	if !PointInPolygon(0.5, 0.5, square) {
		t.Error("center point should be inside")
	}
	if PointInPolygon(2, 2, square) {
		t.Error("far point should not be inside")
	}
}

func TestPointInPolygonOnEdge(t *testing.T) {
	square := Polygon{Points: []Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 1, Lon: 1},
		{Lat: 1, Lon: 0},
	}}
	if !PointInPolygon(0, 0.5, square) {
		t.Error("edge point should classify as inside")
	}
	if !PointInPolygon(0, 0, square) {
		t.Error("vertex point should classify as inside")
	}
}

func TestPointInPolygonDegenerate(t *testing.T) {
	line := Polygon{Points: []Point{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}}}
	if PointInPolygon(0.5, 0.5, line) {
		t.Error("a 2-point polygon can't contain anything")
	}
}

func TestPointInPolygonNaN(t *testing.T) {
	square := Polygon{Points: []Point{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0},
	}}
	if PointInPolygon(math.NaN(), 0.5, square) {
		t.Error("NaN should never be inside")
	}
}

func TestBearing(t *testing.T) {
	b := Bearing(0, 0, 1, 0)
	if math.Abs(b-0) > 0.5 {
		t.Errorf("expected bearing ~0 (due north), got %f", b)
	}
}
