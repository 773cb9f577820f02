package geometry

import (
	"math"
	"testing"
)

func TestOrderCorners(t *testing.T) {
	want := Quad{
		{X: 10, Y: 20},
		{X: 110, Y: 22},
		{X: 112, Y: 170},
		{X: 8, Y: 168},
	}

	// Every input rotation must produce the same TL, TR, BR, BL order.
	perms := [][4]Point2D{
		{want[0], want[1], want[2], want[3]},
		{want[2], want[0], want[3], want[1]},
		{want[3], want[2], want[1], want[0]},
	}
	for i, pts := range perms {
		got := OrderCorners(pts)
		if got != want {
			t.Fatalf("perm %d: got %v want %v", i, got, want)
		}
	}

	// Idempotent on ordered input.
	if got := OrderCorners(want); got != want {
		t.Fatalf("reorder changed ordered quad: %v", got)
	}
}

func TestQuadAspectOrientationInvariant(t *testing.T) {
	portrait := Quad{{0, 0}, {63, 0}, {63, 88}, {0, 88}}
	landscape := Quad{{0, 0}, {88, 0}, {88, 63}, {0, 63}}

	pa, la := portrait.Aspect(), landscape.Aspect()
	if math.Abs(pa-la) > 1e-9 {
		t.Fatalf("aspect differs by orientation: %f vs %f", pa, la)
	}
	want := 63.0 / 88.0
	if math.Abs(pa-want) > 1e-9 {
		t.Fatalf("aspect = %f, want %f", pa, want)
	}
}

func TestQuadArea(t *testing.T) {
	q := Quad{{0, 0}, {10, 0}, {10, 5}, {0, 5}}
	if got := q.Area(); math.Abs(got-50) > 1e-9 {
		t.Fatalf("area = %f, want 50", got)
	}

	// Skewed parallelogram keeps base*height area.
	skew := Quad{{0, 0}, {10, 0}, {12, 5}, {2, 5}}
	if got := skew.Area(); math.Abs(got-50) > 1e-9 {
		t.Fatalf("parallelogram area = %f, want 50", got)
	}
}

func TestQuadIsDegenerate(t *testing.T) {
	good := Quad{{0, 0}, {100, 0}, {100, 140}, {0, 140}}
	if good.IsDegenerate() {
		t.Fatal("valid quad flagged degenerate")
	}

	collapsed := Quad{{0, 0}, {0, 0}, {100, 140}, {0, 140}}
	if !collapsed.IsDegenerate() {
		t.Fatal("collapsed corners not flagged")
	}

	collinear := Quad{{0, 0}, {50, 0}, {100, 0}, {150, 0}}
	if !collinear.IsDegenerate() {
		t.Fatal("collinear quad not flagged")
	}

	bowtie := Quad{{0, 0}, {100, 140}, {100, 0}, {0, 140}}
	if !bowtie.IsDegenerate() {
		t.Fatal("self-intersecting quad not flagged")
	}
}

func TestQuadSize(t *testing.T) {
	q := Quad{{0, 0}, {60, 0}, {60, 80}, {0, 80}}
	w, h := q.Size()
	if math.Abs(w-60) > 1e-9 || math.Abs(h-80) > 1e-9 {
		t.Fatalf("size = %f x %f, want 60 x 80", w, h)
	}
}
