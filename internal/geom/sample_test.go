package geom

import (
	"math"
	"testing"
)

func almostEq(a, b Vec3) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9 && math.Abs(a.Z-b.Z) < 1e-9
}

func TestSample_FewerThanTwoPoints(t *testing.T) {
	for _, algo := range []Algorithm{AlgoCatmullRom, AlgoBezier} {
		if got := Sample(nil, 0.5, algo); len(got) != 0 {
			t.Fatalf("%s: empty input produced %d samples", algo, len(got))
		}
		if got := Sample([]Vec3{{X: 1, Y: 2, Z: 3}}, 0.5, algo); len(got) != 0 {
			t.Fatalf("%s: single point produced %d samples", algo, len(got))
		}
	}
}

func TestSample_TwoPoints_LinearRegardlessOfAlgorithm(t *testing.T) {
	pts := []Vec3{{X: 0, Y: 64, Z: 0}, {X: 10, Y: 64, Z: 10}}
	for _, algo := range []Algorithm{AlgoCatmullRom, AlgoBezier} {
		path := Sample(pts, 0.5, algo)
		if len(path) == 0 {
			t.Fatalf("%s: empty path", algo)
		}
		if !almostEq(path[0], pts[0]) || !almostEq(path[len(path)-1], pts[1]) {
			t.Fatalf("%s: endpoints %v..%v, want %v..%v", algo, path[0], path[len(path)-1], pts[0], pts[1])
		}
		// Length 10*sqrt(2) at resolution 0.5 -> 29 interior steps + endpoint.
		if len(path) != 30 {
			t.Fatalf("%s: got %d samples, want 30", algo, len(path))
		}
		wantLen := 10 * math.Sqrt2
		if math.Abs(path.Length()-wantLen) > 1e-6 {
			t.Fatalf("%s: length %.6f, want %.6f", algo, path.Length(), wantLen)
		}
		// Every point must sit on the segment: constant Y.
		for i, p := range path {
			if p.Y != 64 {
				t.Fatalf("%s: sample %d off the line: %v", algo, i, p)
			}
		}
	}
}

func TestSample_CatmullRom_HitsControlPoints(t *testing.T) {
	pts := []Vec3{{X: 0, Y: 64, Z: 0}, {X: 10, Y: 66, Z: 4}, {X: 20, Y: 64, Z: 0}}
	path := Sample(pts, 0.5, AlgoCatmullRom)
	for _, want := range pts {
		found := false
		for _, p := range path {
			if almostEq(p, want) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("control point %v not on sampled path", want)
		}
	}
}

func TestSample_Continuity(t *testing.T) {
	// Consecutive samples may not drift apart by more than a small
	// multiple of the resolution, even on a curvy path.
	pts := []Vec3{
		{X: 0, Y: 64, Z: 0},
		{X: 8, Y: 70, Z: 3},
		{X: 12, Y: 62, Z: 12},
		{X: 25, Y: 66, Z: 8},
	}
	const res = 0.5
	const bound = res * 2
	for _, algo := range []Algorithm{AlgoCatmullRom, AlgoBezier} {
		path := Sample(pts, res, algo)
		if len(path) < 2 {
			t.Fatalf("%s: too few samples", algo)
		}
		for i := 1; i < len(path); i++ {
			if d := path[i-1].DistanceTo(path[i]); d > bound {
				t.Fatalf("%s: gap %.3f between samples %d and %d exceeds %.3f", algo, d, i-1, i, bound)
			}
		}
	}
}

func TestSample_Deterministic(t *testing.T) {
	pts := []Vec3{{X: 0, Y: 64, Z: 0}, {X: 5, Y: 68, Z: 5}, {X: 10, Y: 64, Z: 0}}
	for _, algo := range []Algorithm{AlgoCatmullRom, AlgoBezier} {
		a := Sample(pts, 0.3, algo)
		b := Sample(pts, 0.3, algo)
		if len(a) != len(b) {
			t.Fatalf("%s: lengths differ: %d vs %d", algo, len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%s: sample %d differs: %v vs %v", algo, i, a[i], b[i])
			}
		}
	}
}

func TestSample_Bezier_EndpointsExact(t *testing.T) {
	cases := [][]Vec3{
		{{X: 0, Y: 64, Z: 0}, {X: 5, Y: 70, Z: 2}, {X: 10, Y: 64, Z: 4}},
		{{X: 0, Y: 64, Z: 0}, {X: 5, Y: 70, Z: 2}, {X: 10, Y: 64, Z: 4}, {X: 15, Y: 66, Z: 0}},
		{{X: 0, Y: 64, Z: 0}, {X: 5, Y: 70, Z: 2}, {X: 10, Y: 64, Z: 4}, {X: 15, Y: 66, Z: 0}, {X: 20, Y: 64, Z: -4}},
	}
	for _, pts := range cases {
		path := Sample(pts, 0.5, AlgoBezier)
		if len(path) < 2 {
			t.Fatalf("%d points: too few samples", len(pts))
		}
		if !almostEq(path[0], pts[0]) {
			t.Fatalf("%d points: first sample %v, want %v", len(pts), path[0], pts[0])
		}
		if !almostEq(path[len(path)-1], pts[len(pts)-1]) {
			t.Fatalf("%d points: last sample %v, want %v", len(pts), path[len(path)-1], pts[len(pts)-1])
		}
	}
}

func TestSample_Bezier_NoDuplicateJoins(t *testing.T) {
	pts := []Vec3{
		{X: 0, Y: 64, Z: 0},
		{X: 5, Y: 70, Z: 2},
		{X: 10, Y: 64, Z: 4},
		{X: 15, Y: 66, Z: 0},
		{X: 20, Y: 64, Z: -4},
	}
	path := Sample(pts, 0.5, AlgoBezier)
	for i := 1; i < len(path); i++ {
		if almostEq(path[i-1], path[i]) {
			t.Fatalf("duplicate sample at %d: %v", i, path[i])
		}
	}
}

func TestTangent_NeverZero(t *testing.T) {
	// Coincident neighbors cannot produce a direction; the fallback
	// must still be a unit vector.
	p := Path{{X: 3, Y: 64, Z: 3}, {X: 3, Y: 64, Z: 3}, {X: 3, Y: 64, Z: 3}}
	for i := range p {
		tan := p.Tangent(i)
		if math.Abs(tan.Length()-1) > 1e-9 {
			t.Fatalf("index %d: tangent %v is not unit length", i, tan)
		}
	}
}

func TestTangent_Boundaries(t *testing.T) {
	p := Path{{X: 0, Y: 64, Z: 0}, {X: 1, Y: 64, Z: 0}, {X: 2, Y: 64, Z: 0}}
	want := Vec3{X: 1}
	for i := range p {
		if got := p.Tangent(i); !almostEq(got, want) {
			t.Fatalf("index %d: tangent %v, want %v", i, got, want)
		}
	}
}

func TestPerpendicular_HorizontalRotation(t *testing.T) {
	cases := []struct {
		tangent Vec3
		want    Vec3
	}{
		{tangent: Vec3{X: 1}, want: Vec3{Z: 1}},
		{tangent: Vec3{Z: 1}, want: Vec3{X: -1}},
		{tangent: Vec3{X: -1}, want: Vec3{Z: -1}},
		// A sloped tangent still yields a horizontal normal.
		{tangent: Vec3{X: 1, Y: 5}, want: Vec3{Z: 1}},
		// A vertical tangent has no horizontal normal; fall back.
		{tangent: Vec3{Y: 1}, want: Vec3{X: 1}},
	}
	for _, c := range cases {
		got := Perpendicular(c.tangent)
		if !almostEq(got, c.want) {
			t.Fatalf("Perpendicular(%v)=%v want %v", c.tangent, got, c.want)
		}
		if got.Y != 0 {
			t.Fatalf("Perpendicular(%v) is not horizontal: %v", c.tangent, got)
		}
	}
}

func TestBlockPos_Floors(t *testing.T) {
	cases := []struct {
		in   Vec3
		want BlockPos
	}{
		{in: Vec3{X: 0.9, Y: 64.5, Z: 0.1}, want: BlockPos{X: 0, Y: 64, Z: 0}},
		{in: Vec3{X: -0.1, Y: 64, Z: -1.5}, want: BlockPos{X: -1, Y: 64, Z: -2}},
	}
	for _, c := range cases {
		if got := c.in.Block(); got != c.want {
			t.Fatalf("Block(%v)=%v want %v", c.in, got, c.want)
		}
	}
}
