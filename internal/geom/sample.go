package geom

import "math"

// Algorithm selects the interpolation used by Sample.
type Algorithm string

const (
	AlgoCatmullRom Algorithm = "catmullrom"
	AlgoBezier     Algorithm = "bezier"
)

func ParseAlgorithm(s string) (Algorithm, bool) {
	switch Algorithm(s) {
	case AlgoCatmullRom, AlgoBezier:
		return Algorithm(s), true
	}
	return "", false
}

// Path is a dense, fully materialized point sequence approximating a
// smooth curve through control points. Consecutive samples are never
// farther apart than roughly the resolution they were sampled at.
type Path []Vec3

// Sample interpolates the control points into a dense path.
//
// Fewer than 2 points yields an empty path. Exactly 2 points always
// interpolates linearly regardless of the requested algorithm.
func Sample(points []Vec3, resolution float64, algo Algorithm) Path {
	if len(points) < 2 || resolution <= 0 {
		return nil
	}
	if len(points) == 2 {
		return sampleLinear(points[0], points[1], resolution)
	}
	switch algo {
	case AlgoBezier:
		return sampleBezier(points, resolution)
	default:
		return sampleCatmullRom(points, resolution)
	}
}

func sampleLinear(a, b Vec3, resolution float64) Path {
	steps := segmentSteps(a.DistanceTo(b), resolution)
	out := make(Path, 0, steps+1)
	for s := 0; s < steps; s++ {
		out = append(out, Lerp(a, b, float64(s)/float64(steps)))
	}
	return append(out, b)
}

// sampleCatmullRom walks each consecutive control pair (p1,p2) bounded by
// its neighbors p0,p3, extrapolating virtual neighbors past the ends.
// Each segment emits its start-inclusive, end-exclusive samples; the last
// control point is appended once so the path terminates exactly.
func sampleCatmullRom(points []Vec3, resolution float64) Path {
	n := len(points)
	out := make(Path, 0, n*8)
	for i := 0; i < n-1; i++ {
		p1 := points[i]
		p2 := points[i+1]
		var p0, p3 Vec3
		if i > 0 {
			p0 = points[i-1]
		} else {
			p0 = p1.Scale(2).Sub(p2)
		}
		if i+2 < n {
			p3 = points[i+2]
		} else {
			p3 = p2.Scale(2).Sub(p1)
		}
		steps := segmentSteps(p1.DistanceTo(p2), resolution)
		for s := 0; s < steps; s++ {
			t := float64(s) / float64(steps)
			out = append(out, catmullPoint(p0, p1, p2, p3, t))
		}
	}
	return append(out, points[n-1])
}

func catmullPoint(p0, p1, p2, p3 Vec3, t float64) Vec3 {
	t2 := t * t
	t3 := t2 * t
	f := func(a0, a1, a2, a3 float64) float64 {
		return 0.5 * ((2 * a1) + (-a0+a2)*t + (2*a0-5*a1+4*a2-a3)*t2 + (-a0+3*a1-3*a2+a3)*t3)
	}
	return Vec3{
		X: f(p0.X, p1.X, p2.X, p3.X),
		Y: f(p0.Y, p1.Y, p2.Y, p3.Y),
		Z: f(p0.Z, p1.Z, p2.Z, p3.Z),
	}
}

// sampleBezier emits a single quadratic for 3 points. For more, it chains
// quadratic segments anchored at midpoints between consecutive control
// points, keeping the true first and last points as exact endpoints. The
// shared join sample is skipped on every segment but the first.
func sampleBezier(points []Vec3, resolution float64) Path {
	n := len(points)
	if n == 3 {
		return quadBezier(points[0], points[1], points[2], resolution, false)
	}
	out := make(Path, 0, n*8)
	for i := 1; i < n-1; i++ {
		start := Lerp(points[i-1], points[i], 0.5)
		if i == 1 {
			start = points[0]
		}
		end := Lerp(points[i], points[i+1], 0.5)
		if i == n-2 {
			end = points[n-1]
		}
		out = append(out, quadBezier(start, points[i], end, resolution, i > 1)...)
	}
	return out
}

// quadBezier samples a quadratic endpoint-inclusive. skipFirst drops the
// t=0 sample, which duplicates the previous segment's end at a join.
func quadBezier(p0, p1, p2 Vec3, resolution float64, skipFirst bool) Path {
	// Control polygon length over-estimates arc length, which only makes
	// the sampling denser than requested.
	steps := segmentSteps(p0.DistanceTo(p1)+p1.DistanceTo(p2), resolution)
	out := make(Path, 0, steps+1)
	first := 0
	if skipFirst {
		first = 1
	}
	for s := first; s <= steps; s++ {
		t := float64(s) / float64(steps)
		u := 1 - t
		out = append(out, Vec3{
			X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
			Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
			Z: u*u*p0.Z + 2*u*t*p1.Z + t*t*p2.Z,
		})
	}
	return out
}

func segmentSteps(length, resolution float64) int {
	steps := int(math.Ceil(length / resolution))
	if steps < 1 {
		steps = 1
	}
	return steps
}

// Length sums the distances between consecutive samples.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += p[i-1].DistanceTo(p[i])
	}
	return total
}

// defaultTangent is returned when neighbors coincide and no direction can
// be derived.
var defaultTangent = Vec3{X: 1}

// Tangent returns the normalized forward direction at sample i, taken
// from the neighbors before and after it. Boundary indices fall back to
// the nearest edge pair. Never returns a zero vector.
func (p Path) Tangent(i int) Vec3 {
	n := len(p)
	if n < 2 || i < 0 || i >= n {
		return defaultTangent
	}
	prev := i - 1
	if prev < 0 {
		prev = 0
	}
	next := i + 1
	if next > n-1 {
		next = n - 1
	}
	t, ok := p[next].Sub(p[prev]).Normalized()
	if !ok {
		return defaultTangent
	}
	return t
}

// Perpendicular rotates a tangent 90 degrees within the horizontal plane,
// giving the lateral direction used for width expansion. The result is
// horizontal regardless of the tangent's slope; a near-vertical tangent
// falls back to the default unit direction.
func Perpendicular(tangent Vec3) Vec3 {
	h := Vec3{X: -tangent.Z, Z: tangent.X}
	n, ok := h.Normalized()
	if !ok {
		return defaultTangent
	}
	return n
}
