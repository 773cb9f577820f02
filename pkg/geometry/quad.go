package geometry

import "math"

// Quad is a four-corner polygon ordered TL, TR, BR, BL.
type Quad [4]Point2D

// OrderCorners returns the corners of a quad ordered TL, TR, BR, BL.
//
// TL has the minimum coordinate sum and BR the maximum; TR has the minimum
// coordinate difference (y-x) and BL the maximum. This is stable for
// near-axis-aligned quads and idempotent on already-ordered input.
func OrderCorners(pts [4]Point2D) Quad {
	tl, tr, br, bl := pts[0], pts[0], pts[0], pts[0]
	for _, p := range pts[1:] {
		if p.X+p.Y < tl.X+tl.Y {
			tl = p
		}
		if p.X+p.Y > br.X+br.Y {
			br = p
		}
		if p.Y-p.X < tr.Y-tr.X {
			tr = p
		}
		if p.Y-p.X > bl.Y-bl.X {
			bl = p
		}
	}
	return Quad{tl, tr, br, bl}
}

// Size returns the average width and height of the quad, measured along
// opposite side pairs.
func (q Quad) Size() (width, height float64) {
	tl, tr, br, bl := q[0], q[1], q[2], q[3]
	width = (br.Distance(bl) + tr.Distance(tl)) / 2
	height = (tr.Distance(br) + tl.Distance(bl)) / 2
	return width, height
}

// Aspect returns min(w/h, h/w), so portrait and landscape orientations of
// the same quad report the same value.
func (q Quad) Aspect() float64 {
	w, h := q.Size()
	if w <= 0 || h <= 0 {
		return 0
	}
	return math.Min(w/h, h/w)
}

// Area returns the polygon area via the shoelace formula.
func (q Quad) Area() float64 {
	var sum float64
	for i := 0; i < 4; i++ {
		a, b := q[i], q[(i+1)%4]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}

// Centroid returns the average of the four corners.
func (q Quad) Centroid() Point2D {
	return Centroid(q[:])
}

// Points returns the corners as a slice.
func (q Quad) Points() []Point2D {
	return []Point2D{q[0], q[1], q[2], q[3]}
}

// IsDegenerate reports whether the quad is unusable for a perspective
// transform: near-zero area, collapsed corners, or a non-convex ordering.
func (q Quad) IsDegenerate() bool {
	if q.Area() < 1 {
		return true
	}
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if q[i].Distance(q[j]) < 1 {
				return true
			}
		}
	}
	return !IsConvex(q.Points())
}
