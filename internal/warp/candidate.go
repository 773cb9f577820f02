package warp

import (
	"image"
	"math"

	"cardscan/pkg/geometry"

	"gocv.io/x/gocv"
)

// Candidate is a scored quadrilateral card-boundary hypothesis. Candidates
// from all pipelines are pooled before gating; a card invisible to one
// pipeline may be dominant in another.
type Candidate struct {
	Quad           geometry.Quad
	Score          float64
	Area           float64
	Aspect         float64
	Rectangularity float64
	AreaRatio      float64
	CenterDist     float64
	Source         string // "contour" or "min_area_rect"
	Pipeline       string
}

// frame caches per-image normalization terms used by candidate scoring.
type frame struct {
	area   float64
	center geometry.Point2D
	diag   float64
}

func newFrame(width, height int) frame {
	w := float64(width)
	h := float64(height)
	return frame{
		area:   w * h,
		center: geometry.Point2D{X: w / 2, Y: h / 2},
		diag:   math.Sqrt(w*w + h*h),
	}
}

// extractCandidates finds outer contours in one closed edge map and scores
// every contour that admits a 4-point polygonal approximation.
func extractCandidates(edges gocv.Mat, pipeline string, f frame, p Params) []Candidate {
	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var candidates []Candidate
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < f.area*p.ContourMinAreaRatio {
			continue
		}

		corners, ok := approxQuad(contour, p)
		if !ok {
			continue
		}

		if c := buildCandidate(corners, area, "contour", pipeline, f, p); c != nil {
			candidates = append(candidates, *c)
		}
	}
	return candidates
}

// approxQuad attempts a 4-point polygonal approximation of a contour at
// increasing tolerance levels; if none succeeds it retries on the contour's
// convex hull.
func approxQuad(contour gocv.PointVector, p Params) ([4]geometry.Point2D, bool) {
	if corners, ok := approxQuadAt(contour, p.ApproxEpsilons); ok {
		return corners, true
	}

	hull := geometry.ConvexHull(pointVectorToPoints(contour))
	if len(hull) < 4 {
		return [4]geometry.Point2D{}, false
	}
	hullVec := pointsToPointVector(hull)
	defer hullVec.Close()
	return approxQuadAt(hullVec, p.ApproxEpsilons)
}

func approxQuadAt(contour gocv.PointVector, epsilons []float64) ([4]geometry.Point2D, bool) {
	peri := gocv.ArcLength(contour, true)
	for _, eps := range epsilons {
		approx := gocv.ApproxPolyDP(contour, eps*peri, true)
		if approx.Size() == 4 {
			var corners [4]geometry.Point2D
			for j := 0; j < 4; j++ {
				pt := approx.At(j)
				corners[j] = geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)}
			}
			approx.Close()
			return corners, true
		}
		approx.Close()
	}
	return [4]geometry.Point2D{}, false
}

// minAreaRectCandidate fits a minimum-area bounding rectangle to a contour.
// Used only as a fallback on the largest contour per pipeline when no gated
// candidate exists.
func minAreaRectCandidate(contour gocv.PointVector, pipeline string, f frame, p Params) *Candidate {
	area := gocv.ContourArea(contour)
	if area < f.area*p.ContourMinAreaRatio {
		return nil
	}

	rect := gocv.MinAreaRect(contour)
	if len(rect.Points) != 4 {
		return nil
	}
	var corners [4]geometry.Point2D
	for i, pt := range rect.Points {
		corners[i] = geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)}
	}

	return buildCandidate(corners, area, "min_area_rect", pipeline, f, p)
}

// buildCandidate orders the corners and scores the quad. Returns nil for
// quads too small to be a card.
func buildCandidate(corners [4]geometry.Point2D, area float64, source, pipeline string, f frame, p Params) *Candidate {
	quad := geometry.OrderCorners(corners)

	width, height := quad.Size()
	if width < p.MinSidePixels || height < p.MinSidePixels {
		return nil
	}

	aspect := quad.Aspect()
	rectangularity := area / math.Max(1, width*height)
	areaRatio := area / f.area
	centerDist := quad.Centroid().Distance(f.center) / f.diag

	// Nonlinear area score: sqrt makes medium-to-large jumps matter more.
	areaScore := math.Min(math.Sqrt(areaRatio)*1.5, 1)
	aspectScore := 1 - math.Min(math.Abs(aspect-p.TargetAspect)/p.TargetAspect, 1)
	rectScore := math.Min(rectangularity, 1)
	// Center penalty disambiguates the subject card from background clutter.
	score := p.AreaWeight*areaScore + p.AspectWeight*aspectScore +
		p.RectWeight*rectScore - p.CenterWeight*centerDist

	return &Candidate{
		Quad:           quad,
		Score:          score,
		Area:           area,
		Aspect:         aspect,
		Rectangularity: rectangularity,
		AreaRatio:      areaRatio,
		CenterDist:     centerDist,
		Source:         source,
		Pipeline:       pipeline,
	}
}

// largestContourIndex returns the index of the largest-area contour, or -1.
func largestContourIndex(contours gocv.PointsVector) int {
	best := -1
	var bestArea float64
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > bestArea {
			bestArea = area
			best = i
		}
	}
	return best
}

func pointVectorToPoints(pv gocv.PointVector) []geometry.Point2D {
	points := make([]geometry.Point2D, pv.Size())
	for i := 0; i < pv.Size(); i++ {
		pt := pv.At(i)
		points[i] = geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)}
	}
	return points
}

func pointsToPointVector(points []geometry.Point2D) gocv.PointVector {
	pts := make([]image.Point, len(points))
	for i, p := range points {
		pts[i] = image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
	}
	return gocv.NewPointVectorFromPoints(pts)
}
