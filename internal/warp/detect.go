// Package warp locates a trading card's quadrilateral boundary in an
// uncontrolled photo and rectifies it into a fixed-size canonical frame.
//
// Detection runs the image through several independent preprocessing
// pipelines, pools scored quad candidates from all of them, and accepts the
// best candidate through tiered gates (strict, relaxed, then a min-area-rect
// fallback held to the strict gate). When nothing passes, the failure result
// explains which gates rejected what, so a "no answer" can be justified
// rather than silently guessed around.
package warp

import (
	"cardscan/pkg/geometry"

	"gocv.io/x/gocv"
)

// Detection describes an accepted card quad and how it was selected.
type Detection struct {
	Quad            geometry.Quad `json:"quad"`
	Method          string        `json:"method"`   // candidate source
	Pipeline        string        `json:"pipeline"` // edge map that produced it
	GateMode        string        `json:"gate_mode"`
	Score           float64       `json:"score"`
	Area            float64       `json:"area"`
	AreaRatio       float64       `json:"area_ratio"`
	Aspect          float64       `json:"aspect"`
	Rectangularity  float64       `json:"rectangularity"`
	CenterDist      float64       `json:"center_dist"`
	CandidatesTotal int           `json:"candidates_total"`
	CandidatesGated int           `json:"candidates_gated"`
}

// Failure explains why no quad was accepted.
type Failure struct {
	Reason          string            `json:"reason"`
	CandidatesTotal int               `json:"candidates_total"`
	GateFailures    GateFailureCounts `json:"gate_failures"`
	ClosestRejected ClosestRejected   `json:"closest_rejected"`
	// BestRejected is the overall highest-scoring candidate, regardless of
	// which gates it failed.
	BestRejected *RejectedCandidate `json:"best_rejected,omitempty"`
}

const reasonNoValidQuad = "no_valid_quad"

// Detect locates the card quadrilateral in a BGR or grayscale image.
// Exactly one of the returns is non-nil. Detection is deterministic: the
// same input bytes always produce the same result.
func Detect(img gocv.Mat, p Params) (*Detection, *Failure) {
	gray, owned := toGray(img)
	if owned {
		defer gray.Close()
	}

	f := newFrame(gray.Cols(), gray.Rows())
	maps := generateEdgeMaps(gray)
	defer closeEdgeMaps(maps)

	var pool []Candidate
	for _, em := range maps {
		pool = append(pool, extractCandidates(em.mat, em.name, f, p)...)
	}

	// Tier 1: strict gate.
	if best := bestGated(pool, p, true); best != nil {
		return detection(*best, "strict", len(pool), countGated(pool, p, true)), nil
	}

	// Tier 2: relaxed gate.
	if best := bestGated(pool, p, false); best != nil {
		return detection(*best, "relaxed", len(pool), countGated(pool, p, false)), nil
	}

	// Tier 3: min-area-rect on each pipeline's largest contour, strict gate
	// only. Relaxed would be over-permissive for a pure geometric guess.
	for _, em := range maps {
		contours := gocv.FindContours(em.mat, gocv.RetrievalExternal, gocv.ChainApproxSimple)
		idx := largestContourIndex(contours)
		if idx < 0 {
			contours.Close()
			continue
		}
		fb := minAreaRectCandidate(contours.At(idx), em.name, f, p)
		contours.Close()
		if fb != nil && passesGates(*fb, p, true) {
			return detection(*fb, "strict_fallback", len(pool), 0), nil
		}
	}

	// Tier 4: failure with per-gate diagnostics.
	counts, closest := computeGateFailures(pool, p)
	fail := &Failure{
		Reason:          reasonNoValidQuad,
		CandidatesTotal: len(pool),
		GateFailures:    counts,
		ClosestRejected: closest,
	}
	if best := bestScoring(pool); best != nil {
		fail.BestRejected = summarize(*best)
	}
	return nil, fail
}

func detection(c Candidate, gateMode string, total, gated int) *Detection {
	return &Detection{
		Quad:            c.Quad,
		Method:          c.Source,
		Pipeline:        c.Pipeline,
		GateMode:        gateMode,
		Score:           c.Score,
		Area:            c.Area,
		AreaRatio:       c.AreaRatio,
		Aspect:          c.Aspect,
		Rectangularity:  c.Rectangularity,
		CenterDist:      c.CenterDist,
		CandidatesTotal: total,
		CandidatesGated: gated,
	}
}

// bestGated returns the highest-scoring candidate passing the given gate
// tier, or nil. Ties break toward the earlier candidate, which keeps
// selection deterministic for identical inputs.
func bestGated(pool []Candidate, p Params, strict bool) *Candidate {
	var best *Candidate
	for i := range pool {
		if !passesGates(pool[i], p, strict) {
			continue
		}
		if best == nil || pool[i].Score > best.Score {
			best = &pool[i]
		}
	}
	return best
}

func countGated(pool []Candidate, p Params, strict bool) int {
	n := 0
	for i := range pool {
		if passesGates(pool[i], p, strict) {
			n++
		}
	}
	return n
}

func bestScoring(pool []Candidate) *Candidate {
	var best *Candidate
	for i := range pool {
		if best == nil || pool[i].Score > best.Score {
			best = &pool[i]
		}
	}
	return best
}

// toGray returns a single-channel view of the input. The second return
// reports whether the caller must close the returned Mat.
func toGray(img gocv.Mat) (gocv.Mat, bool) {
	if img.Channels() == 1 {
		return img, false
	}
	gray := gocv.NewMat()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	return gray, true
}
