package warp

// Params holds the tunable thresholds and weights for card quad detection
// and rectification. The defaults are tuned empirically on phone photos of
// standard 63x88mm trading cards; treat the score weights as policy, not law.
type Params struct {
	// Target portrait aspect ratio for a standard card: 63mm / 88mm.
	TargetAspect float64

	// Strict gate: tight card-like aspect band.
	AspectMinStrict float64
	AspectMaxStrict float64

	// Relaxed gate: wider band tolerating foreshortening from off-axis shots.
	AspectMinRelaxed float64
	AspectMaxRelaxed float64

	// Area gates relative to the full image.
	MinAreaRatio float64 // reject tiny blobs that can't be real cards
	MaxAreaRatio float64 // reject quads that are basically the whole frame

	// Contour area / (quad width * height).
	MinRectangularity float64

	// Cheap prefilter applied before polygon approximation.
	ContourMinAreaRatio float64

	// Polygon approximation tolerances as fractions of contour perimeter,
	// tried in increasing order until a 4-point fit succeeds.
	ApproxEpsilons []float64

	// Minimum quad side length in pixels.
	MinSidePixels float64

	// Score weights. Score = AreaWeight*areaScore + AspectWeight*aspectScore
	// + RectWeight*rectScore - CenterWeight*centerDist.
	AreaWeight   float64
	AspectWeight float64
	RectWeight   float64
	CenterWeight float64

	// Canonical output frame size.
	OutputWidth  int
	OutputHeight int
}

// DefaultParams returns detection parameters tuned for single-subject card
// photos with cluttered backgrounds (tables, binder sleeves).
func DefaultParams() Params {
	return Params{
		TargetAspect: 63.0 / 88.0, // ~0.716

		AspectMinStrict: 0.66, // tight: reject square-ish blobs
		AspectMaxStrict: 0.78, // tight: reject overly wide shapes

		AspectMinRelaxed: 0.58,
		AspectMaxRelaxed: 0.84,

		MinAreaRatio:      0.08,
		MaxAreaRatio:      0.97,
		MinRectangularity: 0.70,

		ContourMinAreaRatio: 0.02,
		ApproxEpsilons:      []float64{0.02, 0.03, 0.04, 0.05},
		MinSidePixels:       20,

		AreaWeight:   0.40,
		AspectWeight: 0.40,
		RectWeight:   0.20,
		CenterWeight: 0.15,

		OutputWidth:  744,
		OutputHeight: 1040,
	}
}

// WithOutputSize returns a copy of params with a custom canonical frame size.
func (p Params) WithOutputSize(width, height int) Params {
	p.OutputWidth = width
	p.OutputHeight = height
	return p
}

// WithAspectBands returns a copy of params with custom strict and relaxed
// aspect gate bands.
func (p Params) WithAspectBands(minStrict, maxStrict, minRelaxed, maxRelaxed float64) Params {
	p.AspectMinStrict = minStrict
	p.AspectMaxStrict = maxStrict
	p.AspectMinRelaxed = minRelaxed
	p.AspectMaxRelaxed = maxRelaxed
	return p
}
