package warp

// passesGates checks a candidate against the hard geometric gates.
// Strict mode uses the tight aspect band; relaxed widens it to tolerate
// foreshortening. Area and rectangularity bounds are shared, so every
// strict-accepted candidate is also relaxed-accepted.
func passesGates(c Candidate, p Params, strict bool) bool {
	aspectMin, aspectMax := p.AspectMinRelaxed, p.AspectMaxRelaxed
	if strict {
		aspectMin, aspectMax = p.AspectMinStrict, p.AspectMaxStrict
	}

	if c.Aspect < aspectMin || c.Aspect > aspectMax {
		return false
	}
	if c.AreaRatio < p.MinAreaRatio {
		return false
	}
	if c.AreaRatio > p.MaxAreaRatio {
		return false
	}
	if c.Rectangularity < p.MinRectangularity {
		return false
	}
	return true
}

// GateFailureCounts tallies how many pooled candidates failed each gate.
// The aspect tally uses the relaxed band, since that is the last band a
// candidate could have passed.
type GateFailureCounts struct {
	Aspect         int `json:"aspect"`
	AreaMin        int `json:"area_min"`
	AreaMax        int `json:"area_max"`
	Rectangularity int `json:"rectangularity"`
}

// RejectedCandidate summarizes a rejected candidate for diagnostics.
type RejectedCandidate struct {
	Aspect         float64 `json:"aspect"`
	AreaRatio      float64 `json:"area_ratio"`
	Rectangularity float64 `json:"rectangularity"`
	CenterDist     float64 `json:"center_dist"`
	Score          float64 `json:"score"`
	Pipeline       string  `json:"pipeline"`
}

// ClosestRejected holds, per gate, the highest-scoring candidate that failed
// that specific gate. Isolates which gate killed detection for tuning.
type ClosestRejected struct {
	Aspect         *RejectedCandidate `json:"aspect"`
	AreaMin        *RejectedCandidate `json:"area_min"`
	AreaMax        *RejectedCandidate `json:"area_max"`
	Rectangularity *RejectedCandidate `json:"rectangularity"`
}

func summarize(c Candidate) *RejectedCandidate {
	return &RejectedCandidate{
		Aspect:         c.Aspect,
		AreaRatio:      c.AreaRatio,
		Rectangularity: c.Rectangularity,
		CenterDist:     c.CenterDist,
		Score:          c.Score,
		Pipeline:       c.Pipeline,
	}
}

// computeGateFailures walks the whole candidate pool and records per-gate
// failure counts plus the best-scoring candidate failing each gate.
func computeGateFailures(candidates []Candidate, p Params) (GateFailureCounts, ClosestRejected) {
	var counts GateFailureCounts
	var closest ClosestRejected

	for _, c := range candidates {
		if c.Aspect < p.AspectMinRelaxed || c.Aspect > p.AspectMaxRelaxed {
			counts.Aspect++
			if closest.Aspect == nil || c.Score > closest.Aspect.Score {
				closest.Aspect = summarize(c)
			}
		}
		if c.AreaRatio < p.MinAreaRatio {
			counts.AreaMin++
			if closest.AreaMin == nil || c.Score > closest.AreaMin.Score {
				closest.AreaMin = summarize(c)
			}
		}
		if c.AreaRatio > p.MaxAreaRatio {
			counts.AreaMax++
			if closest.AreaMax == nil || c.Score > closest.AreaMax.Score {
				closest.AreaMax = summarize(c)
			}
		}
		if c.Rectangularity < p.MinRectangularity {
			counts.Rectangularity++
			if closest.Rectangularity == nil || c.Score > closest.Rectangularity.Score {
				closest.Rectangularity = summarize(c)
			}
		}
	}

	return counts, closest
}
