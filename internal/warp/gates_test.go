package warp

import "testing"

func TestStrictImpliesRelaxed(t *testing.T) {
	p := DefaultParams()
	cands := []Candidate{
		{Aspect: 0.716, AreaRatio: 0.5, Rectangularity: 0.95},  // ideal
		{Aspect: 0.60, AreaRatio: 0.5, Rectangularity: 0.95},   // relaxed only
		{Aspect: 0.50, AreaRatio: 0.5, Rectangularity: 0.95},   // fails both
		{Aspect: 0.716, AreaRatio: 0.02, Rectangularity: 0.95}, // too small
		{Aspect: 0.716, AreaRatio: 0.5, Rectangularity: 0.5},   // not rectangular
	}

	for i, c := range cands {
		if passesGates(c, p, true) && !passesGates(c, p, false) {
			t.Errorf("candidate %d passes strict but not relaxed", i)
		}
	}

	if !passesGates(cands[0], p, true) {
		t.Error("ideal candidate rejected by strict gate")
	}
	if passesGates(cands[1], p, true) || !passesGates(cands[1], p, false) {
		t.Error("borderline aspect should pass only the relaxed gate")
	}
	if passesGates(cands[2], p, false) {
		t.Error("far-off aspect passed the relaxed gate")
	}
}

func TestComputeGateFailures(t *testing.T) {
	p := DefaultParams()
	cands := []Candidate{
		{Aspect: 0.50, AreaRatio: 0.5, Rectangularity: 0.95, Score: 0.3},
		{Aspect: 0.50, AreaRatio: 0.5, Rectangularity: 0.95, Score: 0.6},
		{Aspect: 0.716, AreaRatio: 0.01, Rectangularity: 0.5, Score: 0.2},
	}

	counts, closest := computeGateFailures(cands, p)
	if counts.Aspect != 2 || counts.AreaMin != 1 || counts.Rectangularity != 1 {
		t.Fatalf("counts = %+v", counts)
	}
	if closest.Aspect == nil || closest.Aspect.Score != 0.6 {
		t.Fatalf("closest aspect reject should be the higher-scoring one: %+v", closest.Aspect)
	}
}
