package number

import "testing"

func TestPlausible(t *testing.T) {
	cases := []struct {
		num, total int
		want       bool
	}{
		{6, 102, true},
		{102, 102, true},
		{182, 165, true},  // secret rare past the base total
		{252, 102, true},  // exactly at the secret-rare margin
		{253, 102, false}, // just past it
		{5, 9, false},     // total below minimum set size
		{1, 501, false},   // total above maximum
		{0, 102, false},
		{-3, 102, false},
		{6, 0, false},
	}
	for _, c := range cases {
		if got := plausible(c.num, c.total); got != c.want {
			t.Errorf("plausible(%d, %d) = %v, want %v", c.num, c.total, got, c.want)
		}
	}
}

func TestPlausibilityScoreOrdering(t *testing.T) {
	// A typical mid-size set beats a tiny set and an extreme secret rare.
	typical := plausibilityScore(25, 165)
	tiny := plausibilityScore(5, 12)
	extreme := plausibilityScore(240, 102)

	if typical <= tiny {
		t.Errorf("typical %.2f should beat tiny-set %.2f", typical, tiny)
	}
	if typical <= extreme {
		t.Errorf("typical %.2f should beat extreme secret rare %.2f", typical, extreme)
	}
	if s := plausibilityScore(5, 600); s != 0 {
		t.Errorf("implausible number scored %.2f, want 0", s)
	}
	for _, s := range []float64{typical, tiny, extreme} {
		if s < 0 || s > 1 {
			t.Errorf("score %.2f out of [0,1]", s)
		}
	}
}
