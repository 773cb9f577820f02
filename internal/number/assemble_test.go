package number

import "testing"

func chars(s string, conf float64) []CharacterMatch {
	out := make([]CharacterMatch, len(s))
	for i := range s {
		out[i] = CharacterMatch{Ch: s[i], Confidence: conf, X: i * 40}
	}
	return out
}

func TestFindBestNumberWindowExact(t *testing.T) {
	got := findBestNumberWindow(chars("6/102", 0.9))
	if got == nil {
		t.Fatal("no result")
	}
	if got.Number != "6/102" {
		t.Fatalf("number = %q, want 6/102", got.Number)
	}
	if got.Confidence <= 0.9 {
		t.Errorf("confidence %.2f should gain plausibility bonuses", got.Confidence)
	}
}

func TestFindBestNumberWindowIgnoresNoise(t *testing.T) {
	// Stray matched characters flank the real number.
	matches := append(chars("81", 0.7), chars("25/102", 0.9)...)
	matches = append(matches, chars("7", 0.7)...)
	for i := range matches {
		matches[i].X = i * 40
	}

	got := findBestNumberWindow(matches)
	if got == nil {
		t.Fatal("no result")
	}
	// "125/102" also parses; the windows containing only high-confidence
	// glyphs must outrank windows that pull in the noisy neighbors.
	if got.Number != "25/102" && got.Number != "125/102" {
		t.Fatalf("number = %q", got.Number)
	}
}

func TestFindBestNumberWindowStripsLeadingZeros(t *testing.T) {
	got := findBestNumberWindow(chars("007/102", 0.85))
	if got == nil {
		t.Fatal("no result")
	}
	if got.Number != "7/102" {
		t.Fatalf("number = %q, want 7/102", got.Number)
	}
}

func TestFindBestNumberWindowRejectsImplausible(t *testing.T) {
	for _, s := range []string{
		"5/7",     // total below the minimum set size
		"1/999",   // total above the maximum
		"400/102", // number too far past total
		"12102",   // no separator
		"//",      // no digits
	} {
		if got := findBestNumberWindow(chars(s, 0.9)); got != nil {
			t.Errorf("%q produced %+v, want nil", s, got)
		}
	}
}

func TestFindBestNumberWindowTooFewGlyphs(t *testing.T) {
	if got := findBestNumberWindow(chars("6/", 0.9)); got != nil {
		t.Fatalf("two glyphs produced %+v", got)
	}
	if got := findBestNumberWindow(nil); got != nil {
		t.Fatalf("empty input produced %+v", got)
	}
}

func TestExtractNumberPattern(t *testing.T) {
	num, total, ok := extractNumberPattern(chars("182/165", 0.8))
	if !ok || num != 182 || total != 165 {
		t.Fatalf("got %d/%d ok=%v, want 182/165", num, total, ok)
	}

	// Two separators can't be a collector number.
	if _, _, ok := extractNumberPattern(chars("1/2/3", 0.8)); ok {
		t.Error("double separator accepted")
	}
	// Four digits on a side exceeds the print format.
	if _, _, ok := extractNumberPattern(chars("1234/165", 0.8)); ok {
		t.Error("four-digit number accepted")
	}
}

func TestNumberConfidenceBounds(t *testing.T) {
	if c := numberConfidence(6, 102, chars("6/102", 1.0)); c > 1 {
		t.Errorf("confidence %.2f above 1", c)
	}
	low := numberConfidence(6, 12, chars("6/12", 0.6))
	high := numberConfidence(6, 102, chars("6/102", 0.6))
	if low >= high {
		t.Errorf("tiny set total should score lower: %.2f vs %.2f", low, high)
	}
}
