package number

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/otiai10/gosseract/v2"
)

func TestArbitrate(t *testing.T) {
	tmpl := &ParsedNumber{Number: "6/102", Confidence: 0.8}
	ocrSame := &ParsedNumber{Number: "6/102", Confidence: 0.95}
	ocrBetter := &ParsedNumber{Number: "6/165", Confidence: 0.8}
	tmplAtypical := &ParsedNumber{Number: "5/12", Confidence: 0.8}

	if got := arbitrate(nil, ocrSame); got != ocrSame {
		t.Error("nil template should yield the OCR result")
	}
	if got := arbitrate(tmpl, nil); got != tmpl {
		t.Error("nil OCR should yield the template result")
	}
	// Agreement keeps the trusted method's result.
	if got := arbitrate(tmpl, ocrSame); got != tmpl {
		t.Error("agreement should keep the template result")
	}
	// An extreme secret rare is far less typical than a mid-set number;
	// OCR does not override on plausibility that close to the template's.
	if got := arbitrate(tmpl, ocrBetter); got != tmpl {
		t.Errorf("equal-plausibility disagreement should keep template, got %+v", got)
	}
	if got := arbitrate(tmplAtypical, ocrSame); got != ocrSame {
		t.Errorf("clearly more typical OCR answer should win, got %+v", got)
	}
}

func TestSplitNumber(t *testing.T) {
	num, total, ok := splitNumber("182/165")
	if !ok || num != 182 || total != 165 {
		t.Fatalf("got %d/%d ok=%v", num, total, ok)
	}
	for _, s := range []string{"", "182", "a/b", "1/2/3"} {
		if _, _, ok := splitNumber(s); ok {
			t.Errorf("splitNumber(%q) accepted", s)
		}
	}
}

func TestAttemptString(t *testing.T) {
	a := Attempt{Region: "bottom_right:tight", Method: "template", Value: "6/102", Confidence: 0.91, Valid: true}
	if got := a.String(); got != "bottom_right:tight/template: 6/102 (0.91)" {
		t.Errorf("String() = %q", got)
	}
	miss := Attempt{Region: "bottom_left:wide", Method: "ocr"}
	if got := miss.String(); got != "bottom_left:wide/ocr: no result" {
		t.Errorf("String() = %q", got)
	}
}

func TestExtractNoEngineNoPanic(t *testing.T) {
	// Blank card: nothing to find, but every region and the template
	// strategy must run cleanly without an OCR engine.
	card := image.NewRGBA(image.Rect(0, 0, 744, 1040))
	draw.Draw(card, card.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	e := &Extractor{}
	parsed, attempts := e.Extract(card)
	if parsed != nil {
		t.Fatalf("blank card produced %+v", parsed)
	}
	if len(attempts) == 0 {
		t.Fatal("no attempts recorded")
	}
	for _, a := range attempts {
		if a.Method != "template" {
			t.Errorf("unexpected method %q without an engine", a.Method)
		}
		if a.Valid {
			t.Errorf("blank card attempt marked valid: %+v", a)
		}
	}
}

// stubReader feeds canned OCR text into the vintage sweep.
type stubReader struct{ text string }

func (s stubReader) ReadDigitsImage(_ image.Image, _ gosseract.PageSegMode) (string, error) {
	return s.text, nil
}

func vintageTestCard() image.Image {
	card := image.NewRGBA(image.Rect(0, 0, 372, 520))
	draw.Draw(card, card.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return card
}

func TestVintageStrategyAcceptsPlausible(t *testing.T) {
	s := VintageStrategy{Engine: stubReader{text: "99/165"}}
	got, err := s.Recognize(vintageTestCard())
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if got == nil {
		t.Fatal("plausible reading rejected")
	}
	if got.Number != "99/165" {
		t.Errorf("number = %q", got.Number)
	}
	if got.Confidence < 0.5 || got.Confidence > 0.9 {
		t.Errorf("confidence %.2f outside vintage bounds", got.Confidence)
	}
}

func TestVintageStrategyRejectsYear(t *testing.T) {
	s := VintageStrategy{Engine: stubReader{text: "1998/99"}}
	got, err := s.Recognize(vintageTestCard())
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if got != nil {
		t.Fatalf("copyright year accepted: %+v", got)
	}
}

func TestVintageStrategyRejectsImplausible(t *testing.T) {
	// The sweep honors the same bounds as every other path: totals must
	// fall in [10,500] however well the raw read scores.
	for _, text := range []string{"2/5", "9/600"} {
		s := VintageStrategy{Engine: stubReader{text: text}}
		got, err := s.Recognize(vintageTestCard())
		if err != nil {
			t.Fatalf("recognize %q: %v", text, err)
		}
		if got != nil {
			t.Errorf("out-of-bounds reading %q accepted: %+v", text, got)
		}
	}
}

func TestVintageScore(t *testing.T) {
	good := vintageScore(99, 165, 0)
	if good <= 0 {
		t.Errorf("typical vintage number scored %.2f", good)
	}
	if y := vintageScore(1998, 99, 0); y > 0 {
		t.Errorf("year read scored %.2f, want negative", y)
	}
	if tilted := vintageScore(99, 165, 12); tilted >= good {
		t.Errorf("large rotation %.2f should score below upright %.2f", tilted, good)
	}
}
