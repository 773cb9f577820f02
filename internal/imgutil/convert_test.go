package imgutil

import (
	"image"
	"image/color"
	"testing"
)

func TestToMatToImageRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 5), B: uint8(x + y), A: 255})
		}
	}

	mat, err := ToMat(src)
	if err != nil {
		t.Fatalf("to mat: %v", err)
	}
	defer mat.Close()

	if mat.Rows() != 48 || mat.Cols() != 64 || mat.Channels() != 3 {
		t.Fatalf("mat shape %dx%dx%d", mat.Rows(), mat.Cols(), mat.Channels())
	}

	back, err := ToImage(mat)
	if err != nil {
		t.Fatalf("to image: %v", err)
	}

	for _, p := range []image.Point{{0, 0}, {63, 47}, {10, 20}} {
		want := src.RGBAAt(p.X, p.Y)
		r, g, b, _ := back.At(p.X, p.Y).RGBA()
		if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B {
			t.Errorf("pixel %v changed: got (%d,%d,%d) want (%d,%d,%d)",
				p, uint8(r>>8), uint8(g>>8), uint8(b>>8), want.R, want.G, want.B)
		}
	}
}

func TestToGrayMat(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range src.Pix {
		src.Pix[i] = 200
	}

	gray, err := ToGrayMat(src)
	if err != nil {
		t.Fatalf("to gray: %v", err)
	}
	defer gray.Close()

	if gray.Channels() != 1 {
		t.Fatalf("channels = %d, want 1", gray.Channels())
	}
	if v := gray.GetUCharAt(5, 5); v != 200 {
		t.Errorf("gray value %d, want 200", v)
	}
}

func TestCropFraction(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 200))

	crop := CropFraction(src, 0.72, 0.93, 0.98, 1.0)
	b := crop.Bounds()
	if b.Dx() != 26 || b.Dy() != 14 {
		t.Errorf("crop = %dx%d, want 26x14", b.Dx(), b.Dy())
	}

	// Clamped out-of-range fractions.
	full := CropFraction(src, -1, -1, 2, 2)
	if full.Bounds().Dx() != 100 || full.Bounds().Dy() != 200 {
		t.Errorf("clamped crop = %v", full.Bounds())
	}

	// Inverted region collapses to empty.
	empty := CropFraction(src, 0.9, 0.9, 0.1, 0.1)
	if empty.Bounds().Dx() != 0 || empty.Bounds().Dy() != 0 {
		t.Errorf("inverted crop = %v", empty.Bounds())
	}
}
