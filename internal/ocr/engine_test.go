package ocr

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestPreprocessRegionGrayInput(t *testing.T) {
	// Single-channel input takes the clone path; the output must still be
	// the 3-channel binary Tesseract expects.
	region := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(200, 0, 0, 0), 40, 60, gocv.MatTypeCV8UC1)
	defer region.Close()

	out := PreprocessRegion(region)
	defer out.Close()

	if out.Channels() != 3 {
		t.Fatalf("channels = %d, want 3", out.Channels())
	}
	if min(out.Rows(), out.Cols()) < 150 {
		t.Errorf("small crop not upscaled: %dx%d", out.Cols(), out.Rows())
	}
}

func TestPreprocessRegionColorInput(t *testing.T) {
	region := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(30, 30, 30, 0), 200, 200, gocv.MatTypeCV8UC3)
	defer region.Close()

	out := PreprocessRegion(region)
	defer out.Close()

	if out.Channels() != 3 {
		t.Fatalf("channels = %d, want 3", out.Channels())
	}
	if out.Rows() != 200 || out.Cols() != 200 {
		t.Errorf("large crop resized: %dx%d", out.Cols(), out.Rows())
	}
}
