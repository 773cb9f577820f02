package warp

import (
	"errors"
	"fmt"
	"image"

	"cardscan/pkg/geometry"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// ErrDegenerateQuad is returned when a quad cannot support a perspective
// transform (zero area, collapsed or collinear corners).
var ErrDegenerateQuad = errors.New("degenerate quad")

// Rectify warps the region bounded by an ordered quad into the canonical
// output frame using bilinear resampling. The caller owns the returned Mat.
func Rectify(img gocv.Mat, quad geometry.Quad, p Params) (gocv.Mat, error) {
	if quad.IsDegenerate() {
		return gocv.Mat{}, ErrDegenerateQuad
	}

	h, err := computeHomography(quad, p.OutputWidth, p.OutputHeight)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("homography: %w", err)
	}
	defer h.Close()

	warped := gocv.NewMat()
	gocv.WarpPerspective(img, &warped, h, image.Point{p.OutputWidth, p.OutputHeight})
	return warped, nil
}

// computeHomography solves the 3x3 perspective transform mapping the quad
// corners to the canonical frame corners. With h33 fixed to 1, the four
// correspondences give an exact 8x8 linear system:
//
//	u = (h11*x + h12*y + h13) / (h31*x + h32*y + 1)
//	v = (h21*x + h22*y + h23) / (h31*x + h32*y + 1)
func computeHomography(quad geometry.Quad, outW, outH int) (gocv.Mat, error) {
	dst := [4]geometry.Point2D{
		{X: 0, Y: 0},
		{X: float64(outW - 1), Y: 0},
		{X: float64(outW - 1), Y: float64(outH - 1)},
		{X: 0, Y: float64(outH - 1)},
	}

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := quad[i].X, quad[i].Y
		u, v := dst[i].X, dst[i].Y

		a.Set(i*2, 0, x)
		a.Set(i*2, 1, y)
		a.Set(i*2, 2, 1)
		a.Set(i*2, 6, -u*x)
		a.Set(i*2, 7, -u*y)
		b.SetVec(i*2, u)

		a.Set(i*2+1, 3, x)
		a.Set(i*2+1, 4, y)
		a.Set(i*2+1, 5, 1)
		a.Set(i*2+1, 6, -v*x)
		a.Set(i*2+1, 7, -v*y)
		b.SetVec(i*2+1, v)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return gocv.Mat{}, ErrDegenerateQuad
	}

	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	for i := 0; i < 8; i++ {
		m.SetDoubleAt(i/3, i%3, h.AtVec(i))
	}
	m.SetDoubleAt(2, 2, 1)
	return m, nil
}

// Canonical is the best-effort rectification result. When no quad is found
// or the warp degenerates, Image is a copy of the original input and
// Rectified is false; callers treat the unwarped image as canonical.
type Canonical struct {
	Image     gocv.Mat
	Rectified bool
	Reason    string
	Detection *Detection
	Failure   *Failure
}

// Close releases the canonical image.
func (c *Canonical) Close() {
	c.Image.Close()
}

// RectifyBestEffort detects and warps the card, falling back to the original
// image when detection or the warp fails. The caller owns Canonical.Image.
func RectifyBestEffort(img gocv.Mat, p Params) Canonical {
	det, fail := Detect(img, p)
	if det == nil {
		return Canonical{
			Image:   img.Clone(),
			Reason:  "warp_not_found",
			Failure: fail,
		}
	}

	warped, err := Rectify(img, det.Quad, p)
	if err != nil {
		return Canonical{
			Image:     img.Clone(),
			Reason:    "warp_failed",
			Detection: det,
		}
	}

	return Canonical{
		Image:     warped,
		Rectified: true,
		Reason:    fmt.Sprintf("warp_%s_%s", det.Method, det.Pipeline),
		Detection: det,
	}
}
