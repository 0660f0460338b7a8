package filters

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	imgutil "imgedit/internal/image"
)

// GaussianBlur blurs img with standard deviation radius using OpenCV.
func GaussianBlur(img *image.NRGBA, radius float64) (*image.NRGBA, error) {
	if radius <= 0 {
		return imgutil.Clone(img), nil
	}

	mat, err := nrgbaToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(mat, &blurred, image.Point{}, radius, radius, gocv.BorderReflect101)

	return matToNRGBA(blurred, img.Bounds())
}

// nrgbaToMat wraps the pixels of img in a 4-channel Mat. Channel order is
// left as RGBA; the blur treats channels independently.
func nrgbaToMat(img *image.NRGBA) (gocv.Mat, error) {
	b := img.Bounds()
	if img.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		img = imgutil.ToNRGBA(img)
	}
	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, img.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to convert image: %w", err)
	}
	return mat, nil
}

// matToNRGBA copies a 4-channel Mat into a new image with the given bounds.
func matToNRGBA(mat gocv.Mat, bounds image.Rectangle) (*image.NRGBA, error) {
	if mat.Channels() != 4 || mat.Rows() != bounds.Dy() || mat.Cols() != bounds.Dx() {
		return nil, fmt.Errorf("unexpected mat %dx%dx%d", mat.Cols(), mat.Rows(), mat.Channels())
	}
	dst := image.NewNRGBA(bounds)
	copy(dst.Pix, mat.ToBytes())
	return dst, nil
}
