package document

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

const (
	jpegQuality = 90

	portraitImport  = "f:A4, pos:c, sc:1.0"
	landscapeImport = "f:A4L, pos:c, sc:1.0"
)

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	return img, nil
}

// flatten draws src over an opaque white canvas so transparent pixels do not turn black once
// encoded as jpeg.
func flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

// imagePDF wraps img in a single page PDF, landscape A4 for wide images and portrait A4
// otherwise.
func (n *Normalizer) imagePDF(img image.Image) ([]byte, error) {
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}

	desc := portraitImport
	if b := img.Bounds(); b.Dx() > b.Dy() {
		desc = landscapeImport
	}
	imp, err := api.Import(desc, types.POINTS)
	if err != nil {
		return nil, errors.Wrap(err, "import description")
	}

	var pdf bytes.Buffer
	if err := api.ImportImages(nil, &pdf, []io.Reader{&jpg}, imp, n.conf); err != nil {
		return nil, errors.Wrap(err, "import image")
	}
	return pdf.Bytes(), nil
}
