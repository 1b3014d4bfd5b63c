package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

const heroMaxWidth = 1600

// ImageConverter normalizes uploaded images to webp before storage.
type ImageConverter interface {
	ToWebP(r io.Reader) (io.Reader, error)
}

type webpConverter struct {
	quality float32
}

func NewWebPConverter() ImageConverter {
	return &webpConverter{quality: 80}
}

func (c *webpConverter) ToWebP(r io.Reader) (io.Reader, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	src = downscale(src, heroMaxWidth)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, src, &webp.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return &buf, nil
}

func downscale(src image.Image, maxWidth int) image.Image {
	bounds := src.Bounds()
	if bounds.Dx() <= maxWidth {
		return src
	}
	height := bounds.Dy() * maxWidth / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
