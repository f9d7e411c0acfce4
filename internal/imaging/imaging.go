// Package imaging decodes page bytes, scales thumbnails and re-encodes
// images for the clipboard.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Decode decodes any registered format (gif, jpeg, png, webp).
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("unable to decode image: %w", err)
	}
	return img, format, nil
}

// DecodeConfig returns dimensions and format without decoding pixels.
func DecodeConfig(data []byte) (image.Config, string, error) {
	return image.DecodeConfig(bytes.NewReader(data))
}

// Fit scales img so its longest edge is at most size, keeping the aspect ratio.
// Images already small enough are returned unchanged.
func Fit(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if size <= 0 || (w <= size && h <= size) || w == 0 || h == 0 {
		return img
	}

	targetW, targetH := size, size
	if w >= h {
		targetH = max(1, h*size/w)
	} else {
		targetW = max(1, w*size/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// ToPNG re-encodes data (any decodable format) as PNG, upright.
func ToPNG(data []byte) ([]byte, error) {
	img, format, err := DecodeUpright(data)
	if err != nil {
		return nil, err
	}
	if format == "png" {
		return data, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("unable to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
