package imaging

import (
	"bytes"
	"image"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
)

// Sniff reports the content type of data from its leading bytes,
// regardless of the entry name it came from.
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}

// Orientation returns the EXIF orientation tag (1-8) of a JPEG page,
// or 1 when there is none.
func Orientation(data []byte) int {
	if !mimetype.Detect(data).Is("image/jpeg") {
		return 1
	}
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// DecodeUpright decodes data and applies its EXIF orientation.
func DecodeUpright(data []byte) (image.Image, string, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, format, err
	}
	if format == "jpeg" {
		img = Upright(img, Orientation(data))
	}
	return img, format, nil
}

// Upright transforms img so an image stored with the given EXIF orientation
// displays the right way up. Orientations 5-8 swap width and height.
func Upright(img image.Image, orientation int) image.Image {
	if orientation < 2 || orientation > 8 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			var sx, sy int
			switch orientation {
			case 2:
				sx, sy = w-1-x, y
			case 3:
				sx, sy = w-1-x, h-1-y
			case 4:
				sx, sy = x, h-1-y
			case 5:
				sx, sy = y, x
			case 6:
				sx, sy = y, h-1-x
			case 7:
				sx, sy = w-1-y, h-1-x
			case 8:
				sx, sy = w-1-y, x
			}
			dst.Set(x, y, img.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return dst
}
