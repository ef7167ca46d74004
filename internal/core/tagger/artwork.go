package tagger

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
	_ "image/gif"
)

const defaultJPEGQuality = 85

// NormalizeArtwork downscales artwork so neither dimension exceeds maxSize
// pixels, preserving aspect ratio, and re-encodes it. Returns the input
// unchanged when maxSize is 0, when the image already fits, or when it
// cannot be decoded; embedding bad-but-fetched art beats dropping it.
func NormalizeArtwork(data []byte, maxSize int) ([]byte, string) {
	if maxSize <= 0 {
		return data, ""
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, ""
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxSize && height <= maxSize {
		return data, ""
	}

	if width > height {
		height = (height * maxSize) / width
		width = maxSize
	} else {
		width = (width * maxSize) / height
		height = maxSize
	}
	resized := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		err = png.Encode(&buf, resized)
		if err != nil {
			return data, ""
		}
		return buf.Bytes(), "image/png"
	default:
		// Everything else (jpeg, gif, webp) re-encodes as JPEG.
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: defaultJPEGQuality})
		if err != nil {
			return data, ""
		}
		return buf.Bytes(), "image/jpeg"
	}
}
