// internal/multipart/compress.go

package multipart

import (
	"bytes"
	"fmt"
	"math"

	"github.com/disintegration/imaging"
)

// QualityFor picks the JPEG quality for an image of the given pixel count. Larger images
// are compressed harder so uploads stay within the upload timeout on mobile links.
func QualityFor(pixels int) float64 {
	switch {
	case pixels < 500_000:
		return 0.9
	case pixels < 1_000_000:
		return 0.8
	case pixels < 2_000_000:
		return 0.7
	default:
		return 0.6
	}
}

// Compress decodes any supported image (honouring EXIF orientation) and re-encodes it as
// JPEG at QualityFor(width*height). It returns the JPEG bytes and the quality used.
func Compress(data []byte) ([]byte, float64, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	quality := QualityFor(bounds.Dx() * bounds.Dy())

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(int(math.Round(quality*100)))); err != nil {
		return nil, 0, fmt.Errorf("failed to encode image: %w", err)
	}

	return out.Bytes(), quality, nil
}

// CompressFile compresses f when it is an image and returns it renamed to .jpg.
// Non-image parts are returned unchanged.
func CompressFile(f File) (File, error) {
	if !isImage(f.MimeType) {
		return f, nil
	}
	data, _, err := Compress(f.Data)
	if err != nil {
		return f, err
	}
	f.Data = data
	f.MimeType = "image/jpeg"
	f.Filename = jpegName(f.Filename)
	return f, nil
}

func isImage(mime string) bool {
	return len(mime) > 6 && mime[:6] == "image/"
}

func jpegName(name string) string {
	for i := len(name) - 1; i >= 0 && name[i] != '/'; i-- {
		if name[i] == '.' {
			return name[:i] + ".jpg"
		}
	}
	return name + ".jpg"
}
