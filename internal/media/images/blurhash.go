package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
)

// blurHashSize bounds the thumbnail the hash is computed from. A 64px
// thumbnail hashes in milliseconds and looks the same as the full image.
const blurHashSize = 64

// ComputeBlurHash generates a BlurHash placeholder for img using 4x3
// components, which yields a 20-30 character string. Large images are
// scaled down first.
func ComputeBlurHash(img image.Image) (string, error) {
	hash, err := blurhash.Encode(4, 3, resizeForBlurHash(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// resizeForBlurHash scales img with nearest-neighbour sampling so its longer
// side is at most blurHashSize, keeping the aspect ratio.
func resizeForBlurHash(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= blurHashSize && h <= blurHashSize {
		return img
	}

	dw, dh := thumbnailSize(w, h, blurHashSize)
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := range dh {
		sy := b.Min.Y + y*h/dh
		for x := range dw {
			dst.Set(x, y, img.At(b.Min.X+x*w/dw, sy))
		}
	}
	return dst
}

// thumbnailSize fits w x h inside a square of side limit.
func thumbnailSize(w, h, limit int) (int, int) {
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
