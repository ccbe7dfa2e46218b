// Package images validates uploaded recipe images and derives their
// BlurHash placeholders.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"slices"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/larderapp/larder-server/internal/domain"
	domainerrors "github.com/larderapp/larder-server/internal/errors"
)

// MaxPixels caps width*height so a tiny file cannot expand into a huge bitmap.
const MaxPixels = 40_000_000

// formats maps sniffed MIME types to stored format tags.
var formats = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// aliases lists the extension spellings accepted for each format tag.
var aliases = map[string][]string{
	"png":  {"png"},
	"jpeg": {"jpeg", "jpg"},
	"gif":  {"gif"},
	"webp": {"webp"},
}

// Info describes an accepted image.
type Info struct {
	Format      string // png, jpeg, gif, webp
	ContentType string
	Width       int
	Height      int
	BlurHash    string
}

// Inspect checks that data is a decodable image of an allowed type no larger
// than maxSize bytes. The declared file name never matters; the format is
// sniffed from the bytes. allowed holds lowercase extensions such as "jpg".
func Inspect(data []byte, maxSize int64, allowed []string) (*Info, error) {
	if len(data) == 0 {
		return nil, domainerrors.Validation("image is empty")
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, domainerrors.Validationf("image exceeds the %d byte limit", maxSize)
	}

	mime := mimetype.Detect(data)
	format, ok := formats[mime.String()]
	if !ok {
		return nil, domainerrors.Validationf("unsupported image type %s", mime.String())
	}
	if !isAllowed(format, allowed) {
		return nil, domainerrors.Validationf("image type %s is not allowed", format)
	}

	cfg, decodedAs, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domainerrors.Validation("image could not be decoded").WithCause(err)
	}
	if decodedAs != format {
		return nil, domainerrors.Validationf("image content is %s but looks like %s", decodedAs, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > MaxPixels {
		return nil, domainerrors.Validationf("image dimensions %dx%d are not supported", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domainerrors.Validation("image could not be decoded").WithCause(err)
	}

	hash, err := ComputeBlurHash(img)
	if err != nil {
		return nil, fmt.Errorf("inspect image: %w", err)
	}

	return &Info{
		Format:      format,
		ContentType: domain.ImageContentType(format),
		Width:       cfg.Width,
		Height:      cfg.Height,
		BlurHash:    hash,
	}, nil
}

func isAllowed(format string, allowed []string) bool {
	for _, ext := range aliases[format] {
		if slices.Contains(allowed, ext) {
			return true
		}
	}
	return false
}
