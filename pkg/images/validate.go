package images

import (
	"fmt"
	"net/http"
)

const MaxImageSize = 32 << 20 // 32 MiB, the image host's own limit

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/jpg":  true,
}

// Validate checks the declared type and the sniffed content before anything
// is sent to the image host.
func Validate(name string, declaredType string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyImage, name)
	}
	if len(data) > MaxImageSize {
		return fmt.Errorf("%w: %s", ErrImageTooLarge, name)
	}
	if !allowedTypes[declaredType] {
		return fmt.Errorf("%w: %s", ErrInvalidImageType, name)
	}
	if sniffed := http.DetectContentType(data); !allowedTypes[sniffed] {
		return fmt.Errorf("%w: %s", ErrInvalidImageType, name)
	}
	return nil
}
