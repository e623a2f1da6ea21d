package images

import "errors"

var (
	ErrInvalidImageType = errors.New("only JPG and PNG images are accepted")
	ErrImageTooLarge    = errors.New("image too large")
	ErrEmptyImage       = errors.New("image is empty")
	ErrUploadFailed     = errors.New("image upload failed")
)
