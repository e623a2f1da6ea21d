package posts

import "errors"

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrTooManyImages   = errors.New("too many images")
	ErrEmptyPost       = errors.New("post has no content")
	ErrInvalidReaction = errors.New("invalid reaction")
)
