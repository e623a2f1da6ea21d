package comments

import "errors"

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrEmptyComment    = errors.New("comment has no content")
	ErrParentMismatch  = errors.New("parent comment belongs to another post")
	ErrNestedReply     = errors.New("replies can't be replied to")
)
