package events

const (
	OpUpdateUser uint8 = 1
	OpDeleteUser uint8 = 2

	OpCreatePost   uint8 = 16
	OpUpdatePost   uint8 = 17
	OpDeletePost   uint8 = 18
	OpPostReaction uint8 = 20

	OpCreateComment uint8 = 24
	OpUpdateComment uint8 = 25
	OpDeleteComment uint8 = 26
	OpCommentLike   uint8 = 27
)
