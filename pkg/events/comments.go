package events

import "github.com/socialfeed/server/pkg/structs"

type CreateComment struct {
	Comment structs.V0Comment `msgpack:"comment"`
}

type UpdateComment struct {
	Comment structs.V0Comment `msgpack:"comment"`
}

type DeleteComment struct {
	PostId    string  `msgpack:"post_id"`
	CommentId string  `msgpack:"comment_id"`
	ParentId  *string `msgpack:"parent_id,omitempty"`
}

type CommentLike struct {
	PostId    string `msgpack:"post_id"`
	CommentId string `msgpack:"comment_id"`
	UserId    string `msgpack:"user_id"`
	Liked     bool   `msgpack:"liked"`
}
