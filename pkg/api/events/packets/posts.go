package packets

type DeletePost struct {
	PostId string `json:"post_id" msgpack:"post_id"`
}

type PostReaction struct {
	PostId string `json:"post_id" msgpack:"post_id"`
	UserId string `json:"user_id" msgpack:"user_id"`
	Kind   string `json:"kind" msgpack:"kind"`
	Count  int64  `json:"count" msgpack:"count"`
}

type DeleteComment struct {
	PostId    string  `json:"post_id" msgpack:"post_id"`
	CommentId string  `json:"comment_id" msgpack:"comment_id"`
	ParentId  *string `json:"parent_id,omitempty" msgpack:"parent_id,omitempty"`
}

type CommentLike struct {
	PostId    string `json:"post_id" msgpack:"post_id"`
	CommentId string `json:"comment_id" msgpack:"comment_id"`
	UserId    string `json:"user_id" msgpack:"user_id"`
	Liked     bool   `json:"liked" msgpack:"liked"`
}

type DeleteUser struct {
	UserId string `json:"user_id" msgpack:"user_id"`
}
