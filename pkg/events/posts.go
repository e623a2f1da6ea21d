package events

import (
	"github.com/socialfeed/server/pkg/reactions"
	"github.com/socialfeed/server/pkg/structs"
)

type CreatePost struct {
	Post structs.V0Post `msgpack:"post"`
}

type UpdatePost struct {
	Post structs.V0Post `msgpack:"post"`
}

type DeletePost struct {
	PostId string `msgpack:"post_id"`
}

// PostReaction is sent when a user sets or clears their reaction. Kind is
// None on clear, Count is the post's reaction count afterwards.
type PostReaction struct {
	PostId string         `msgpack:"post_id"`
	UserId string         `msgpack:"user_id"`
	Kind   reactions.Kind `msgpack:"kind"`
	Count  int64          `msgpack:"count"`
}
