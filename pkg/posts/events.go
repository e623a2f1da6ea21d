package posts

import (
	"context"
	"strconv"

	"github.com/socialfeed/server/pkg/events"
	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/reactions"
	"github.com/socialfeed/server/pkg/structs"
)

func EmitCreatePostEvent(ctx context.Context, post structs.V0Post) {
	post.Actions = structs.V0PostActions{}
	events.Emit(ctx, events.OpCreatePost, &events.CreatePost{Post: post})
}

func EmitUpdatePostEvent(ctx context.Context, post structs.V0Post) {
	post.Actions = structs.V0PostActions{}
	events.Emit(ctx, events.OpUpdatePost, &events.UpdatePost{Post: post})
}

func EmitDeletePostEvent(ctx context.Context, postId feedid.FeedID) {
	events.Emit(ctx, events.OpDeletePost, &events.DeletePost{
		PostId: strconv.FormatInt(postId, 10),
	})
}

func EmitPostReactionEvent(ctx context.Context, p *Post, userId feedid.FeedID, kind reactions.Kind) {
	events.Emit(ctx, events.OpPostReaction, &events.PostReaction{
		PostId: strconv.FormatInt(p.Id, 10),
		UserId: strconv.FormatInt(userId, 10),
		Kind:   kind,
		Count:  p.Count.Like,
	})
}
