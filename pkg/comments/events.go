package comments

import (
	"context"
	"strconv"

	"github.com/socialfeed/server/pkg/events"
	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/structs"
)

func EmitCreateCommentEvent(ctx context.Context, c structs.V0Comment) {
	events.Emit(ctx, events.OpCreateComment, &events.CreateComment{Comment: c})
}

func EmitUpdateCommentEvent(ctx context.Context, c structs.V0Comment) {
	events.Emit(ctx, events.OpUpdateComment, &events.UpdateComment{Comment: c})
}

func EmitDeleteCommentEvent(ctx context.Context, c *Comment) {
	ev := &events.DeleteComment{
		PostId:    strconv.FormatInt(c.PostId, 10),
		CommentId: strconv.FormatInt(c.Id, 10),
	}
	if c.ParentId != nil {
		parentId := strconv.FormatInt(*c.ParentId, 10)
		ev.ParentId = &parentId
	}
	events.Emit(ctx, events.OpDeleteComment, ev)
}

func EmitCommentLikeEvent(ctx context.Context, c *Comment, userId feedid.FeedID, liked bool) {
	events.Emit(ctx, events.OpCommentLike, &events.CommentLike{
		PostId:    strconv.FormatInt(c.PostId, 10),
		CommentId: strconv.FormatInt(c.Id, 10),
		UserId:    strconv.FormatInt(userId, 10),
		Liked:     liked,
	})
}
