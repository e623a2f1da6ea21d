package feedview

import (
	"context"

	"github.com/socialfeed/server/pkg/images"
	"github.com/socialfeed/server/pkg/reactions"
	"github.com/socialfeed/server/pkg/structs"
)

type Comment = structs.V0Comment

// ReactionStore is the remote side of a post's reaction state.
type ReactionStore interface {
	// SetReaction records kind for the viewer. wasReacted tells the store
	// whether the viewer already had a reaction before this change.
	SetReaction(ctx context.Context, postId string, kind reactions.Kind, wasReacted bool) error
	ClearReaction(ctx context.Context, postId string) error
}

// CommentStore is the remote side of a post's comment threads. Lists are
// returned in creation order.
type CommentStore interface {
	ListComments(ctx context.Context, postId string) ([]Comment, error)
	ListReplies(ctx context.Context, parentId string) ([]Comment, error)
	CreateComment(ctx context.Context, postId string, content string, parentId string, imageUrl string) error
	UpdateComment(ctx context.Context, commentId string, content string) error
	DeleteComment(ctx context.Context, commentId string) error
	SetCommentLiked(ctx context.Context, commentId string, liked bool) error
}

type ImageUploader interface {
	UploadImage(ctx context.Context, f images.File) (string, error)
}

type Store interface {
	GetPost(ctx context.Context, postId string) (structs.V0Post, error)
	ReactionStore
	CommentStore
}
