package feedview

import (
	"context"
	"fmt"
	"sync"

	"github.com/socialfeed/server/pkg/structs"
)

// PostView is the open state of a single post.
type PostView struct {
	Reactions *Reconciler
	Comments  *Pager

	postId string
	store  Store
	notify Notifier

	mu          sync.Mutex
	post        structs.V0Post
	stale       bool
	unsubscribe func()
}

// OpenPost loads a post and its comments. The view watches session for
// changes, after which Refresh should be called since the viewer's own
// reaction belongs to the previous identity.
func OpenPost(ctx context.Context, postId string, store Store, uploader ImageUploader, session Session, notify Notifier) (*PostView, error) {
	notify = orDiscard(notify)

	post, err := store.GetPost(ctx, postId)
	if err != nil {
		notify.Notify(Notice{Level: NoticeError, Message: "Failed to load post"})
		return nil, fmt.Errorf("%w: %w", ErrRemoteRequestFailed, err)
	}

	v := &PostView{
		Reactions: NewReconciler(postId, reactionState(post), store, session, notify),
		Comments:  NewPager(postId, store, uploader, session, notify),
		postId:    postId,
		store:     store,
		notify:    notify,
		post:      post,
	}
	if err := v.Comments.Load(ctx); err != nil {
		return nil, err
	}
	v.unsubscribe = session.Subscribe(func(string) {
		v.mu.Lock()
		v.stale = true
		v.mu.Unlock()
	})
	return v, nil
}

// Post returns the snapshot the view was last loaded from.
func (v *PostView) Post() structs.V0Post {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.post
}

// SessionChanged reports whether the viewer signed in or out since the last
// load.
func (v *PostView) SessionChanged() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stale
}

// Refresh reloads the post and its comments from the store.
func (v *PostView) Refresh(ctx context.Context) error {
	post, err := v.store.GetPost(ctx, v.postId)
	if err != nil {
		v.notify.Notify(Notice{Level: NoticeError, Message: "Failed to load post"})
		return fmt.Errorf("%w: %w", ErrRemoteRequestFailed, err)
	}
	v.Reactions.Reset(reactionState(post))
	if err := v.Comments.Load(ctx); err != nil {
		return err
	}

	v.mu.Lock()
	v.post = post
	v.stale = false
	v.mu.Unlock()
	return nil
}

func (v *PostView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

func reactionState(p structs.V0Post) ReactionState {
	return ReactionState{Current: p.Actions.Current, Count: p.Count.Like}
}
