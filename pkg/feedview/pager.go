package feedview

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/socialfeed/server/pkg/images"
	"github.com/socialfeed/server/pkg/logger"
	"go.uber.org/zap"
)

const (
	InitialWindow   = 2
	WindowIncrement = 5
)

var errUnknownComment = errors.New("comment is not in this view")

// NewComment is the input of Pager.Add. Image is optional, and so is
// Content when an image is attached.
type NewComment struct {
	Content  string
	ParentId string
	Image    *images.File
}

// Pager holds the comments of a post, or the replies to one comment, in
// creation order and exposes a window over them that only grows.
//
// Reply threads get their own Pager, created and loaded on first Expand and
// kept for the life of the parent Pager.
type Pager struct {
	postId   string
	parentId string
	store    CommentStore
	uploader ImageUploader
	auth     Identity
	notify   Notifier

	mu       sync.Mutex
	comments []Comment
	visible  int
	loaded   bool
	expanded bool
	replies  map[string]*Pager
	likeSeq  map[string]uint64
}

// NewPager returns an empty pager for the top level comments of postId.
// uploader may be nil, in which case comments with images are rejected.
func NewPager(postId string, store CommentStore, uploader ImageUploader, auth Identity, notify Notifier) *Pager {
	return &Pager{
		postId:   postId,
		store:    store,
		uploader: uploader,
		auth:     auth,
		notify:   orDiscard(notify),
		visible:  InitialWindow,
		replies:  make(map[string]*Pager),
		likeSeq:  make(map[string]uint64),
	}
}

func (p *Pager) PostId() string { return p.postId }

// ParentId is empty for the top level pager.
func (p *Pager) ParentId() string { return p.parentId }

// Load fetches the full list from the store. The window is kept.
func (p *Pager) Load(ctx context.Context) error {
	return p.refresh(ctx, -1)
}

// Displayed returns the comments inside the window.
func (p *Pager) Displayed() []Comment {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := min(p.visible, len(p.comments))
	return slices.Clone(p.comments[:n])
}

// All returns every known comment, including those past the window.
func (p *Pager) All() []Comment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.comments)
}

func (p *Pager) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.comments)
}

func (p *Pager) VisibleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible < len(p.comments)
}

func (p *Pager) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// ShowMore grows the window. It never fetches.
func (p *Pager) ShowMore() {
	p.mu.Lock()
	p.visible += WindowIncrement
	p.mu.Unlock()
}

// Add creates a comment and refreshes the list. If the window was showing
// every comment known before the call, it grows by one so the new comment
// is shown. A ParentId routes the comment to that thread's pager.
func (p *Pager) Add(ctx context.Context, c NewComment) error {
	target := p
	if c.ParentId != "" && c.ParentId != p.parentId {
		if p.parentId != "" {
			return fmt.Errorf("%w: replies cannot be nested", ErrValidationFailed)
		}
		target = p.replyPager(c.ParentId)
	}
	return target.add(ctx, c.Content, c.Image)
}

func (p *Pager) add(ctx context.Context, content string, img *images.File) error {
	if _, ok := p.auth.CurrentUserId(); !ok {
		p.notify.Notify(Notice{Level: NoticePrompt, Message: "Please sign in to comment"})
		return ErrUnauthenticated
	}

	content = strings.TrimSpace(content)
	if content == "" && img == nil {
		p.notify.Notify(Notice{Level: NoticeError, Message: "Comment cannot be empty"})
		return fmt.Errorf("%w: empty comment", ErrValidationFailed)
	}

	var imageUrl string
	if img != nil {
		if p.uploader == nil {
			p.notify.Notify(Notice{Level: NoticeError, Message: "Image uploads are unavailable"})
			return fmt.Errorf("%w: no image uploader", ErrValidationFailed)
		}
		if err := images.Validate(img.Name, img.Type, img.Data); err != nil {
			p.notify.Notify(Notice{Level: NoticeError, Message: "Only JPEG and PNG images are allowed"})
			return fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		url, err := p.uploader.UploadImage(ctx, *img)
		if err != nil {
			p.notify.Notify(Notice{Level: NoticeError, Message: "Failed to upload image"})
			return fmt.Errorf("%w: %w", ErrRemoteRequestFailed, err)
		}
		imageUrl = url
	}

	p.mu.Lock()
	prevLen := len(p.comments)
	p.mu.Unlock()

	if err := p.store.CreateComment(ctx, p.postId, content, p.parentId, imageUrl); err != nil {
		p.fail("create comment", err)
		return fmt.Errorf("%w: %w", ErrRemoteRequestFailed, err)
	}
	if err := p.refresh(ctx, prevLen); err != nil {
		return err
	}

	p.notify.Notify(Notice{Level: NoticeSuccess, Message: "Comment posted"})
	return nil
}

// Update edits a comment in this pager or one of its cached threads and
// refreshes the list that holds it.
func (p *Pager) Update(ctx context.Context, commentId string, content string) error {
	if _, ok := p.auth.CurrentUserId(); !ok {
		p.notify.Notify(Notice{Level: NoticePrompt, Message: "Please sign in to edit comments"})
		return ErrUnauthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		p.notify.Notify(Notice{Level: NoticeError, Message: "Comment cannot be empty"})
		return fmt.Errorf("%w: empty comment", ErrValidationFailed)
	}
	owner := p.locate(commentId)
	if owner == nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, errUnknownComment)
	}

	if err := p.store.UpdateComment(ctx, commentId, content); err != nil {
		p.fail("update comment", err)
		return fmt.Errorf("%w: %w", ErrRemoteRequestFailed, err)
	}
	if err := owner.refresh(ctx, -1); err != nil {
		return err
	}

	p.notify.Notify(Notice{Level: NoticeSuccess, Message: "Comment updated"})
	return nil
}

// Remove deletes a comment and drops it from the local list without a
// refetch. The order of the remaining comments and the window are kept.
func (p *Pager) Remove(ctx context.Context, commentId string) error {
	if _, ok := p.auth.CurrentUserId(); !ok {
		p.notify.Notify(Notice{Level: NoticePrompt, Message: "Please sign in to delete comments"})
		return ErrUnauthenticated
	}
	owner := p.locate(commentId)
	if owner == nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, errUnknownComment)
	}

	if err := p.store.DeleteComment(ctx, commentId); err != nil {
		p.fail("delete comment", err)
		return fmt.Errorf("%w: %w", ErrRemoteRequestFailed, err)
	}

	owner.mu.Lock()
	owner.comments = slices.DeleteFunc(owner.comments, func(c Comment) bool {
		return c.Id == commentId
	})
	// replies go with their parent
	delete(owner.replies, commentId)
	delete(owner.likeSeq, commentId)
	owner.mu.Unlock()

	p.notify.Notify(Notice{Level: NoticeSuccess, Message: "Comment deleted"})
	return nil
}

// ToggleLike flips the viewer's like on a comment optimistically. A failed
// call restores the previous likes unless a newer toggle superseded it.
func (p *Pager) ToggleLike(ctx context.Context, commentId string) error {
	userId, ok := p.auth.CurrentUserId()
	if !ok {
		p.notify.Notify(Notice{Level: NoticePrompt, Message: "Please sign in to like comments"})
		return ErrUnauthenticated
	}
	owner := p.locate(commentId)
	if owner == nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, errUnknownComment)
	}

	owner.mu.Lock()
	i := owner.indexOf(commentId)
	if i < 0 {
		owner.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrValidationFailed, errUnknownComment)
	}
	prev := owner.comments[i].Likes
	liked := slices.Contains(prev, userId)
	next := slices.Clone(prev)
	if liked {
		next = slices.DeleteFunc(next, func(id string) bool { return id == userId })
	} else {
		next = append(next, userId)
	}
	owner.comments[i].Likes = next
	owner.likeSeq[commentId]++
	seq := owner.likeSeq[commentId]
	owner.mu.Unlock()

	if err := p.store.SetCommentLiked(ctx, commentId, !liked); err != nil {
		owner.mu.Lock()
		if owner.likeSeq[commentId] == seq {
			if j := owner.indexOf(commentId); j >= 0 {
				owner.comments[j].Likes = prev
			}
		}
		owner.mu.Unlock()
		p.fail("toggle comment like", err)
		return fmt.Errorf("%w: %w", ErrRemoteRequestFailed, err)
	}
	return nil
}

// Expand opens the reply thread of parentId, loading it on first use.
func (p *Pager) Expand(ctx context.Context, parentId string) (*Pager, error) {
	if p.parentId != "" {
		return nil, fmt.Errorf("%w: replies cannot be nested", ErrValidationFailed)
	}
	rp := p.replyPager(parentId)
	if !rp.Loaded() {
		if err := rp.Load(ctx); err != nil {
			return nil, err
		}
	}
	rp.mu.Lock()
	rp.expanded = true
	rp.mu.Unlock()
	return rp, nil
}

// Collapse hides the thread. Its pager and window are kept.
func (p *Pager) Collapse(parentId string) {
	if rp, ok := p.Replies(parentId); ok {
		rp.mu.Lock()
		rp.expanded = false
		rp.mu.Unlock()
	}
}

// Replies returns the cached thread pager for parentId, if any.
func (p *Pager) Replies(parentId string) (*Pager, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rp, ok := p.replies[parentId]
	return rp, ok
}

func (p *Pager) Expanded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expanded
}

func (p *Pager) replyPager(parentId string) *Pager {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rp, ok := p.replies[parentId]; ok {
		return rp
	}
	rp := NewPager(p.postId, p.store, p.uploader, p.auth, p.notify)
	rp.parentId = parentId
	p.replies[parentId] = rp
	return rp
}

// locate finds the pager whose list holds commentId.
func (p *Pager) locate(commentId string) *Pager {
	p.mu.Lock()
	if p.indexOf(commentId) >= 0 {
		p.mu.Unlock()
		return p
	}
	threads := make([]*Pager, 0, len(p.replies))
	for _, rp := range p.replies {
		threads = append(threads, rp)
	}
	p.mu.Unlock()

	for _, rp := range threads {
		rp.mu.Lock()
		found := rp.indexOf(commentId) >= 0
		rp.mu.Unlock()
		if found {
			return rp
		}
	}
	return nil
}

// indexOf must be called with p.mu held.
func (p *Pager) indexOf(commentId string) int {
	return slices.IndexFunc(p.comments, func(c Comment) bool {
		return c.Id == commentId
	})
}

// refresh replaces the list with the store's. prevLen is the list length
// before a successful add, or -1.
func (p *Pager) refresh(ctx context.Context, prevLen int) error {
	var (
		list []Comment
		err  error
	)
	if p.parentId == "" {
		list, err = p.store.ListComments(ctx, p.postId)
	} else {
		list, err = p.store.ListReplies(ctx, p.parentId)
	}
	if err != nil {
		logger.L.Debug("comment list failed",
			zap.String("post_id", p.postId),
			zap.String("parent_id", p.parentId),
			zap.Error(err),
		)
		p.notify.Notify(Notice{Level: NoticeError, Message: "Failed to load comments"})
		return fmt.Errorf("%w: %w", ErrRemoteRequestFailed, err)
	}
	list = sortByCreation(list)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded && prevLen >= 0 && p.visible >= prevLen {
		p.visible++
	}
	p.loaded = true
	p.comments = list
	for id := range p.replies {
		if p.indexOf(id) < 0 {
			delete(p.replies, id)
		}
	}
	return nil
}

func (p *Pager) fail(op string, err error) {
	logger.L.Debug(op+" failed",
		zap.String("post_id", p.postId),
		zap.String("parent_id", p.parentId),
		zap.Error(err),
	)
	p.notify.Notify(Notice{Level: NoticeError, Message: genericFailure})
}

// sortByCreation orders oldest first. Comments without a timestamp yet go
// last and keep their relative order.
func sortByCreation(list []Comment) []Comment {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b Comment) int {
		switch {
		case a.CreatedAt == b.CreatedAt:
			return 0
		case a.CreatedAt == 0:
			return 1
		case b.CreatedAt == 0:
			return -1
		}
		return cmp.Compare(a.CreatedAt, b.CreatedAt)
	})
	return out
}
