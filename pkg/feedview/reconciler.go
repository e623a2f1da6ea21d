package feedview

import (
	"context"
	"fmt"
	"sync"

	"github.com/socialfeed/server/pkg/logger"
	"github.com/socialfeed/server/pkg/reactions"
	"go.uber.org/zap"
)

// ReactionState is the viewer's reaction to a post and the post's total
// reaction count as currently shown.
type ReactionState struct {
	Current reactions.Kind
	Count   int64
}

// Reconciler owns the optimistic reaction state of one post.
//
// Each SetReaction call takes a sequence number. A failed call only rolls
// back if it is still the latest one, so a late failure can never undo a
// newer optimistic change. Once no call is in flight the shown state is
// always one the server accepted.
type Reconciler struct {
	postId string
	store  ReactionStore
	auth   Identity
	notify Notifier

	mu           sync.Mutex
	state        ReactionState
	confirmed    ReactionState
	confirmedSeq uint64
	seq          uint64
	pending      int

	// set when an older call failed while a newer one was in flight
	staleFailed bool
	onChange    func(ReactionState)
}

func NewReconciler(postId string, initial ReactionState, store ReactionStore, auth Identity, notify Notifier) *Reconciler {
	if initial.Count < 0 {
		initial.Count = 0
	}
	return &Reconciler{
		postId:    postId,
		store:     store,
		auth:      auth,
		notify:    orDiscard(notify),
		state:     initial,
		confirmed: initial,
	}
}

// OnChange registers fn to be called after every local state change. fn
// runs without the reconciler's lock held.
func (r *Reconciler) OnChange(fn func(ReactionState)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

func (r *Reconciler) State() ReactionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Pending reports whether any remote call is still in flight.
func (r *Reconciler) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending > 0
}

// Reset replaces the state with a fresh server snapshot. Calls still in
// flight become stale.
func (r *Reconciler) Reset(s ReactionState) {
	r.mu.Lock()
	r.seq++
	r.state = s
	r.confirmed = s
	r.confirmedSeq = r.seq
	r.staleFailed = false
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}

// SetReaction applies kind locally and then persists it. Choosing the
// current kind again, or None, clears the reaction.
//
// Exactly one remote call is made per invocation that changes state.
// Clearing when there is no reaction is a no-op.
func (r *Reconciler) SetReaction(ctx context.Context, kind reactions.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %w", ErrValidationFailed, reactions.ErrUnknownKind)
	}
	if _, ok := r.auth.CurrentUserId(); !ok {
		r.notify.Notify(Notice{Level: NoticePrompt, Message: "Please sign in to react"})
		return ErrUnauthenticated
	}

	r.mu.Lock()
	prev := r.state
	wasReacted := prev.Current != reactions.None
	clear := kind == reactions.None || kind == prev.Current
	if clear && !wasReacted {
		r.mu.Unlock()
		return nil
	}

	next := prev
	if clear {
		next.Current = reactions.None
		if next.Count > 0 {
			next.Count--
		}
	} else {
		next.Current = kind
		if !wasReacted {
			next.Count++
		}
	}
	r.seq++
	seq := r.seq
	r.pending++
	r.state = next
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(next)
	}

	var err error
	if clear {
		err = r.store.ClearReaction(ctx, r.postId)
	} else {
		err = r.store.SetReaction(ctx, r.postId, kind, wasReacted)
	}

	r.mu.Lock()
	r.pending--
	if err == nil {
		if seq > r.confirmedSeq {
			r.confirmed = next
			r.confirmedSeq = seq
		}
		restored := r.settle()
		current := r.state
		fn = r.onChange
		r.mu.Unlock()

		if restored && fn != nil {
			fn(current)
		}
		return nil
	}

	rolledBack := false
	if seq == r.seq {
		if r.staleFailed {
			// the state this call started from was never persisted
			r.state = r.confirmed
		} else {
			r.state = prev
		}
		rolledBack = true
	} else {
		r.staleFailed = true
	}
	if r.settle() {
		rolledBack = true
	}
	current := r.state
	fn = r.onChange
	r.mu.Unlock()

	logger.L.Debug("reaction update failed",
		zap.String("post_id", r.postId),
		zap.Stringer("kind", kind),
		zap.Bool("rolled_back", rolledBack),
		zap.Error(err),
	)
	if rolledBack && fn != nil {
		fn(current)
	}
	r.notify.Notify(Notice{Level: NoticeError, Message: genericFailure})
	return fmt.Errorf("%w: %w", ErrRemoteRequestFailed, err)
}

// settle runs with mu held after a call resolves. With nothing left in
// flight the shown state becomes the last confirmed one. It reports whether
// that changed the state.
func (r *Reconciler) settle() bool {
	if r.pending > 0 {
		return false
	}
	r.staleFailed = false
	if r.state == r.confirmed {
		return false
	}
	r.state = r.confirmed
	return true
}
