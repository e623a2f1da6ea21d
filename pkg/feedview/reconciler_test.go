package feedview

import (
	"context"
	"testing"

	"github.com/socialfeed/server/pkg/reactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionRollbackOnFailure(t *testing.T) {
	held := newHeldReactions()
	notices := &recordedNotices{}
	r := NewReconciler("p1", ReactionState{Current: reactions.None, Count: 10}, held, staticIdentity("u1"), notices)

	var changes []ReactionState
	r.OnChange(func(s ReactionState) { changes = append(changes, s) })

	done := make(chan error)
	go func() { done <- r.SetReaction(context.Background(), reactions.Like) }()

	call := <-held.calls
	assert.Equal(t, reactions.Like, call.kind)
	assert.False(t, call.wasReacted)
	assert.Equal(t, ReactionState{Current: reactions.Like, Count: 11}, r.State())
	assert.True(t, r.Pending())

	call.result <- errBackend
	err := <-done

	require.ErrorIs(t, err, ErrRemoteRequestFailed)
	require.ErrorIs(t, err, errBackend)
	assert.Equal(t, ReactionState{Current: reactions.None, Count: 10}, r.State())
	assert.False(t, r.Pending())
	assert.Equal(t, []NoticeLevel{NoticeError}, notices.levels())
	assert.Equal(t, []ReactionState{
		{Current: reactions.Like, Count: 11},
		{Current: reactions.None, Count: 10},
	}, changes)
}

func TestReactionTransitions(t *testing.T) {
	tests := []struct {
		name           string
		initial        ReactionState
		kind           reactions.Kind
		want           ReactionState
		wantOp         string
		wantWasReacted bool
	}{
		{
			name:    "first reaction",
			initial: ReactionState{Current: reactions.None, Count: 3},
			kind:    reactions.Wow,
			want:    ReactionState{Current: reactions.Wow, Count: 4},
			wantOp:  "SetReaction",
		},
		{
			name:           "switch kind keeps count",
			initial:        ReactionState{Current: reactions.Like, Count: 5},
			kind:           reactions.Love,
			want:           ReactionState{Current: reactions.Love, Count: 5},
			wantOp:         "SetReaction",
			wantWasReacted: true,
		},
		{
			name:    "same kind clears",
			initial: ReactionState{Current: reactions.Like, Count: 5},
			kind:    reactions.Like,
			want:    ReactionState{Current: reactions.None, Count: 4},
			wantOp:  "ClearReaction",
		},
		{
			name:    "none clears",
			initial: ReactionState{Current: reactions.Sad, Count: 1},
			kind:    reactions.None,
			want:    ReactionState{Current: reactions.None, Count: 0},
			wantOp:  "ClearReaction",
		},
		{
			name:    "count never goes negative",
			initial: ReactionState{Current: reactions.Angry, Count: 0},
			kind:    reactions.Angry,
			want:    ReactionState{Current: reactions.None, Count: 0},
			wantOp:  "ClearReaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore("p1")
			r := NewReconciler("p1", tt.initial, store, staticIdentity("u1"), nil)

			require.NoError(t, r.SetReaction(context.Background(), tt.kind))
			assert.Equal(t, tt.want, r.State())
			assert.Equal(t, 1, store.count(tt.wantOp))
			assert.Equal(t, 1, store.count("SetReaction")+store.count("ClearReaction"))
			if tt.wantOp == "SetReaction" {
				assert.Equal(t, tt.wantWasReacted, store.reaction.wasReacted)
			}
		})
	}
}

func TestReactionClearWithoutReactionIsNoop(t *testing.T) {
	store := newMemoryStore("p1")
	r := NewReconciler("p1", ReactionState{Count: 7}, store, staticIdentity("u1"), nil)

	require.NoError(t, r.SetReaction(context.Background(), reactions.None))
	assert.Equal(t, ReactionState{Count: 7}, r.State())
	assert.Zero(t, store.count("ClearReaction"))
}

func TestReactionRequiresSignIn(t *testing.T) {
	store := newMemoryStore("p1")
	notices := &recordedNotices{}
	r := NewReconciler("p1", ReactionState{Count: 2}, store, staticIdentity(""), notices)

	err := r.SetReaction(context.Background(), reactions.Like)
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, ReactionState{Count: 2}, r.State())
	assert.Zero(t, store.count("SetReaction"))
	assert.Equal(t, []NoticeLevel{NoticePrompt}, notices.levels())
}

func TestReactionRejectsUnknownKind(t *testing.T) {
	store := newMemoryStore("p1")
	r := NewReconciler("p1", ReactionState{}, store, staticIdentity("u1"), nil)

	err := r.SetReaction(context.Background(), reactions.Kind(42))
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Zero(t, store.count("SetReaction"))
}

func TestStaleFailureDoesNotUndoNewerChange(t *testing.T) {
	held := newHeldReactions()
	r := NewReconciler("p1", ReactionState{Current: reactions.None, Count: 10}, held, staticIdentity("u1"), nil)
	ctx := context.Background()

	first := make(chan error)
	go func() { first <- r.SetReaction(ctx, reactions.Like) }()
	like := <-held.calls

	second := make(chan error)
	go func() { second <- r.SetReaction(ctx, reactions.Love) }()
	love := <-held.calls
	assert.True(t, love.wasReacted)
	assert.Equal(t, ReactionState{Current: reactions.Love, Count: 11}, r.State())

	like.result <- errBackend
	require.ErrorIs(t, <-first, ErrRemoteRequestFailed)
	assert.Equal(t, ReactionState{Current: reactions.Love, Count: 11}, r.State())

	love.result <- nil
	require.NoError(t, <-second)
	assert.Equal(t, ReactionState{Current: reactions.Love, Count: 11}, r.State())
	assert.False(t, r.Pending())
}

func TestLatestFailureAfterStaleFailureRestoresConfirmed(t *testing.T) {
	held := newHeldReactions()
	r := NewReconciler("p1", ReactionState{Current: reactions.None, Count: 10}, held, staticIdentity("u1"), nil)
	ctx := context.Background()

	first := make(chan error)
	go func() { first <- r.SetReaction(ctx, reactions.Like) }()
	like := <-held.calls

	second := make(chan error)
	go func() { second <- r.SetReaction(ctx, reactions.Haha) }()
	haha := <-held.calls

	like.result <- errBackend
	require.Error(t, <-first)
	haha.result <- errBackend
	require.Error(t, <-second)

	assert.Equal(t, ReactionState{Current: reactions.None, Count: 10}, r.State())
}

func TestLatestFailureBeforeOlderFailureRestoresConfirmed(t *testing.T) {
	held := newHeldReactions()
	r := NewReconciler("p1", ReactionState{Current: reactions.None, Count: 10}, held, staticIdentity("u1"), nil)
	ctx := context.Background()

	var changes []ReactionState
	r.OnChange(func(s ReactionState) { changes = append(changes, s) })

	first := make(chan error)
	go func() { first <- r.SetReaction(ctx, reactions.Like) }()
	like := <-held.calls

	second := make(chan error)
	go func() { second <- r.SetReaction(ctx, reactions.Haha) }()
	haha := <-held.calls

	haha.result <- errBackend
	require.ErrorIs(t, <-second, ErrRemoteRequestFailed)
	assert.Equal(t, ReactionState{Current: reactions.Like, Count: 11}, r.State())
	assert.True(t, r.Pending())

	like.result <- errBackend
	require.ErrorIs(t, <-first, ErrRemoteRequestFailed)

	assert.Equal(t, ReactionState{Current: reactions.None, Count: 10}, r.State())
	assert.False(t, r.Pending())
	assert.Equal(t, ReactionState{Current: reactions.None, Count: 10}, changes[len(changes)-1])
}

func TestOlderSuccessSettlesAfterNewerFailures(t *testing.T) {
	held := newHeldReactions()
	r := NewReconciler("p1", ReactionState{Current: reactions.None, Count: 10}, held, staticIdentity("u1"), nil)
	ctx := context.Background()

	results := make(chan error, 3)
	go func() { results <- r.SetReaction(ctx, reactions.Like) }()
	like := <-held.calls
	go func() { results <- r.SetReaction(ctx, reactions.Haha) }()
	haha := <-held.calls
	go func() { results <- r.SetReaction(ctx, reactions.Wow) }()
	wow := <-held.calls

	wow.result <- errBackend
	require.Error(t, <-results)
	assert.Equal(t, ReactionState{Current: reactions.Haha, Count: 11}, r.State())

	haha.result <- errBackend
	require.Error(t, <-results)

	like.result <- nil
	require.NoError(t, <-results)

	assert.Equal(t, ReactionState{Current: reactions.Like, Count: 11}, r.State())
	assert.False(t, r.Pending())
}

func TestResetMakesInFlightCallsStale(t *testing.T) {
	held := newHeldReactions()
	r := NewReconciler("p1", ReactionState{Count: 1}, held, staticIdentity("u1"), nil)

	done := make(chan error)
	go func() { done <- r.SetReaction(context.Background(), reactions.Like) }()
	call := <-held.calls

	r.Reset(ReactionState{Current: reactions.Wow, Count: 8})
	call.result <- errBackend
	require.Error(t, <-done)

	assert.Equal(t, ReactionState{Current: reactions.Wow, Count: 8}, r.State())
}
