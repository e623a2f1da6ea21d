package feedview

import (
	"context"
	"testing"

	"github.com/socialfeed/server/pkg/reactions"
	"github.com/socialfeed/server/pkg/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthStateSubscribe(t *testing.T) {
	auth := NewAuthState()
	_, ok := auth.CurrentUserId()
	assert.False(t, ok)

	var seen []string
	unsubscribe := auth.Subscribe(func(userId string) { seen = append(seen, userId) })

	auth.SignIn("u1")
	auth.SignIn("u1")
	auth.SignOut()
	unsubscribe()
	auth.SignIn("u2")

	assert.Equal(t, []string{"u1", ""}, seen)
	userId, ok := auth.CurrentUserId()
	assert.True(t, ok)
	assert.Equal(t, "u2", userId)
}

func TestOpenPost(t *testing.T) {
	store := newMemoryStore("p1")
	store.post = structs.V0Post{
		Id:      "p1",
		Count:   structs.V0PostCount{Like: 4, Comment: 3},
		Actions: structs.V0PostActions{Current: reactions.Haha},
	}
	store.seed(3)
	auth := NewAuthState()
	auth.SignIn("u1")
	ctx := context.Background()

	v, err := OpenPost(ctx, "p1", store, nil, auth, nil)
	require.NoError(t, err)
	defer v.Close()

	assert.Equal(t, ReactionState{Current: reactions.Haha, Count: 4}, v.Reactions.State())
	assert.Equal(t, 3, v.Comments.Len())
	assert.False(t, v.SessionChanged())

	auth.SignOut()
	assert.True(t, v.SessionChanged())
	require.ErrorIs(t, v.Reactions.SetReaction(ctx, reactions.Like), ErrUnauthenticated)

	store.post.Actions.Current = reactions.None
	require.NoError(t, v.Refresh(ctx))
	assert.False(t, v.SessionChanged())
	assert.Equal(t, ReactionState{Current: reactions.None, Count: 4}, v.Reactions.State())
}

func TestOpenPostFailure(t *testing.T) {
	store := newMemoryStore("p1")
	store.failNext("GetPost")
	notices := &recordedNotices{}

	_, err := OpenPost(context.Background(), "p1", store, nil, NewAuthState(), notices)
	require.ErrorIs(t, err, ErrRemoteRequestFailed)
	assert.Equal(t, []NoticeLevel{NoticeError}, notices.levels())
}
