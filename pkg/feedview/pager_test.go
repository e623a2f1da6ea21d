package feedview

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/socialfeed/server/pkg/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func ids(list []Comment) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Id)
	}
	return out
}

func loadedPager(t *testing.T, n int) (*Pager, *memoryStore, *recordedNotices) {
	t.Helper()
	store := newMemoryStore("p1")
	store.seed(n)
	notices := &recordedNotices{}
	p := NewPager("p1", store, &fakeUploader{}, staticIdentity("u1"), notices)
	require.NoError(t, p.Load(context.Background()))
	return p, store, notices
}

func TestPagerInitialWindow(t *testing.T) {
	p, _, _ := loadedPager(t, 4)

	assert.Equal(t, InitialWindow, p.VisibleCount())
	assert.Equal(t, 4, p.Len())
	assert.True(t, p.HasMore())
	if diff := cmp.Diff([]string{"c1", "c2"}, ids(p.Displayed())); diff != "" {
		t.Errorf("displayed mismatch (-want +got):\n%s", diff)
	}
}

func TestPagerAddWhenShowingAll(t *testing.T) {
	p, _, notices := loadedPager(t, 2)
	require.False(t, p.HasMore())

	require.NoError(t, p.Add(context.Background(), NewComment{Content: "third"}))

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 3, p.VisibleCount())
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids(p.Displayed()))
	assert.Equal(t, []NoticeLevel{NoticeSuccess}, notices.levels())
}

func TestPagerAddWhenWindowPartial(t *testing.T) {
	p, _, _ := loadedPager(t, 10)

	require.NoError(t, p.Add(context.Background(), NewComment{Content: "eleventh"}))

	assert.Equal(t, 11, p.Len())
	assert.Equal(t, 2, p.VisibleCount())
	assert.Len(t, p.Displayed(), 2)
}

func TestPagerShowMoreDoesNotFetch(t *testing.T) {
	p, store, _ := loadedPager(t, 10)
	before := store.count("ListComments")

	p.ShowMore()
	assert.Equal(t, InitialWindow+WindowIncrement, p.VisibleCount())
	assert.Len(t, p.Displayed(), 7)

	p.ShowMore()
	assert.Equal(t, 12, p.VisibleCount())
	assert.Len(t, p.Displayed(), 10)
	assert.False(t, p.HasMore())

	assert.Equal(t, before, store.count("ListComments"))
}

func TestPagerRemoveIsLocal(t *testing.T) {
	p, store, _ := loadedPager(t, 5)
	p.ShowMore()
	before := store.count("ListComments")

	require.NoError(t, p.Remove(context.Background(), "c3"))

	assert.Equal(t, []string{"c1", "c2", "c4", "c5"}, ids(p.All()))
	assert.Equal(t, 7, p.VisibleCount())
	assert.Equal(t, before, store.count("ListComments"))
}

func TestPagerRemoveFailureKeepsList(t *testing.T) {
	p, store, notices := loadedPager(t, 3)
	store.failNext("DeleteComment")

	err := p.Remove(context.Background(), "c2")
	require.ErrorIs(t, err, ErrRemoteRequestFailed)
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids(p.All()))
	assert.Equal(t, []NoticeLevel{NoticeError}, notices.levels())
}

func TestPagerUpdateRefreshes(t *testing.T) {
	p, store, _ := loadedPager(t, 2)
	before := store.count("ListComments")

	require.NoError(t, p.Update(context.Background(), "c2", "  edited  "))

	assert.Equal(t, before+1, store.count("ListComments"))
	assert.Equal(t, "edited", p.All()[1].Content)
	assert.Equal(t, 2, p.VisibleCount())
}

func TestPagerRejectsEmptyComment(t *testing.T) {
	p, store, notices := loadedPager(t, 1)

	err := p.Add(context.Background(), NewComment{Content: "   "})
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Zero(t, store.count("CreateComment"))
	assert.Equal(t, []NoticeLevel{NoticeError}, notices.levels())
}

func TestPagerRequiresSignIn(t *testing.T) {
	store := newMemoryStore("p1")
	store.seed(1)
	notices := &recordedNotices{}
	p := NewPager("p1", store, nil, staticIdentity(""), notices)
	require.NoError(t, p.Load(context.Background()))
	ctx := context.Background()

	require.ErrorIs(t, p.Add(ctx, NewComment{Content: "hi"}), ErrUnauthenticated)
	require.ErrorIs(t, p.Remove(ctx, "c1"), ErrUnauthenticated)
	require.ErrorIs(t, p.Update(ctx, "c1", "x"), ErrUnauthenticated)
	require.ErrorIs(t, p.ToggleLike(ctx, "c1"), ErrUnauthenticated)

	assert.Zero(t, store.count("CreateComment"))
	assert.Zero(t, store.count("DeleteComment"))
	assert.Equal(t, []NoticeLevel{NoticePrompt, NoticePrompt, NoticePrompt, NoticePrompt}, notices.levels())
}

func TestPagerAddWithImage(t *testing.T) {
	store := newMemoryStore("p1")
	uploader := &fakeUploader{}
	p := NewPager("p1", store, uploader, staticIdentity("u1"), nil)
	ctx := context.Background()

	err := p.Add(ctx, NewComment{Image: &images.File{Name: "a.png", Type: "image/png", Data: pngData}})
	require.NoError(t, err)
	assert.Equal(t, 1, uploader.uploads)
	assert.Equal(t, "https://img.example/a.png", p.All()[0].ImageUrl)

	err = p.Add(ctx, NewComment{Content: "gif", Image: &images.File{Name: "a.gif", Type: "image/gif", Data: []byte("GIF89a")}})
	require.ErrorIs(t, err, ErrValidationFailed)
	require.ErrorIs(t, err, images.ErrInvalidImageType)
	assert.Equal(t, 1, uploader.uploads)
	assert.Equal(t, 1, store.count("CreateComment"))
}

func TestPagerUploadFailure(t *testing.T) {
	store := newMemoryStore("p1")
	p := NewPager("p1", store, &fakeUploader{err: errBackend}, staticIdentity("u1"), nil)

	err := p.Add(context.Background(), NewComment{Content: "pic", Image: &images.File{Name: "a.png", Type: "image/png", Data: pngData}})
	require.ErrorIs(t, err, ErrRemoteRequestFailed)
	assert.Zero(t, store.count("CreateComment"))
}

func TestPagerToggleLike(t *testing.T) {
	p, store, _ := loadedPager(t, 1)
	ctx := context.Background()

	require.NoError(t, p.ToggleLike(ctx, "c1"))
	assert.Equal(t, []string{"u1"}, p.All()[0].Likes)

	store.failNext("SetCommentLiked")
	require.ErrorIs(t, p.ToggleLike(ctx, "c1"), ErrRemoteRequestFailed)
	assert.Equal(t, []string{"u1"}, p.All()[0].Likes)

	require.NoError(t, p.ToggleLike(ctx, "c1"))
	assert.Empty(t, p.All()[0].Likes)
}

func TestPagerRepliesAreCached(t *testing.T) {
	p, store, _ := loadedPager(t, 2)
	ctx := context.Background()

	require.NoError(t, p.Add(ctx, NewComment{Content: "reply one", ParentId: "c1"}))
	require.NoError(t, p.Add(ctx, NewComment{Content: "reply two", ParentId: "c1"}))
	assert.Equal(t, 2, p.Len())

	thread, err := p.Expand(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, thread.Expanded())
	assert.Equal(t, "c1", thread.ParentId())
	assert.Equal(t, []string{"c3", "c4"}, ids(thread.Displayed()))
	listed := store.count("ListReplies")

	p.Collapse("c1")
	assert.False(t, thread.Expanded())

	again, err := p.Expand(ctx, "c1")
	require.NoError(t, err)
	assert.Same(t, thread, again)
	assert.Equal(t, listed, store.count("ListReplies"))

	require.NoError(t, p.Remove(ctx, "c4"))
	assert.Equal(t, []string{"c3"}, ids(thread.All()))

	require.NoError(t, p.Remove(ctx, "c1"))
	_, ok := p.Replies("c1")
	assert.False(t, ok)
}

func TestPagerNoNestedReplies(t *testing.T) {
	p, _, _ := loadedPager(t, 1)
	ctx := context.Background()

	thread, err := p.Expand(ctx, "c1")
	require.NoError(t, err)

	_, err = thread.Expand(ctx, "c9")
	require.ErrorIs(t, err, ErrValidationFailed)
	require.ErrorIs(t, thread.Add(ctx, NewComment{Content: "deep", ParentId: "c9"}), ErrValidationFailed)
}

func TestPagerLoadFailure(t *testing.T) {
	store := newMemoryStore("p1")
	store.failNext("ListComments")
	notices := &recordedNotices{}
	p := NewPager("p1", store, nil, staticIdentity("u1"), notices)

	require.ErrorIs(t, p.Load(context.Background()), ErrRemoteRequestFailed)
	assert.False(t, p.Loaded())
	assert.Equal(t, []NoticeLevel{NoticeError}, notices.levels())
}

func TestSortByCreation(t *testing.T) {
	in := []Comment{
		{Id: "pending-a"},
		{Id: "late", CreatedAt: 30},
		{Id: "early", CreatedAt: 10},
		{Id: "pending-b"},
		{Id: "tie-1", CreatedAt: 20},
		{Id: "tie-2", CreatedAt: 20},
	}

	got := ids(sortByCreation(in))
	want := []string{"early", "tie-1", "tie-2", "late", "pending-a", "pending-b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "pending-a", in[0].Id)
}
