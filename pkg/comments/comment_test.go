package comments

import (
	"testing"

	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/users"
	"github.com/stretchr/testify/assert"
)

func idAt(ts int64, increment int64) feedid.FeedID {
	return feedid.GenIdForTs(ts) | increment
}

func TestSortByCreation(t *testing.T) {
	base := feedid.Epoch + 1_000_000
	comments := []Comment{
		{Id: idAt(base+20, 0), Content: "late"},
		{Id: idAt(base, 2), Content: "same ms b"},
		{Id: idAt(base, 1), Content: "same ms a"},
		{Id: idAt(base+10, 0), Content: "middle"},
	}

	SortByCreation(comments)

	got := []string{}
	for _, c := range comments {
		got = append(got, c.Content)
	}
	assert.Equal(t, []string{"same ms b", "same ms a", "middle", "late"}, got)
}

func TestLikedBy(t *testing.T) {
	c := Comment{Likes: []feedid.FeedID{1, 5}}

	assert.True(t, c.LikedBy(5))
	assert.False(t, c.LikedBy(2))
}

func TestV0(t *testing.T) {
	parent := feedid.FeedID(99)
	c := Comment{
		Id:       idAt(feedid.Epoch+5000, 0),
		PostId:   10,
		UserId:   3,
		Content:  "nice",
		ParentId: &parent,
		Likes:    []feedid.FeedID{4},
	}

	v0c := c.V0(users.Unknown())
	assert.Equal(t, "10", v0c.PostId)
	assert.Equal(t, "99", *v0c.ParentId)
	assert.Equal(t, []string{"4"}, v0c.Likes)
	assert.Equal(t, feedid.Epoch+5000, v0c.CreatedAt)
	assert.Equal(t, "Unknown User", v0c.User.Name)
	assert.Equal(t, "", v0c.User.Id)
}

func TestCanManage(t *testing.T) {
	c := Comment{UserId: 3}

	assert.True(t, c.CanManage(&users.User{Id: 3}))
	assert.True(t, c.CanManage(&users.User{Id: 1, Role: users.RoleAdmin}))
	assert.False(t, c.CanManage(&users.User{Id: 1}))
}
