package posts

import (
	"testing"

	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/reactions"
	"github.com/socialfeed/server/pkg/users"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func testPost() Post {
	return Post{
		Id:      feedid.GenId(),
		UserId:  7,
		Content: "hello",
		Count:   Count{Like: 2, Comment: 9, Share: 1},
		Score:   999,
		Reactions: map[string]reactions.Kind{
			"3": reactions.Love,
			"4": reactions.Love,
			"5": reactions.Sad,
		},
	}
}

func TestViewerReaction(t *testing.T) {
	p := testPost()
	viewer := feedid.FeedID(5)
	other := feedid.FeedID(6)

	assert.Equal(t, reactions.Sad, p.ViewerReaction(&viewer))
	assert.Equal(t, reactions.None, p.ViewerReaction(&other))
	assert.Equal(t, reactions.None, p.ViewerReaction(nil))
}

func TestReactionBreakdown(t *testing.T) {
	p := testPost()
	breakdown := p.ReactionBreakdown()

	assert.Len(t, breakdown, len(reactions.All))
	assert.Equal(t, int64(2), breakdown["love"])
	assert.Equal(t, int64(1), breakdown["sad"])
	assert.Equal(t, int64(0), breakdown["angry"])
}

func TestExpectedCount(t *testing.T) {
	p := testPost()
	count, score := p.ExpectedCount(4)

	assert.Equal(t, Count{Like: 3, Comment: 4, Share: 1}, count)
	assert.Equal(t, int64(3*ReactionScore+4*CommentScore), score)
}

func TestCanManage(t *testing.T) {
	p := testPost()

	assert.True(t, p.CanManage(&users.User{Id: 7}))
	assert.True(t, p.CanManage(&users.User{Id: 8, Role: users.RoleAdmin}))
	assert.False(t, p.CanManage(&users.User{Id: 8, Role: users.RoleUser}))
	assert.False(t, p.CanManage(nil))
}

func TestV0(t *testing.T) {
	p := testPost()
	viewer := feedid.FeedID(3)

	v0p := p.V0(users.User{Id: 7, Username: "tnix", Name: "Tnix"}, &viewer)
	assert.Equal(t, "7", v0p.UserId)
	assert.Equal(t, "tnix", v0p.User.Username)
	assert.Equal(t, reactions.Love, v0p.Actions.Current)
	assert.Equal(t, []string{}, v0p.ImageUrls)
	assert.Equal(t, feedid.Extract(p.Id).Timestamp, v0p.CreatedAt)
}

func TestRepairUpdateMatchesReadCounters(t *testing.T) {
	read := testPost()
	count, score := read.ExpectedCount(4)

	filter, update := read.repairUpdate(count, score)
	assert.Equal(t, bson.M{
		"_id":           read.Id,
		"count.like":    int64(2),
		"count.comment": int64(9),
		"count.share":   int64(1),
		"score":         int64(999),
	}, filter)
	assert.Equal(t, bson.M{"$set": bson.M{
		"count.like":    int64(3),
		"count.comment": int64(4),
		"score":         score,
	}}, update)

	// a reaction landing after the read moves count.like and score, so the
	// stored post no longer matches and keeps its newer counters
	stored := read
	stored.Count.Like++
	stored.Score += ReactionScore
	assert.NotEqual(t, stored.Count.Like, filter["count.like"])
	assert.NotEqual(t, stored.Score, filter["score"])
}
