package posts

import (
	"context"

	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ExpectedCount derives the counters from the reaction map and the actual
// number of comments. Shares have no backing collection and are kept.
func (p *Post) ExpectedCount(comments int64) (Count, int64) {
	c := Count{
		Like:    int64(len(p.Reactions)),
		Comment: comments,
		Share:   p.Count.Share,
	}
	return c, c.Like*ReactionScore + c.Comment*CommentScore
}

// Reconcile repairs the counters of one post. It reports whether anything
// had drifted. The write only lands if the counters still hold the values
// that were read, a post changed in between is left for the next run.
func (p *Post) Reconcile(ctx context.Context) (bool, error) {
	comments, err := db.Comments.CountDocuments(ctx, bson.M{"post_id": p.Id})
	if err != nil {
		return false, err
	}

	count, score := p.ExpectedCount(comments)
	if count == p.Count && score == p.Score {
		return false, nil
	}

	filter, update := p.repairUpdate(count, score)
	res, err := db.Posts.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		logger.L.Debug("post changed during reconcile, skipping", zap.Int64("post", p.Id))
		return false, nil
	}
	p.Count, p.Score = count, score
	return true, nil
}

// repairUpdate matches the post only while its counters are unchanged since
// p was read. Shares have no backing collection so they are only matched.
func (p *Post) repairUpdate(count Count, score int64) (bson.M, bson.M) {
	filter := bson.M{
		"_id":           p.Id,
		"count.like":    p.Count.Like,
		"count.comment": p.Count.Comment,
		"count.share":   p.Count.Share,
		"score":         p.Score,
	}
	update := bson.M{"$set": bson.M{
		"count.like":    count.Like,
		"count.comment": count.Comment,
		"score":         score,
	}}
	return filter, update
}

// ReconcileAll walks every post and repairs drifted counters, returning how
// many were fixed.
func ReconcileAll(ctx context.Context) (int, error) {
	cur, err := db.Posts.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	fixed := 0
	for cur.Next(ctx) {
		var p Post
		if err := cur.Decode(&p); err != nil {
			return fixed, err
		}
		drifted, err := p.Reconcile(ctx)
		if err != nil {
			return fixed, err
		}
		if drifted {
			fixed++
		}
	}
	return fixed, cur.Err()
}

// CountSince counts posts created at or after ts (unix millis).
func CountSince(ctx context.Context, ts int64) (int64, error) {
	return db.Posts.CountDocuments(ctx, bson.M{"_id": bson.M{"$gte": feedid.GenIdForTs(ts)}})
}
