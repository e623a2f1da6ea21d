package posts

import (
	"context"
	"strconv"

	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/reactions"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetReaction records userId's reaction. The counter only moves when the
// user had no reaction before, switching kinds leaves it alone. Whether the
// user had reacted is read from the document, not trusted from the client.
func (p *Post) SetReaction(ctx context.Context, userId feedid.FeedID, kind reactions.Kind) error {
	if kind == reactions.None || !kind.Valid() {
		return ErrInvalidReaction
	}
	field := reactionField(userId)
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	// First reaction from this user
	res := db.Posts.FindOneAndUpdate(
		ctx,
		bson.M{"_id": p.Id, field: bson.M{"$exists": false}},
		bson.M{
			"$set":      bson.M{field: kind},
			"$addToSet": bson.M{"likes": userId},
			"$inc":      bson.M{"count.like": 1, "score": ReactionScore},
		},
		after,
	)
	if err := res.Decode(p); err != mongo.ErrNoDocuments {
		return err
	}

	// Switching between kinds
	res = db.Posts.FindOneAndUpdate(
		ctx,
		bson.M{"_id": p.Id},
		bson.M{"$set": bson.M{field: kind}},
		after,
	)
	return decodeUpdated(res, p)
}

// ClearReaction removes userId's reaction. Clearing when there is none is a
// no-op that still refreshes p.
func (p *Post) ClearReaction(ctx context.Context, userId feedid.FeedID) error {
	field := reactionField(userId)

	res := db.Posts.FindOneAndUpdate(
		ctx,
		bson.M{"_id": p.Id, field: bson.M{"$exists": true}},
		bson.M{
			"$unset": bson.M{field: ""},
			"$pull":  bson.M{"likes": userId},
			"$inc":   bson.M{"count.like": -1, "score": -ReactionScore},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := res.Decode(p); err != mongo.ErrNoDocuments {
		return err
	}

	refreshed, err := GetPost(ctx, p.Id)
	if err != nil {
		return err
	}
	*p = refreshed
	return nil
}

// ReactionBreakdown counts reactions per kind name.
func (p *Post) ReactionBreakdown() map[string]int64 {
	breakdown := make(map[string]int64, len(reactions.All))
	for _, kind := range reactions.All {
		breakdown[kind.String()] = 0
	}
	for _, kind := range p.Reactions {
		if kind != reactions.None {
			breakdown[kind.String()]++
		}
	}
	return breakdown
}

func reactionField(userId feedid.FeedID) string {
	return "reactions." + strconv.FormatInt(userId, 10)
}
