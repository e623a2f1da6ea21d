package posts

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/reactions"
	"github.com/socialfeed/server/pkg/structs"
	"github.com/socialfeed/server/pkg/users"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MaxImages = 4

	// Score weights, the feed ranks by score within a page.
	ReactionScore = 1
	CommentScore  = 3
)

type Count struct {
	Like    int64 `bson:"like" msgpack:"like"`
	Comment int64 `bson:"comment" msgpack:"comment"`
	Share   int64 `bson:"share" msgpack:"share"`
}

type Post struct {
	Id        feedid.FeedID   `bson:"_id" msgpack:"id"`
	UserId    feedid.FeedID   `bson:"user_id" msgpack:"user_id"`
	Content   string          `bson:"content" msgpack:"content"`
	ImageUrls []string        `bson:"image_urls,omitempty" msgpack:"image_urls,omitempty"`
	Count     Count           `bson:"count" msgpack:"count"`
	Score     int64           `bson:"score" msgpack:"score"`
	Likes     []feedid.FeedID `bson:"likes" msgpack:"likes"`

	// user id -> reaction kind
	Reactions map[string]reactions.Kind `bson:"reactions" msgpack:"reactions"`

	UpdatedAt int64 `bson:"updated_at,omitempty" msgpack:"updated_at,omitempty"`
}

func CreatePost(ctx context.Context, userId feedid.FeedID, content string, imageUrls []string) (Post, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(imageUrls) == 0 {
		return Post{}, ErrEmptyPost
	}
	if len(imageUrls) > MaxImages {
		return Post{}, ErrTooManyImages
	}

	p := Post{
		Id:        feedid.GenId(),
		UserId:    userId,
		Content:   content,
		ImageUrls: imageUrls,
		Likes:     []feedid.FeedID{},
		Reactions: map[string]reactions.Kind{},
	}
	if _, err := db.Posts.InsertOne(ctx, p); err != nil {
		return p, err
	}

	return p, nil
}

func GetPost(ctx context.Context, id feedid.FeedID) (Post, error) {
	var p Post
	err := db.Posts.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		err = ErrPostNotFound
	}
	return p, err
}

// GetPosts returns posts newest first, optionally only those by authorId.
func GetPosts(ctx context.Context, authorId *feedid.FeedID, paginationOpts PaginationOpts) ([]Post, error) {
	posts := []Post{}

	// Build query
	query := bson.M{}
	if authorId != nil {
		query["user_id"] = *authorId
	}
	idRange := bson.M{}
	if beforeId := paginationOpts.BeforeId(); beforeId != nil {
		idRange["$lt"] = *beforeId
	}
	if afterId := paginationOpts.AfterId(); afterId != nil {
		idRange["$gt"] = *afterId
	}
	if len(idRange) > 0 {
		query["_id"] = idRange
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(paginationOpts.Skip()).
		SetLimit(paginationOpts.Limit())
	cur, err := db.Posts.Find(ctx, query, opts)
	if err != nil {
		return posts, err
	}
	err = cur.All(ctx, &posts)
	return posts, err
}

func (p *Post) Update(ctx context.Context, content *string, imageUrls *[]string) error {
	set := bson.M{}
	if content != nil {
		p.Content = strings.TrimSpace(*content)
		set["content"] = p.Content
	}
	if imageUrls != nil {
		if len(*imageUrls) > MaxImages {
			return ErrTooManyImages
		}
		p.ImageUrls = *imageUrls
		set["image_urls"] = p.ImageUrls
	}
	if len(set) == 0 {
		return nil
	}
	if p.Content == "" && len(p.ImageUrls) == 0 {
		return ErrEmptyPost
	}
	p.UpdatedAt = time.Now().UnixMilli()
	set["updated_at"] = p.UpdatedAt

	_, err := db.Posts.UpdateByID(ctx, p.Id, bson.M{"$set": set})
	return err
}

// Delete removes the post together with its comments and replies.
func (p *Post) Delete(ctx context.Context) error {
	_, err := db.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := db.Posts.DeleteOne(ctx, bson.M{"_id": p.Id}); err != nil {
			return err
		}
		_, err := db.Comments.DeleteMany(ctx, bson.M{"post_id": p.Id})
		return err
	})
	return err
}

func (p *Post) Share(ctx context.Context) error {
	res := db.Posts.FindOneAndUpdate(
		ctx,
		bson.M{"_id": p.Id},
		bson.M{"$inc": bson.M{"count.share": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return decodeUpdated(res, p)
}

// IncrementCommentCount moves the comment counter and score by delta
// comments. It runs inside the caller's transaction when ctx carries one.
func IncrementCommentCount(ctx context.Context, postId feedid.FeedID, delta int64) error {
	res, err := db.Posts.UpdateByID(ctx, postId, bson.M{"$inc": bson.M{
		"count.comment": delta,
		"score":         delta * CommentScore,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (p *Post) ViewerReaction(viewerId *feedid.FeedID) reactions.Kind {
	if viewerId == nil {
		return reactions.None
	}
	return p.Reactions[strconv.FormatInt(*viewerId, 10)]
}

func (p *Post) CanManage(u *users.User) bool {
	return u != nil && (u.Id == p.UserId || u.IsAdmin())
}

func (p *Post) V0(author users.User, viewerId *feedid.FeedID) structs.V0Post {
	imageUrls := p.ImageUrls
	if imageUrls == nil {
		imageUrls = []string{}
	}
	v0p := structs.V0Post{
		Id:        strconv.FormatInt(p.Id, 10),
		Content:   p.Content,
		ImageUrls: imageUrls,
		CreatedAt: feedid.Extract(p.Id).Timestamp,
		UserId:    strconv.FormatInt(p.UserId, 10),
		User:      author.V0(),
		Count: structs.V0PostCount{
			Like:    p.Count.Like,
			Comment: p.Count.Comment,
			Share:   p.Count.Share,
		},
		Actions: structs.V0PostActions{Current: p.ViewerReaction(viewerId)},
		Score:   p.Score,
	}
	if p.UpdatedAt != 0 {
		v0p.UpdatedAt = &p.UpdatedAt
	}
	return v0p
}

// HydrateV0 renders posts with their authors resolved through the profile cache.
func HydrateV0(ctx context.Context, posts []Post, viewerId *feedid.FeedID) ([]structs.V0Post, error) {
	authorIds := make([]feedid.FeedID, 0, len(posts))
	for _, p := range posts {
		authorIds = append(authorIds, p.UserId)
	}
	authors, err := users.Profiles.GetMany(ctx, authorIds)
	if err != nil {
		return nil, err
	}

	v0posts := make([]structs.V0Post, 0, len(posts))
	for i := range posts {
		v0posts = append(v0posts, posts[i].V0(authors[posts[i].UserId], viewerId))
	}
	return v0posts, nil
}

func decodeUpdated(res *mongo.SingleResult, p *Post) error {
	err := res.Decode(p)
	if err == mongo.ErrNoDocuments {
		err = ErrPostNotFound
	}
	return err
}
