package comments

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/logger"
	"github.com/socialfeed/server/pkg/posts"
	"github.com/socialfeed/server/pkg/structs"
	"github.com/socialfeed/server/pkg/users"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Comment struct {
	Id        feedid.FeedID   `bson:"_id" msgpack:"id"`
	PostId    feedid.FeedID   `bson:"post_id" msgpack:"post_id"`
	UserId    feedid.FeedID   `bson:"user_id" msgpack:"user_id"`
	Content   string          `bson:"content" msgpack:"content"`
	ImageUrl  string          `bson:"image_url,omitempty" msgpack:"image_url,omitempty"`
	ParentId  *feedid.FeedID  `bson:"parent_id" msgpack:"parent_id"` // null for root comments
	Likes     []feedid.FeedID `bson:"likes" msgpack:"likes"`
	UpdatedAt int64           `bson:"updated_at,omitempty" msgpack:"updated_at,omitempty"`
}

// CreateComment inserts a comment and bumps its post's counters in one
// transaction where the deployment supports it. Without transactions a
// failed counter bump is compensated by deleting the comment again.
func CreateComment(
	ctx context.Context,
	postId feedid.FeedID,
	userId feedid.FeedID,
	content string,
	parentId *feedid.FeedID,
	imageUrl string,
) (Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" && imageUrl == "" {
		return Comment{}, ErrEmptyComment
	}

	// Replies only go one level deep and must stay on the same post
	if parentId != nil {
		parent, err := GetComment(ctx, *parentId)
		if err != nil {
			return Comment{}, err
		}
		if parent.PostId != postId {
			return Comment{}, ErrParentMismatch
		}
		if parent.ParentId != nil {
			return Comment{}, ErrNestedReply
		}
	}

	c := Comment{
		Id:       feedid.GenId(),
		PostId:   postId,
		UserId:   userId,
		Content:  content,
		ImageUrl: imageUrl,
		ParentId: parentId,
		Likes:    []feedid.FeedID{},
	}
	atomic, err := db.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := db.Comments.InsertOne(ctx, c); err != nil {
			return err
		}
		return posts.IncrementCommentCount(ctx, postId, 1)
	})
	if err != nil && !atomic {
		compensate(ctx, c.Id)
	}
	return c, err
}

func compensate(ctx context.Context, id feedid.FeedID) {
	if _, err := db.Comments.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		// the reconciliation job will pick the drift up
		logger.L.Error("failed compensating comment insert", zap.Int64("comment", id), zap.Error(err))
	}
}

func GetComment(ctx context.Context, id feedid.FeedID) (Comment, error) {
	var c Comment
	err := db.Comments.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		err = ErrCommentNotFound
	}
	return c, err
}

// ListByPost returns the root comments of a post oldest first.
func ListByPost(ctx context.Context, postId feedid.FeedID) ([]Comment, error) {
	return find(ctx, bson.M{"post_id": postId, "parent_id": nil})
}

// ListReplies returns the replies to a comment oldest first.
func ListReplies(ctx context.Context, parentId feedid.FeedID) ([]Comment, error) {
	return find(ctx, bson.M{"parent_id": parentId})
}

func find(ctx context.Context, query bson.M) ([]Comment, error) {
	comments := []Comment{}
	cur, err := db.Comments.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return comments, err
	}
	if err := cur.All(ctx, &comments); err != nil {
		return comments, err
	}
	SortByCreation(comments)
	return comments, nil
}

// SortByCreation orders comments by creation time. Ids from the same
// millisecond keep their relative order.
func SortByCreation(comments []Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return feedid.Extract(comments[i].Id).Timestamp < feedid.Extract(comments[j].Id).Timestamp
	})
}

func (c *Comment) Update(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" && c.ImageUrl == "" {
		return ErrEmptyComment
	}
	c.Content = content
	c.UpdatedAt = time.Now().UnixMilli()
	_, err := db.Comments.UpdateByID(ctx, c.Id, bson.M{"$set": bson.M{
		"content":    c.Content,
		"updated_at": c.UpdatedAt,
	}})
	return err
}

// Delete removes the comment and its replies and moves the post counters
// down by the number of removed documents.
func (c *Comment) Delete(ctx context.Context) error {
	_, err := db.WithTransaction(ctx, func(ctx context.Context) error {
		res, err := db.Comments.DeleteMany(ctx, bson.M{"$or": bson.A{
			bson.M{"_id": c.Id},
			bson.M{"parent_id": c.Id},
		}})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return ErrCommentNotFound
		}
		err = posts.IncrementCommentCount(ctx, c.PostId, -res.DeletedCount)
		if err == posts.ErrPostNotFound {
			// post already gone, nothing left to count
			return nil
		}
		return err
	})
	return err
}

// SetLiked adds or removes userId from the comment's like set.
func (c *Comment) SetLiked(ctx context.Context, userId feedid.FeedID, liked bool) error {
	update := bson.M{"$pull": bson.M{"likes": userId}}
	if liked {
		update = bson.M{"$addToSet": bson.M{"likes": userId}}
	}
	res := db.Comments.FindOneAndUpdate(ctx, bson.M{"_id": c.Id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	err := res.Decode(c)
	if err == mongo.ErrNoDocuments {
		err = ErrCommentNotFound
	}
	return err
}

func (c *Comment) LikedBy(userId feedid.FeedID) bool {
	for _, id := range c.Likes {
		if id == userId {
			return true
		}
	}
	return false
}

func (c *Comment) CanManage(u *users.User) bool {
	return u != nil && (u.Id == c.UserId || u.IsAdmin())
}

func (c *Comment) V0(author users.User) structs.V0Comment {
	v0c := structs.V0Comment{
		Id:        strconv.FormatInt(c.Id, 10),
		PostId:    strconv.FormatInt(c.PostId, 10),
		UserId:    strconv.FormatInt(c.UserId, 10),
		User:      author.V0(),
		Content:   c.Content,
		ImageUrl:  c.ImageUrl,
		Likes:     make([]string, 0, len(c.Likes)),
		CreatedAt: feedid.Extract(c.Id).Timestamp,
	}
	if c.ParentId != nil {
		parentId := strconv.FormatInt(*c.ParentId, 10)
		v0c.ParentId = &parentId
	}
	for _, id := range c.Likes {
		v0c.Likes = append(v0c.Likes, strconv.FormatInt(id, 10))
	}
	return v0c
}

// HydrateV0 renders comments with their authors resolved through the
// profile cache.
func HydrateV0(ctx context.Context, comments []Comment) ([]structs.V0Comment, error) {
	authorIds := make([]feedid.FeedID, 0, len(comments))
	for _, c := range comments {
		authorIds = append(authorIds, c.UserId)
	}
	authors, err := users.Profiles.GetMany(ctx, authorIds)
	if err != nil {
		return nil, err
	}

	v0comments := make([]structs.V0Comment, 0, len(comments))
	for i := range comments {
		v0comments = append(v0comments, comments[i].V0(authors[comments[i].UserId]))
	}
	return v0comments, nil
}
