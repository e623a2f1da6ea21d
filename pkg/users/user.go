package users

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const defaultAvatarUrl = "https://api.dicebear.com/7.x/avataaars/svg?seed="

type User struct {
	Id            feedid.FeedID `bson:"_id" msgpack:"id"`
	Username      string        `bson:"username" msgpack:"username"`
	LowerUsername string        `bson:"lower_username" msgpack:"-"`
	Name          string        `bson:"name" msgpack:"name"`
	Email         string        `bson:"email,omitempty" msgpack:"-"`
	Avatar        string        `bson:"avatar,omitempty" msgpack:"avatar,omitempty"`
	Role          Role          `bson:"role" msgpack:"role"`
	CreatedAt     int64         `bson:"created_at" msgpack:"created_at"`
	UpdatedAt     int64         `bson:"updated_at,omitempty" msgpack:"updated_at,omitempty"`
}

// UserUpdate holds the fields an admin or the user themselves may change.
// Nil fields are left untouched.
type UserUpdate struct {
	Name   *string
	Email  *string
	Avatar *string
	Role   *Role
}

// Unknown is rendered in place of authors whose account no longer exists.
func Unknown() User {
	return User{
		Username: "unknown",
		Name:     "Unknown User",
		Avatar:   defaultAvatarUrl + "unknown",
		Role:     RoleUser,
	}
}

func GetUser(ctx context.Context, id feedid.FeedID) (User, error) {
	var user User
	err := db.Users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		err = ErrUserNotFound
	}
	return user, err
}

func GetUserByUsername(ctx context.Context, username string) (User, error) {
	var user User
	err := db.Users.FindOne(ctx, bson.M{"lower_username": strings.ToLower(username)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		err = ErrUserNotFound
	}
	return user, err
}

func UsernameTaken(ctx context.Context, username string) (bool, error) {
	opts := options.Count().SetLimit(1)
	count, err := db.Users.CountDocuments(ctx, bson.M{"lower_username": strings.ToLower(username)}, opts)
	return count > 0, err
}

// ListUsers returns users newest first.
func ListUsers(ctx context.Context, skip int64, limit int64) ([]User, error) {
	users := []User{}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := db.Users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return users, err
	}
	err = cur.All(ctx, &users)
	return users, err
}

func (u *User) Update(ctx context.Context, upd UserUpdate) error {
	set := bson.M{}
	if upd.Name != nil {
		u.Name = *upd.Name
		set["name"] = u.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
		set["email"] = u.Email
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
		set["avatar"] = u.Avatar
	}
	if upd.Role != nil {
		u.Role = *upd.Role
		set["role"] = u.Role
	}
	if len(set) == 0 {
		return nil
	}
	u.UpdatedAt = time.Now().UnixMilli()
	set["updated_at"] = u.UpdatedAt

	_, err := db.Users.UpdateByID(ctx, u.Id, bson.M{"$set": set})
	return err
}

// Delete removes the profile, the account and every session. Posts and
// comments stay and render with the Unknown author.
func (u *User) Delete(ctx context.Context) error {
	if _, err := db.Users.DeleteOne(ctx, bson.M{"_id": u.Id}); err != nil {
		return err
	}
	if _, err := db.Accounts.DeleteOne(ctx, bson.M{"_id": u.Id}); err != nil {
		return err
	}
	_, err := db.AccSessions.DeleteMany(ctx, bson.M{"user": u.Id})
	return err
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) V0() structs.V0User {
	avatar := u.Avatar
	if avatar == "" {
		avatar = defaultAvatarUrl + u.Username
	}
	v0u := structs.V0User{
		Id:       strconv.FormatInt(u.Id, 10),
		Username: u.Username,
		Name:     u.Name,
		Avatar:   avatar,
		Role:     string(u.Role),
	}
	if u.Id == 0 {
		v0u.Id = ""
	}
	if u.CreatedAt != 0 {
		v0u.CreatedAt = &u.CreatedAt
	}
	return v0u
}
