package users

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/structs"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Sessions expire when they haven't been refreshed for this long.
const SessionLifetime = 21 * 24 * time.Hour

type AccSession struct {
	Id          feedid.FeedID `bson:"_id" msgpack:"_id"`
	UserId      feedid.FeedID `bson:"user" msgpack:"user"`
	IPAddress   string        `bson:"ip" msgpack:"ip"`
	UserAgent   string        `bson:"ua" msgpack:"ua"`
	RefreshedAt int64         `bson:"refreshed" msgpack:"refreshed"`
}

type tokenClaims struct {
	SessionId   feedid.FeedID
	RefreshedAt int64
}

func CreateAccSession(ctx context.Context, userId feedid.FeedID, ipAddress string, userAgent string) (AccSession, error) {
	s := AccSession{
		Id:          feedid.GenId(),
		UserId:      userId,
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
		RefreshedAt: time.Now().UnixMilli(),
	}

	if _, err := db.AccSessions.InsertOne(ctx, s); err != nil {
		return s, err
	}

	return s, nil
}

func GetAccSession(ctx context.Context, id feedid.FeedID) (AccSession, error) {
	var s AccSession
	err := db.AccSessions.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		err = ErrSessionNotFound
	}
	return s, err
}

func GetAccSessionByToken(ctx context.Context, token string) (AccSession, error) {
	claims, err := parseToken(AccSessionSigningKey, token, time.Now())
	if err != nil {
		return AccSession{}, err
	}

	s, err := GetAccSession(ctx, claims.SessionId)
	if err != nil {
		return s, err
	}

	// A refresh rotates the token, older tokens for the session stop working
	if s.RefreshedAt != claims.RefreshedAt {
		return s, ErrTokenExpired
	}

	return s, nil
}

func (s *AccSession) Revoke(ctx context.Context) error {
	_, err := db.AccSessions.DeleteOne(ctx, bson.M{"_id": s.Id})
	return err
}

func (s *AccSession) V0() structs.V0Session {
	return structs.V0Session{
		Id:          strconv.FormatInt(s.Id, 10),
		IPAddress:   s.IPAddress,
		UserAgent:   s.UserAgent,
		RefreshedAt: s.RefreshedAt,
	}
}

func (s *AccSession) Token() (string, error) {
	return signToken(AccSessionSigningKey, tokenClaims{SessionId: s.Id, RefreshedAt: s.RefreshedAt})
}

func signToken(key []byte, c tokenClaims) (string, error) {
	// Claims
	claims, err := msgpack.Marshal([]int64{c.SessionId, c.RefreshedAt})
	if err != nil {
		return "", err
	}

	// Signature
	h := hmac.New(sha256.New, key)
	if _, err := h.Write(claims); err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(claims) + "." + base64.URLEncoding.EncodeToString(h.Sum(nil)), nil
}

func parseToken(key []byte, token string, now time.Time) (tokenClaims, error) {
	var c tokenClaims

	// Split token into claims and signature
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return c, ErrInvalidTokenFormat
	}
	claims, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return c, ErrInvalidTokenFormat
	}
	signature, err := base64.URLEncoding.DecodeString(parts[1])
	if err != nil {
		return c, ErrInvalidTokenFormat
	}

	// Check signature
	h := hmac.New(sha256.New, key)
	if _, err := h.Write(claims); err != nil {
		return c, err
	}
	if !hmac.Equal(signature, h.Sum(nil)) {
		return c, ErrInvalidTokenSignature
	}

	// Decode claims
	var decoded []int64
	if err := msgpack.Unmarshal(claims, &decoded); err != nil || len(decoded) != 2 {
		return c, ErrInvalidTokenFormat
	}
	c.SessionId, c.RefreshedAt = decoded[0], decoded[1]

	if now.Sub(time.UnixMilli(c.RefreshedAt)) > SessionLifetime {
		return c, ErrTokenExpired
	}

	return c, nil
}
