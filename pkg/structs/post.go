package structs

import "github.com/socialfeed/server/pkg/reactions"

type V0Post struct {
	Id        string        `json:"id" msgpack:"id"`
	Content   string        `json:"content" msgpack:"content"`
	ImageUrls []string      `json:"image_urls" msgpack:"image_urls"`
	CreatedAt int64         `json:"created_at" msgpack:"created_at"`
	UpdatedAt *int64        `json:"updated_at,omitempty" msgpack:"updated_at,omitempty"`
	UserId    string        `json:"user_id" msgpack:"user_id"`
	User      V0User        `json:"user" msgpack:"user"`
	Count     V0PostCount   `json:"count" msgpack:"count"`
	Actions   V0PostActions `json:"actions" msgpack:"actions"`
	Score     int64         `json:"score" msgpack:"score"`
}

type V0PostCount struct {
	Like    int64 `json:"like" msgpack:"like"`
	Comment int64 `json:"comment" msgpack:"comment"`
	Share   int64 `json:"share" msgpack:"share"`
}

// V0PostActions is the requesting viewer's own state on the post.
type V0PostActions struct {
	Current reactions.Kind `json:"current" msgpack:"current"`
}

type V0PostAnalytics struct {
	PostId    string           `json:"post_id"`
	Reactions map[string]int64 `json:"reactions"`
	Count     V0PostCount      `json:"count"`
	Score     int64            `json:"score"`
}
