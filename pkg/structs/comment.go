package structs

type V0Comment struct {
	Id        string   `json:"id" msgpack:"id"`
	PostId    string   `json:"post_id" msgpack:"post_id"`
	UserId    string   `json:"user_id" msgpack:"user_id"`
	User      V0User   `json:"user" msgpack:"user"`
	Content   string   `json:"content" msgpack:"content"`
	ImageUrl  string   `json:"image_url,omitempty" msgpack:"image_url,omitempty"`
	ParentId  *string  `json:"parent_id,omitempty" msgpack:"parent_id,omitempty"`
	Likes     []string `json:"likes" msgpack:"likes"`
	CreatedAt int64    `json:"created_at" msgpack:"created_at"`
}
