package structs

type V0User struct {
	Id       string `json:"id" msgpack:"id"`
	Username string `json:"username" msgpack:"username"`
	Name     string `json:"name" msgpack:"name"`
	Avatar   string `json:"avatar" msgpack:"avatar"`
	Role     string `json:"role" msgpack:"role"`

	Email     *string `json:"email,omitempty" msgpack:"email,omitempty"`
	CreatedAt *int64  `json:"created_at,omitempty" msgpack:"created_at,omitempty"`
}
