package events

import "github.com/socialfeed/server/pkg/structs"

type UpdateUser struct {
	User structs.V0User `msgpack:"user"`
}

type DeleteUser struct {
	UserId string `msgpack:"user_id"`
}
