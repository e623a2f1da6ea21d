package packets

type Hello struct {
	SessionId    string `json:"session_id" msgpack:"session_id"`
	PingInterval int64  `json:"ping_interval" msgpack:"ping_interval"`
}
