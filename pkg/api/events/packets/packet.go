package packets

// Packet is what clients receive. Nonce increases per server and lets a
// reconnecting client ask for what it missed.
type Packet struct {
	Cmd   string      `json:"cmd" msgpack:"cmd"`
	Val   interface{} `json:"val,omitempty" msgpack:"val,omitempty"`
	Nonce string      `json:"nonce,omitempty" msgpack:"nonce,omitempty"`
}
