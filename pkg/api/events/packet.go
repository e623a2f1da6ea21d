package events

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/socialfeed/server/pkg/api/events/packets"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	FormatJSON int8 = iota
	FormatMsgpack
)

// Packet is a packet encoded once for every format and shared by all
// sessions it is sent to.
type Packet struct {
	Nonce     int64
	CreatedAt time.Time

	JsonEncoded    []byte
	MsgpackEncoded []byte
}

func createPacket(nonce int64, p packets.Packet) (*Packet, error) {
	var encoded = Packet{
		Nonce:     nonce,
		CreatedAt: time.Now(),
	}
	var err error

	p.Nonce = strconv.FormatInt(nonce, 10)

	// json
	encoded.JsonEncoded, err = json.Marshal(p)
	if err != nil {
		return nil, err
	}

	// msgpack
	encoded.MsgpackEncoded, err = msgpack.Marshal(p)
	if err != nil {
		return nil, err
	}

	return &encoded, nil
}

func (p *Packet) encoded(format int8) []byte {
	if format == FormatMsgpack {
		return p.MsgpackEncoded
	}
	return p.JsonEncoded
}
