package events

import (
	"testing"

	"github.com/socialfeed/server/pkg/reactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestEncodeDecode(t *testing.T) {
	payload, err := Encode(OpPostReaction, &PostReaction{
		PostId: "10",
		UserId: "3",
		Kind:   reactions.Haha,
		Count:  11,
	})
	require.NoError(t, err)

	op, body, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, OpPostReaction, op)

	var ev PostReaction
	require.NoError(t, msgpack.Unmarshal(body, &ev))
	assert.Equal(t, reactions.Haha, ev.Kind)
	assert.Equal(t, int64(11), ev.Count)
}

func TestDecodeEmpty(t *testing.T) {
	_, _, err := Decode(nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}
