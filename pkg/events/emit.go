package events

import (
	"context"
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/socialfeed/server/pkg/logger"
	"github.com/socialfeed/server/pkg/rdb"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

var ErrEmptyPayload = errors.New("empty event payload")

// Encode prefixes the msgpack encoded event with its op code.
func Encode(op uint8, ev interface{}) ([]byte, error) {
	marshaled, err := msgpack.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return append([]byte{op}, marshaled...), nil
}

// Decode splits a published payload into its op code and body.
func Decode(payload []byte) (uint8, []byte, error) {
	if len(payload) == 0 {
		return 0, nil, ErrEmptyPayload
	}
	return payload[0], payload[1:], nil
}

// Emit publishes an event. Failures are logged and reported but never
// returned, a missed realtime event doesn't fail the write that caused it.
func Emit(ctx context.Context, op uint8, ev interface{}) {
	payload, err := Encode(op, ev)
	if err == nil {
		err = rdb.Publish(ctx, payload)
	}
	if err != nil && err != rdb.ErrNotInitialized {
		logger.L.Warn("failed publishing event", zap.Uint8("op", op), zap.Error(err))
		sentry.CaptureException(err)
	}
}
