package rdb

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Channel every realtime event is published on.
const EventsChannel = "events"

var ErrNotInitialized = errors.New("redis client not initialized")

var Client *redis.Client

func Init(uri string) error {
	rdbOpts, err := redis.ParseURL(uri)
	if err != nil {
		return err
	}
	Client = redis.NewClient(rdbOpts)

	return Client.Ping(context.Background()).Err()
}

// Publish sends a raw payload to the events channel.
func Publish(ctx context.Context, payload []byte) error {
	if Client == nil {
		return ErrNotInitialized
	}
	return Client.Publish(ctx, EventsChannel, payload).Err()
}

func Subscribe(ctx context.Context) (*redis.PubSub, error) {
	if Client == nil {
		return nil, ErrNotInitialized
	}
	return Client.Subscribe(ctx, EventsChannel), nil
}
