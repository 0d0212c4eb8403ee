package orders

import (
	"context"

	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/redis"
)

type redisSequences struct {
	client *redis.Client
}

// NewRedisSequences returns a Sequences backed by an atomic Redis counter.
func NewRedisSequences(client *redis.Client) (Sequences, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "redis client required")
	}
	return &redisSequences{client: client}, nil
}

func (s *redisSequences) Next(ctx context.Context, name string) (int64, error) {
	return s.client.NextSequence(ctx, name)
}
