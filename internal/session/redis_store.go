package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore persists sessions in Redis. Keys carry no TTL so sessions
// survive as long as the original in-process table would have.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("intake.internal.session")
	}
	return &RedisStore{redis: client, tracer: tracer}
}

func sessionKey(id string) string {
	return fmt.Sprintf("intake:session:%s", id)
}

// Get loads and decodes a session. Returns ErrNotFound for unknown IDs.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "session.get")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to load %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to decode %s: %w", id, err)
	}
	if sess.Collected == nil {
		sess.Collected = emptyCollected()
	}
	return &sess, nil
}

// Put encodes and stores a session with no expiration.
func (s *RedisStore) Put(ctx context.Context, sess *Session) error {
	ctx, span := s.tracer.Start(ctx, "session.put")
	defer span.End()

	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session: cannot store session without an id")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal %s: %w", sess.ID, err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist %s: %w", sess.ID, err)
	}
	return nil
}

// Delete removes a session key. Unknown IDs are a no-op.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "session.delete")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(id)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to delete %s: %w", id, err)
	}
	return nil
}
