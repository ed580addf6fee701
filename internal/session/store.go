// Package session owns per-call conversation state and the channel the voice runtime talks to.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/llm"

	"github.com/redis/go-redis/v9"
)

// Store keeps the ordered turns of each open call.
type Store interface {
	// Create starts the history for callID with the greeting turn.
	Create(ctx context.Context, callID string, greeting llm.Message) error
	// Append adds turns to an existing call. It fails with SESSION_NOT_FOUND for unknown calls.
	Append(ctx context.Context, callID string, msgs ...llm.Message) error
	History(ctx context.Context, callID string) ([]llm.Message, error)
	Delete(ctx context.Context, callID string) error
}

// RedisStore keeps each call's history in a Redis list of JSON messages.
type RedisStore struct {
	client     redis.UniversalClient
	prefix     string
	ttl        time.Duration
	maxHistory int
}

func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration, maxHistory int) *RedisStore {
	return &RedisStore{
		client:     client,
		prefix:     prefix,
		ttl:        ttl,
		maxHistory: maxHistory,
	}
}

func (s *RedisStore) key(callID string) string {
	return fmt.Sprintf("%scall:%s:history", s.prefix, callID)
}

func (s *RedisStore) Create(ctx context.Context, callID string, greeting llm.Message) error {
	return s.push(ctx, s.key(callID), greeting)
}

func (s *RedisStore) Append(ctx context.Context, callID string, msgs ...llm.Message) error {
	key := s.key(callID)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return errors.NewSessionStoreError("exists", err)
	}
	if n == 0 {
		return errors.NewSessionNotFoundError(callID)
	}
	return s.push(ctx, key, msgs...)
}

func (s *RedisStore) push(ctx context.Context, key string, msgs ...llm.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return errors.NewSessionStoreError("encode", err)
		}
		values = append(values, string(b))
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		if s.maxHistory > 0 {
			pipe.LTrim(ctx, key, int64(-s.maxHistory), -1)
		}
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return errors.NewSessionStoreError("append", err)
	}
	return nil
}

func (s *RedisStore) History(ctx context.Context, callID string) ([]llm.Message, error) {
	raw, err := s.client.LRange(ctx, s.key(callID), 0, -1).Result()
	if err != nil {
		return nil, errors.NewSessionStoreError("read", err)
	}
	if len(raw) == 0 {
		return nil, errors.NewSessionNotFoundError(callID)
	}

	history := make([]llm.Message, 0, len(raw))
	for _, item := range raw {
		var m llm.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, errors.NewSessionStoreError("decode", err)
		}
		history = append(history, m)
	}
	return history, nil
}

func (s *RedisStore) Delete(ctx context.Context, callID string) error {
	n, err := s.client.Del(ctx, s.key(callID)).Result()
	if err != nil {
		return errors.NewSessionStoreError("delete", err)
	}
	if n == 0 {
		return errors.NewSessionNotFoundError(callID)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
