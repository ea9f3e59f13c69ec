package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/msgboard/msgboard/internal/model"
)

// Cache key prefixes.
const (
	userKeyPrefix       = "user:"
	messageKeyPrefix    = "message:"
	generationKeyPrefix = "gen:"
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// setIfGenerationScript stores an entry only while the entity's generation
// still equals the one the caller read before loading it. A missing
// generation key counts as generation 0.
//
// KEYS[1] = entry key
// KEYS[2] = generation key
// ARGV[1] = expected generation
// ARGV[2] = encoded entry
// ARGV[3] = ttl in milliseconds
var setIfGenerationScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if not current then
    current = '0'
end
if current ~= ARGV[1] then
    return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// GetUser retrieves a cached user with its messages.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetUser(ctx context.Context, id string) (*model.UserWithMessages, error) {
	var user model.UserWithMessages
	if err := c.getJSON(ctx, userKey(id), &user); err != nil {
		return nil, err
	}
	if user.Messages == nil {
		user.Messages = []model.Message{}
	}
	return &user, nil
}

// UserGeneration returns the invalidation counter for a user.
func (c *Cache) UserGeneration(ctx context.Context, id string) (int64, error) {
	return c.generation(ctx, userKey(id))
}

// SetUser stores a user with its messages unless the user was invalidated
// after gen was read.
func (c *Cache) SetUser(ctx context.Context, user *model.UserWithMessages, gen int64) error {
	return c.setJSON(ctx, userKey(user.ID), user, gen)
}

// InvalidateUser removes a cached user and bumps its generation.
func (c *Cache) InvalidateUser(ctx context.Context, id string) error {
	if err := c.invalidate(ctx, userKey(id)); err != nil {
		return fmt.Errorf("failed to invalidate user: %w", err)
	}
	return nil
}

// GetMessage retrieves a cached message with its author.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetMessage(ctx context.Context, id string) (*model.MessageWithUser, error) {
	var message model.MessageWithUser
	if err := c.getJSON(ctx, messageKey(id), &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// MessageGeneration returns the invalidation counter for a message.
func (c *Cache) MessageGeneration(ctx context.Context, id string) (int64, error) {
	return c.generation(ctx, messageKey(id))
}

// SetMessage stores a message with its author unless the message was
// invalidated after gen was read.
func (c *Cache) SetMessage(ctx context.Context, message *model.MessageWithUser, gen int64) error {
	return c.setJSON(ctx, messageKey(message.ID), message, gen)
}

// InvalidateMessages removes cached messages and bumps their generations
// in one round trip.
func (c *Cache) InvalidateMessages(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = messageKey(id)
	}

	if err := c.invalidate(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate messages: %w", err)
	}
	return nil
}

func (c *Cache) getJSON(ctx context.Context, key string, dst any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		// Corrupt entry; drop it so the next read repopulates.
		c.client.Del(ctx, key)
		return ErrCacheMiss
	}

	return nil
}

func (c *Cache) setJSON(ctx context.Context, key string, value any, gen int64) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	err = setIfGenerationScript.Run(ctx, c.client,
		[]string{key, generationKey(key)},
		strconv.FormatInt(gen, 10),
		data,
		c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to cache entry: %w", err)
	}

	return nil
}

func (c *Cache) generation(ctx context.Context, key string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

// invalidate deletes the entries and bumps their generations atomically.
// Generation keys outlive the entries they guard by one TTL.
func (c *Cache) invalidate(ctx context.Context, keys ...string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, key := range keys {
			pipe.Incr(ctx, generationKey(key))
			pipe.PExpire(ctx, generationKey(key), 2*c.ttl)
		}
		return nil
	})
	return err
}

func userKey(id string) string {
	return userKeyPrefix + id
}

func messageKey(id string) string {
	return messageKeyPrefix + id
}

func generationKey(key string) string {
	return generationKeyPrefix + key
}
