package chatmessage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-pirateborg/internal/redis"
)

const (
	// Key pattern: chat_message:{id}
	messageKeyPrefix = "chat_message:"
	// Key pattern: chat_message:{id}:flags, one hash field per scope.key
	flagsKeySuffix = ":flags"
	// Sorted set of message ids scored by creation time
	messageIndexKey = "chat_messages"
)

// RedisConfig holds the configuration for the Redis repository
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedisRepository creates a new Redis repository for chat messages
func NewRedisRepository(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

// Create stores the message document and its index entry in one transaction
func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	msg := cloneMessage(input.Message)
	now := r.clock.Now()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal chat message")
	}

	key := r.messageKey(msg.ID)
	err = r.client.Watch(ctx, func(tx *redisclient.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return errors.Wrapf(err, "failed to check chat message in Redis")
		}
		if n > 0 {
			return errors.AlreadyExistsf("chat message %s already exists", msg.ID)
		}

		// The document and its index entry commit together
		_, err = tx.TxPipelined(ctx, func(pipe redisclient.Pipeliner) error {
			pipe.Set(ctx, key, msgJSON, 0)
			pipe.ZAdd(ctx, messageIndexKey, redisclient.Z{
				Score:  float64(now.UnixNano()),
				Member: msg.ID,
			})
			return nil
		})
		return err
	}, key)
	if err == redisclient.TxFailedErr {
		return nil, errors.AlreadyExistsf("chat message %s already exists", msg.ID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to store chat message in Redis")
	}

	return &CreateOutput{Message: msg}, nil
}

// Get retrieves a message document
func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errMessageIDEmpty)
	}

	msg, err := r.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Message: msg}, nil
}

// List reads the index oldest first
func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	start := int64(0)
	if input.Limit > 0 {
		start = -int64(input.Limit)
	}

	ids, err := r.client.ZRange(ctx, messageIndexKey, start, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list chat messages")
	}

	out := &ListOutput{Messages: make([]*ChatMessage, 0, len(ids))}
	for _, id := range ids {
		msg, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		out.Messages = append(out.Messages, msg)
	}
	return out, nil
}

// GetFlag reads one hash field of the message flags
func (r *redisRepository) GetFlag(ctx context.Context, input GetFlagInput) (*GetFlagOutput, error) {
	if err := validateFlag(input.MessageID, input.Scope, input.Key); err != nil {
		return nil, err
	}
	if err := r.ensureExists(ctx, input.MessageID); err != nil {
		return nil, err
	}

	value, err := r.client.HGet(ctx, r.flagsKey(input.MessageID), flagField(input.Scope, input.Key)).Result()
	if err != nil {
		if err == redisclient.Nil {
			return &GetFlagOutput{}, nil
		}
		return nil, errors.Wrapf(err, "failed to get flag from Redis")
	}
	return &GetFlagOutput{Value: json.RawMessage(value), Found: true}, nil
}

// SetFlag replaces one hash field of the message flags
func (r *redisRepository) SetFlag(ctx context.Context, input SetFlagInput) (*SetFlagOutput, error) {
	if err := validateFlag(input.MessageID, input.Scope, input.Key); err != nil {
		return nil, err
	}
	if !json.Valid(input.Value) {
		return nil, errors.InvalidArgumentf("flag %s is not valid JSON", flagField(input.Scope, input.Key))
	}
	if err := r.ensureExists(ctx, input.MessageID); err != nil {
		return nil, err
	}

	err := r.client.HSet(ctx, r.flagsKey(input.MessageID), flagField(input.Scope, input.Key), string(input.Value)).Err()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to store flag in Redis")
	}
	return &SetFlagOutput{}, nil
}

// UpdateContent rewrites the message document with new content
func (r *redisRepository) UpdateContent(ctx context.Context, input UpdateContentInput) (*UpdateContentOutput, error) {
	if input.MessageID == "" {
		return nil, errors.InvalidArgument(errMessageIDEmpty)
	}

	msg, err := r.load(ctx, input.MessageID)
	if err != nil {
		return nil, err
	}
	msg.Content = input.Content
	msg.UpdatedAt = r.clock.Now()

	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal chat message")
	}
	if err := r.client.Set(ctx, r.messageKey(msg.ID), msgJSON, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update chat message in Redis")
	}
	return &UpdateContentOutput{Message: msg}, nil
}

func (r *redisRepository) load(ctx context.Context, id string) (*ChatMessage, error) {
	msgJSON, err := r.client.Get(ctx, r.messageKey(id)).Result()
	if err != nil {
		if err == redisclient.Nil {
			return nil, errors.NotFoundf("chat message %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get chat message from Redis")
	}

	var msg ChatMessage
	if err := json.Unmarshal([]byte(msgJSON), &msg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal chat message")
	}
	return &msg, nil
}

func (r *redisRepository) ensureExists(ctx context.Context, id string) error {
	n, err := r.client.Exists(ctx, r.messageKey(id)).Result()
	if err != nil {
		return errors.Wrapf(err, "failed to check chat message in Redis")
	}
	if n == 0 {
		return errors.NotFoundf("chat message %s not found", id)
	}
	return nil
}

func (r *redisRepository) messageKey(id string) string {
	return fmt.Sprintf("%s%s", messageKeyPrefix, id)
}

func (r *redisRepository) flagsKey(id string) string {
	return r.messageKey(id) + flagsKeySuffix
}
