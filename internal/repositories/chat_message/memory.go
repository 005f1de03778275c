package chatmessage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/clock"
)

// MemoryConfig holds the configuration for the in-memory repository
type MemoryConfig struct {
	Clock clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *MemoryConfig) Validate() error {
	if c == nil || c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	return nil
}

type memoryRepository struct {
	mu       sync.RWMutex
	clock    clock.Clock
	order    []string
	messages map[string]*ChatMessage
	flags    map[string]map[string]json.RawMessage
}

// NewMemoryRepository creates a process local repository
func NewMemoryRepository(cfg *MemoryConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &memoryRepository{
		clock:    cfg.Clock,
		messages: make(map[string]*ChatMessage),
		flags:    make(map[string]map[string]json.RawMessage),
	}, nil
}

var _ Repository = (*memoryRepository)(nil)

func (r *memoryRepository) Create(_ context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[input.Message.ID]; ok {
		return nil, errors.AlreadyExistsf("chat message %s already exists", input.Message.ID)
	}

	msg := cloneMessage(input.Message)
	now := r.clock.Now()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	r.messages[msg.ID] = msg
	r.order = append(r.order, msg.ID)
	return &CreateOutput{Message: cloneMessage(msg)}, nil
}

func (r *memoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errMessageIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	msg, ok := r.messages[input.ID]
	if !ok {
		return nil, errors.NotFoundf("chat message %s not found", input.ID)
	}
	return &GetOutput{Message: cloneMessage(msg)}, nil
}

func (r *memoryRepository) List(_ context.Context, input ListInput) (*ListOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.order
	if input.Limit > 0 && len(ids) > input.Limit {
		ids = ids[len(ids)-input.Limit:]
	}

	out := &ListOutput{Messages: make([]*ChatMessage, 0, len(ids))}
	for _, id := range ids {
		out.Messages = append(out.Messages, cloneMessage(r.messages[id]))
	}
	return out, nil
}

func (r *memoryRepository) GetFlag(_ context.Context, input GetFlagInput) (*GetFlagOutput, error) {
	if err := validateFlag(input.MessageID, input.Scope, input.Key); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.messages[input.MessageID]; !ok {
		return nil, errors.NotFoundf("chat message %s not found", input.MessageID)
	}

	value, ok := r.flags[input.MessageID][flagField(input.Scope, input.Key)]
	if !ok {
		return &GetFlagOutput{}, nil
	}
	return &GetFlagOutput{Value: append(json.RawMessage(nil), value...), Found: true}, nil
}

func (r *memoryRepository) SetFlag(_ context.Context, input SetFlagInput) (*SetFlagOutput, error) {
	if err := validateFlag(input.MessageID, input.Scope, input.Key); err != nil {
		return nil, err
	}

	if !json.Valid(input.Value) {
		return nil, errors.InvalidArgumentf("flag %s is not valid JSON", flagField(input.Scope, input.Key))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[input.MessageID]; !ok {
		return nil, errors.NotFoundf("chat message %s not found", input.MessageID)
	}

	if r.flags[input.MessageID] == nil {
		r.flags[input.MessageID] = make(map[string]json.RawMessage)
	}
	r.flags[input.MessageID][flagField(input.Scope, input.Key)] = append(json.RawMessage(nil), input.Value...)
	return &SetFlagOutput{}, nil
}

func (r *memoryRepository) UpdateContent(_ context.Context, input UpdateContentInput) (*UpdateContentOutput, error) {
	if input.MessageID == "" {
		return nil, errors.InvalidArgument(errMessageIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	msg, ok := r.messages[input.MessageID]
	if !ok {
		return nil, errors.NotFoundf("chat message %s not found", input.MessageID)
	}
	msg.Content = input.Content
	msg.UpdatedAt = r.clock.Now()
	return &UpdateContentOutput{Message: cloneMessage(msg)}, nil
}
