// Package chatmessage provides the chat message store: rendered content plus a
// flag bag of namespaced JSON values. Outcomes live in that flag bag.
package chatmessage

import (
	"context"
	"encoding/json"
	"time"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=chatmessagemock github.com/KirkDiggler/rpg-pirateborg/internal/repositories/chat_message Repository

// ChatMessage is a posted message. Flags are not part of the record; they are
// read and written one key at a time.
type ChatMessage struct {
	ID      string  `json:"id"`
	Speaker Speaker `json:"speaker"`
	Content string  `json:"content"`
	// Sound played when the message is shown, empty for none
	Sound     string    `json:"sound,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Speaker identifies who posted a message
type Speaker struct {
	ActorID string `json:"actorId,omitempty"`
	TokenID string `json:"tokenId,omitempty"`
	Alias   string `json:"alias,omitempty"`
}

// CreateInput contains parameters for creating a message
type CreateInput struct {
	Message *ChatMessage
}

// CreateOutput contains the stored message
type CreateOutput struct {
	Message *ChatMessage
}

// GetInput contains parameters for retrieving a message
type GetInput struct {
	ID string
}

// GetOutput contains the retrieved message
type GetOutput struct {
	Message *ChatMessage
}

// ListInput contains parameters for listing messages
type ListInput struct {
	// Limit caps the result to the newest messages, 0 for all
	Limit int
}

// ListOutput contains messages oldest first
type ListOutput struct {
	Messages []*ChatMessage
}

// GetFlagInput names one flag of a message
type GetFlagInput struct {
	MessageID string
	Scope     string
	Key       string
}

// GetFlagOutput carries the flag value. Found is false when never set.
type GetFlagOutput struct {
	Value json.RawMessage
	Found bool
}

// SetFlagInput replaces the whole value of one flag
type SetFlagInput struct {
	MessageID string
	Scope     string
	Key       string
	Value     json.RawMessage
}

// SetFlagOutput contains the result of writing a flag
type SetFlagOutput struct{}

// UpdateContentInput replaces the rendered content of a message
type UpdateContentInput struct {
	MessageID string
	Content   string
}

// UpdateContentOutput contains the updated message
type UpdateContentOutput struct {
	Message *ChatMessage
}

// Repository defines chat message storage. Flag writes replace the whole
// value; there are no partial updates and no cross-writer locking, so each
// message must have a single writer.
type Repository interface {
	// Create stores a new message
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a message by id
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// List returns stored messages oldest first
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// GetFlag reads one flag value
	GetFlag(ctx context.Context, input GetFlagInput) (*GetFlagOutput, error)

	// SetFlag replaces one flag value
	SetFlag(ctx context.Context, input SetFlagInput) (*SetFlagOutput, error)

	// UpdateContent replaces the rendered content
	UpdateContent(ctx context.Context, input UpdateContentInput) (*UpdateContentOutput, error)
}
