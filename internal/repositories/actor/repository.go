// Package actor provides the repository the outcome engine uses to resolve
// actors by id or token and to change their hit points.
package actor

import (
	"context"

	"github.com/KirkDiggler/rpg-pirateborg/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=actormock github.com/KirkDiggler/rpg-pirateborg/internal/repositories/actor Repository

// GetInput contains parameters for retrieving an actor
type GetInput struct {
	ID string
}

// GetOutput contains the result of retrieving an actor
type GetOutput struct {
	Actor *entities.Actor
}

// GetByTokenInput contains parameters for resolving a token to its actor
type GetByTokenInput struct {
	TokenID string
}

// GetByTokenOutput contains the actor behind a token
type GetByTokenOutput struct {
	Actor *entities.Actor
}

// ListInput contains parameters for listing actors
type ListInput struct {
	Kind entities.ActorKind // empty lists every kind
}

// ListOutput contains the listed actors in roster order
type ListOutput struct {
	Actors []*entities.Actor
}

// UpdateHPInput sets an actor's current hit points
type UpdateHPInput struct {
	ID    string
	Value int
}

// UpdateHPOutput contains the actor after the change
type UpdateHPOutput struct {
	Actor *entities.Actor
}

// UpdateMaxHPInput sets an actor's maximum hit points
type UpdateMaxHPInput struct {
	ID  string
	Max int
}

// UpdateMaxHPOutput contains the actor after the change
type UpdateMaxHPOutput struct {
	Actor *entities.Actor
}

// Repository defines actor storage operations. Returned actors are copies;
// hit points are the only thing that changes.
type Repository interface {
	// Get retrieves an actor by id
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// GetByToken resolves the actor behind an on-scene token
	GetByToken(ctx context.Context, input GetByTokenInput) (*GetByTokenOutput, error)

	// List returns actors in roster order
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// UpdateHP sets current hit points
	UpdateHP(ctx context.Context, input UpdateHPInput) (*UpdateHPOutput, error)

	// UpdateMaxHP sets maximum hit points
	UpdateMaxHP(ctx context.Context, input UpdateMaxHPInput) (*UpdateMaxHPOutput, error)
}
