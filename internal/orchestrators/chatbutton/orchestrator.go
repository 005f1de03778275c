// Package chatbutton resolves clicks on outcome buttons, such as "Roll
// Damage" after a hit, into new outcomes appended to the same message.
package chatbutton

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-pirateborg/internal/entities"
	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/metrics"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/registry"
	"github.com/KirkDiggler/rpg-pirateborg/internal/repositories/actor"
	chatmessage "github.com/KirkDiggler/rpg-pirateborg/internal/repositories/chat_message"
	"github.com/KirkDiggler/rpg-pirateborg/internal/services/chatlog"
)

// Handler produces follow-up outcomes for a clicked button. speaker is the
// actor who posted the message; source is the outcome owning the button.
type Handler interface {
	Execute(ctx context.Context, speaker *entities.Actor, source *outcome.Outcome) ([]*outcome.Outcome, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, speaker *entities.Actor, source *outcome.Outcome) ([]*outcome.Outcome, error)

// Execute calls f
func (f HandlerFunc) Execute(ctx context.Context, speaker *entities.Actor, source *outcome.Outcome) ([]*outcome.Outcome, error) {
	return f(ctx, speaker, source)
}

// Registry maps button types to handlers. It is separate from the
// automation registry.
type Registry = registry.Registry[outcome.ButtonType, Handler]

// NewRegistry creates an empty button registry
func NewRegistry() *Registry {
	return registry.New[outcome.ButtonType, Handler]()
}

// Service defines the chat button operations
type Service interface {
	// HandleChatMessage resolves one click. Clicking the same button twice
	// produces two sets of outcomes.
	HandleChatMessage(ctx context.Context, input *HandleChatMessageInput) (*HandleChatMessageOutput, error)
}

// HandleChatMessageInput carries the clicked button's data
type HandleChatMessageInput struct {
	MessageID string
	Button    outcome.ButtonData
}

// HandleChatMessageOutput contains the new outcomes and the updated message
type HandleChatMessageOutput struct {
	Outcomes []*outcome.Outcome
	Message  *chatmessage.ChatMessage
}

// Config holds the dependencies for the chat button orchestrator
type Config struct {
	Registry  *Registry
	ChatLog   chatlog.Service
	ActorRepo actor.Repository

	// Metrics is optional
	Metrics *metrics.Metrics
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.ChatLog == nil {
		vb.RequiredField("ChatLog")
	}
	if c.ActorRepo == nil {
		vb.RequiredField("ActorRepo")
	}
	return vb.Build()
}

type orchestrator struct {
	registry  *Registry
	chatLog   chatlog.Service
	actorRepo actor.Repository
	metrics   *metrics.Metrics
}

// NewOrchestrator creates a new chat button orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		registry:  cfg.Registry,
		chatLog:   cfg.ChatLog,
		actorRepo: cfg.ActorRepo,
		metrics:   cfg.Metrics,
	}, nil
}

func (o *orchestrator) HandleChatMessage(ctx context.Context, input *HandleChatMessageInput) (*HandleChatMessageOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("MessageID", input.MessageID, vb)
	errors.ValidateRequired("Button.Type", string(input.Button.Type), vb)
	errors.ValidateRequired("Button.Outcome", input.Button.Outcome, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	msg, err := o.chatLog.Message(ctx, &chatlog.MessageInput{MessageID: input.MessageID})
	if err != nil {
		return nil, err
	}

	speaker, err := o.resolveSpeaker(ctx, msg.Message.Speaker)
	if err != nil {
		return nil, err
	}

	stored, err := o.chatLog.Outcomes(ctx, &chatlog.OutcomesInput{MessageID: input.MessageID})
	if err != nil {
		return nil, err
	}
	source := outcome.FindByID(stored.Outcomes, input.Button.Outcome)
	if source == nil {
		return nil, errors.NotFoundf("outcome %s not found on message %s", input.Button.Outcome, input.MessageID)
	}

	handler, ok := o.registry.Lookup(input.Button.Type)
	if !ok {
		return nil, errors.Unimplementedf("no handler for button type %s", input.Button.Type)
	}

	created, err := handler.Execute(ctx, speaker, source)
	o.metrics.ButtonClicked(string(input.Button.Type), err)
	if err != nil {
		return nil, errors.Wrapf(err, "button %s failed for outcome %s", input.Button.Type, source.ID)
	}

	rendered, err := o.chatLog.Render(created)
	if err != nil {
		return nil, err
	}
	updated, err := o.chatLog.UpdateContent(ctx, &chatlog.UpdateContentInput{
		MessageID: input.MessageID,
		Content:   chatlog.RemoveButton(msg.Message.Content, source.ID) + rendered,
	})
	if err != nil {
		return nil, err
	}

	if _, err := o.chatLog.AppendOutcomes(ctx, &chatlog.AppendOutcomesInput{
		MessageID: input.MessageID,
		Outcomes:  created,
	}); err != nil {
		return nil, err
	}

	slog.Info("Chat button handled",
		"message_id", input.MessageID,
		"button", input.Button.Type,
		"source_outcome", source.ID,
		"new_outcomes", len(created))

	return &HandleChatMessageOutput{
		Outcomes: created,
		Message:  updated.Message,
	}, nil
}

func (o *orchestrator) resolveSpeaker(ctx context.Context, speaker chatmessage.Speaker) (*entities.Actor, error) {
	switch {
	case speaker.ActorID != "":
		out, err := o.actorRepo.Get(ctx, actor.GetInput{ID: speaker.ActorID})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve speaker %s", speaker.ActorID)
		}
		return out.Actor, nil
	case speaker.TokenID != "":
		out, err := o.actorRepo.GetByToken(ctx, actor.GetByTokenInput{TokenID: speaker.TokenID})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve speaker token %s", speaker.TokenID)
		}
		return out.Actor, nil
	default:
		return nil, errors.FailedPrecondition("message has no speaker actor")
	}
}
