// Package chatlog posts outcomes to chat messages and keeps the outcome list
// stored in each message's flags in sync with its rendered content.
package chatlog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"regexp"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/idgen"
	chatmessage "github.com/KirkDiggler/rpg-pirateborg/internal/repositories/chat_message"
)

//go:generate mockgen -destination=mock/mock_service.go -package=chatlogmock github.com/KirkDiggler/rpg-pirateborg/internal/services/chatlog Service

const (
	// FlagScope namespaces every flag this system writes
	FlagScope = "pirateborg"
	// FlagOutcomes holds the outcome list of a message
	FlagOutcomes = "outcomes"

	// SoundDice is played for messages carrying at least one roll
	SoundDice = "sounds/dice.wav"
)

// Service defines chat log operations
type Service interface {
	// Post renders outcomes into a new message and stores them in its flags
	Post(ctx context.Context, input *PostInput) (*PostOutput, error)

	// Message returns a stored message
	Message(ctx context.Context, input *MessageInput) (*MessageOutput, error)

	// Outcomes reads the full outcome list of a message
	Outcomes(ctx context.Context, input *OutcomesInput) (*OutcomesOutput, error)

	// SaveOutcomes replaces the full outcome list of a message
	SaveOutcomes(ctx context.Context, input *SaveOutcomesInput) (*SaveOutcomesOutput, error)

	// AppendOutcomes reads the list, appends and writes it back
	AppendOutcomes(ctx context.Context, input *AppendOutcomesInput) (*AppendOutcomesOutput, error)

	// Render returns the HTML for outcomes in order
	Render(outcomes []*outcome.Outcome) (string, error)

	// UpdateContent replaces the rendered content of a message
	UpdateContent(ctx context.Context, input *UpdateContentInput) (*UpdateContentOutput, error)
}

// PostInput contains the speaker and outcomes of a new message
type PostInput struct {
	Speaker  chatmessage.Speaker
	Outcomes []*outcome.Outcome
}

// PostOutput contains the created message
type PostOutput struct {
	Message  *chatmessage.ChatMessage
	Outcomes []*outcome.Outcome
}

// MessageInput names a message
type MessageInput struct {
	MessageID string
}

// MessageOutput contains a message
type MessageOutput struct {
	Message *chatmessage.ChatMessage
}

// OutcomesInput names the message to read outcomes from
type OutcomesInput struct {
	MessageID string
}

// OutcomesOutput contains outcomes in stored order
type OutcomesOutput struct {
	Outcomes []*outcome.Outcome
}

// SaveOutcomesInput replaces a message's outcomes
type SaveOutcomesInput struct {
	MessageID string
	Outcomes  []*outcome.Outcome
}

// SaveOutcomesOutput contains the result of saving outcomes
type SaveOutcomesOutput struct{}

// AppendOutcomesInput adds outcomes after the stored ones
type AppendOutcomesInput struct {
	MessageID string
	Outcomes  []*outcome.Outcome
}

// AppendOutcomesOutput contains the full list after the append
type AppendOutcomesOutput struct {
	Outcomes []*outcome.Outcome
}

// UpdateContentInput replaces a message's content
type UpdateContentInput struct {
	MessageID string
	Content   string
}

// UpdateContentOutput contains the updated message
type UpdateContentOutput struct {
	Message *chatmessage.ChatMessage
}

// Config holds the dependencies for the chat log
type Config struct {
	Repository  chatmessage.Repository
	IDGenerator idgen.Generator
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	return vb.Build()
}

type service struct {
	repo  chatmessage.Repository
	idGen idgen.Generator
}

// New creates a chat log service
func New(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &service{
		repo:  cfg.Repository,
		idGen: cfg.IDGenerator,
	}, nil
}

func (s *service) Post(ctx context.Context, input *PostInput) (*PostOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	content, err := s.Render(input.Outcomes)
	if err != nil {
		return nil, err
	}

	msg := &chatmessage.ChatMessage{
		ID:      s.idGen.Generate(),
		Speaker: input.Speaker,
		Content: content,
		Sound:   soundFor(input.Outcomes),
	}
	created, err := s.repo.Create(ctx, chatmessage.CreateInput{Message: msg})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chat message")
	}

	if _, err := s.SaveOutcomes(ctx, &SaveOutcomesInput{MessageID: msg.ID, Outcomes: input.Outcomes}); err != nil {
		return nil, err
	}

	slog.Info("Outcomes posted",
		"message_id", msg.ID,
		"speaker", input.Speaker.ActorID,
		"outcomes", len(input.Outcomes))

	return &PostOutput{Message: created.Message, Outcomes: input.Outcomes}, nil
}

func (s *service) Message(ctx context.Context, input *MessageInput) (*MessageOutput, error) {
	if input == nil || input.MessageID == "" {
		return nil, errors.InvalidArgument("message ID is required")
	}

	out, err := s.repo.Get(ctx, chatmessage.GetInput{ID: input.MessageID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get chat message %s", input.MessageID)
	}
	return &MessageOutput{Message: out.Message}, nil
}

func (s *service) Outcomes(ctx context.Context, input *OutcomesInput) (*OutcomesOutput, error) {
	if input == nil || input.MessageID == "" {
		return nil, errors.InvalidArgument("message ID is required")
	}

	flag, err := s.repo.GetFlag(ctx, chatmessage.GetFlagInput{
		MessageID: input.MessageID,
		Scope:     FlagScope,
		Key:       FlagOutcomes,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read outcomes of %s", input.MessageID)
	}
	if !flag.Found {
		return &OutcomesOutput{}, nil
	}

	var outcomes []*outcome.Outcome
	if err := json.Unmarshal(flag.Value, &outcomes); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to decode outcomes")
	}
	return &OutcomesOutput{Outcomes: outcomes}, nil
}

func (s *service) SaveOutcomes(ctx context.Context, input *SaveOutcomesInput) (*SaveOutcomesOutput, error) {
	if input == nil || input.MessageID == "" {
		return nil, errors.InvalidArgument("message ID is required")
	}

	outcomes := input.Outcomes
	if outcomes == nil {
		outcomes = []*outcome.Outcome{}
	}
	value, err := json.Marshal(outcomes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode outcomes")
	}

	_, err = s.repo.SetFlag(ctx, chatmessage.SetFlagInput{
		MessageID: input.MessageID,
		Scope:     FlagScope,
		Key:       FlagOutcomes,
		Value:     value,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to write outcomes of %s", input.MessageID)
	}
	return &SaveOutcomesOutput{}, nil
}

func (s *service) AppendOutcomes(ctx context.Context, input *AppendOutcomesInput) (*AppendOutcomesOutput, error) {
	if input == nil || input.MessageID == "" {
		return nil, errors.InvalidArgument("message ID is required")
	}

	current, err := s.Outcomes(ctx, &OutcomesInput{MessageID: input.MessageID})
	if err != nil {
		return nil, err
	}

	all := append(current.Outcomes, input.Outcomes...)
	if _, err := s.SaveOutcomes(ctx, &SaveOutcomesInput{MessageID: input.MessageID, Outcomes: all}); err != nil {
		return nil, err
	}
	return &AppendOutcomesOutput{Outcomes: all}, nil
}

func (s *service) Render(outcomes []*outcome.Outcome) (string, error) {
	var buf bytes.Buffer
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		if err := outcomeTemplate.Execute(&buf, o); err != nil {
			return "", errors.Wrapf(err, "failed to render outcome %s", o.ID)
		}
	}
	return buf.String(), nil
}

func (s *service) UpdateContent(ctx context.Context, input *UpdateContentInput) (*UpdateContentOutput, error) {
	if input == nil || input.MessageID == "" {
		return nil, errors.InvalidArgument("message ID is required")
	}

	out, err := s.repo.UpdateContent(ctx, chatmessage.UpdateContentInput{
		MessageID: input.MessageID,
		Content:   input.Content,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update content of %s", input.MessageID)
	}
	return &UpdateContentOutput{Message: out.Message}, nil
}

// RemoveButton strips the button bound to outcomeID from rendered content
func RemoveButton(content, outcomeID string) string {
	attr, err := outcomeAttr(outcomeID)
	if err != nil {
		return content
	}
	pattern := regexp.MustCompile(`<button class="outcome-button"[^>]*` +
		regexp.QuoteMeta(attr) + `[^>]*>.*?</button>`)
	return pattern.ReplaceAllString(content, "")
}

func soundFor(outcomes []*outcome.Outcome) string {
	for _, o := range outcomes {
		if o != nil && o.Roll != nil {
			return SoundDice
		}
	}
	return ""
}
