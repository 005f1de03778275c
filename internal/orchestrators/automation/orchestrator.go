// Package automation runs the side effects tagged on outcomes, such as
// applying damage or playing an animation, at most once per outcome.
package automation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/metrics"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/registry"
	"github.com/KirkDiggler/rpg-pirateborg/internal/services/chatlog"
)

// EventExecuted is published on the event bus after an outcome's handlers ran
const EventExecuted = "pirateborg.automation.executed"

// SubscribeMetrics counts executed outcomes by action type from the
// EventExecuted events published on bus
func SubscribeMetrics(bus events.EventBus, m *metrics.Metrics) string {
	return bus.SubscribeFunc(EventExecuted, 0, func(_ context.Context, e events.Event) error {
		o, ok := e.Source().(*outcome.Outcome)
		if !ok {
			return errors.InvalidArgumentf("%s event without an outcome source", EventExecuted)
		}
		m.OutcomeExecuted(string(o.Type))
		return nil
	})
}

// Handler applies one automation to an outcome
type Handler interface {
	Execute(ctx context.Context, o *outcome.Outcome) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, o *outcome.Outcome) error

// Execute calls f
func (f HandlerFunc) Execute(ctx context.Context, o *outcome.Outcome) error {
	return f(ctx, o)
}

// Registry maps automation types to handlers. Build it once at startup.
type Registry = registry.Registry[outcome.AutomationType, Handler]

// NewRegistry creates an empty automation registry
func NewRegistry() *Registry {
	return registry.New[outcome.AutomationType, Handler]()
}

// Service defines the automation operations
type Service interface {
	// Execute runs the handlers of one outcome unless it was already processed
	Execute(ctx context.Context, input *ExecuteInput) (*ExecuteOutput, error)

	// HandleChatMessage executes every outcome stored on a message, in order,
	// and writes the list back once if anything changed
	HandleChatMessage(ctx context.Context, input *HandleChatMessageInput) (*HandleChatMessageOutput, error)
}

// ExecuteInput contains the outcome to process. It is marked done in place.
type ExecuteInput struct {
	Outcome *outcome.Outcome
}

// ExecuteOutput reports whether the outcome was processed by this call
type ExecuteOutput struct {
	Changed bool
}

// HandleChatMessageInput names the message to process
type HandleChatMessageInput struct {
	MessageID string
}

// HandleChatMessageOutput summarizes a message pass
type HandleChatMessageOutput struct {
	Processed int
	Skipped   int
	Written   bool
}

// Config holds the dependencies for the automation orchestrator
type Config struct {
	Registry *Registry
	ChatLog  chatlog.Service

	// EventBus and Metrics are optional
	EventBus events.EventBus
	Metrics  *metrics.Metrics
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
	return vb.Build()
}

// orchestrator assumes it is the only writer of the messages it processes.
// Two processes handling the same message race and the last write wins.
type orchestrator struct {
	registry *Registry
	chatLog  chatlog.Service
	eventBus events.EventBus
	metrics  *metrics.Metrics

	// mu makes the AutomationDone check-and-set a single step
	mu sync.Mutex
}

// NewOrchestrator creates a new automation orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		registry: cfg.Registry,
		chatLog:  cfg.ChatLog,
		eventBus: cfg.EventBus,
		metrics:  cfg.Metrics,
	}, nil
}

func (o *orchestrator) Execute(ctx context.Context, input *ExecuteInput) (*ExecuteOutput, error) {
	if input == nil || input.Outcome == nil {
		return nil, errors.InvalidArgument("outcome is required")
	}
	out := input.Outcome

	if !o.claim(out) {
		o.metrics.OutcomeSeen(false)
		return &ExecuteOutput{Changed: false}, nil
	}
	o.metrics.OutcomeSeen(true)

	// Handlers run in registration order, one at a time. The first error
	// stops the rest; the outcome stays marked done.
	for _, entry := range o.registry.Entries() {
		if !out.HasAutomation(entry.Type) {
			continue
		}

		err := entry.Handler.Execute(ctx, out)
		o.metrics.AutomationRan(string(entry.Type), err)
		if err != nil {
			slog.Error("Automation failed",
				"outcome_id", out.ID,
				"automation", entry.Type,
				"error", err)
			return nil, errors.Wrapf(err, "automation %s failed for outcome %s", entry.Type, out.ID)
		}
	}

	if o.eventBus != nil {
		if err := o.eventBus.Publish(ctx, events.NewGameEvent(EventExecuted, out, nil)); err != nil {
			return nil, errors.Wrap(err, "failed to publish automation event")
		}
	}

	slog.Debug("Automations executed",
		"outcome_id", out.ID,
		"automations", out.Automations)

	return &ExecuteOutput{Changed: true}, nil
}

// claim flips AutomationDone and reports whether this call flipped it
func (o *orchestrator) claim(out *outcome.Outcome) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if out.AutomationDone {
		return false
	}
	out.AutomationDone = true
	return true
}

func (o *orchestrator) HandleChatMessage(ctx context.Context, input *HandleChatMessageInput) (*HandleChatMessageOutput, error) {
	if input == nil || input.MessageID == "" {
		return nil, errors.InvalidArgument("message ID is required")
	}

	stored, err := o.chatLog.Outcomes(ctx, &chatlog.OutcomesInput{MessageID: input.MessageID})
	if err != nil {
		return nil, err
	}

	result := &HandleChatMessageOutput{}
	for _, out := range stored.Outcomes {
		if out == nil {
			continue
		}

		executed, err := o.Execute(ctx, &ExecuteInput{Outcome: out})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to process message %s", input.MessageID)
		}
		if executed.Changed {
			result.Processed++
		} else {
			result.Skipped++
		}
	}

	if result.Processed == 0 {
		return result, nil
	}

	_, err = o.chatLog.SaveOutcomes(ctx, &chatlog.SaveOutcomesInput{
		MessageID: input.MessageID,
		Outcomes:  stored.Outcomes,
	})
	if err != nil {
		return nil, err
	}
	result.Written = true

	slog.Info("Chat message automations processed",
		"message_id", input.MessageID,
		"processed", result.Processed,
		"skipped", result.Skipped)

	return result, nil
}
