package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-pirateborg/internal/config"
	"github.com/KirkDiggler/rpg-pirateborg/internal/formula"
	"github.com/KirkDiggler/rpg-pirateborg/internal/metrics"
	"github.com/KirkDiggler/rpg-pirateborg/internal/orchestrators/automation"
	"github.com/KirkDiggler/rpg-pirateborg/internal/orchestrators/chatbutton"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pirateborg"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-pirateborg/internal/redis"
	"github.com/KirkDiggler/rpg-pirateborg/internal/repositories/actor"
	chatmessage "github.com/KirkDiggler/rpg-pirateborg/internal/repositories/chat_message"
	"github.com/KirkDiggler/rpg-pirateborg/internal/services/chatlog"
)

// app is everything a command needs, wired from the environment
type app struct {
	cfg *config.Config

	evaluator  formula.Evaluator
	rules      *pirateborg.Rules
	actors     actor.Repository
	messages   chatmessage.Repository
	chatLog    chatlog.Service
	automation automation.Service
	buttons    chatbutton.Service
	metrics    *metrics.Metrics

	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	a := &app{cfg: cfg}

	a.messages, err = a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	a.actors, err = actor.LoadRosterFile(cfg.RosterPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load roster %s: %w", cfg.RosterPath, err)
	}

	if err := a.wire(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) (chatmessage.Repository, error) {
	clk := clock.New()

	switch a.cfg.Store {
	case config.StoreMemory:
		slog.Warn("Using the in-memory chat store; messages do not outlive this command")
		return chatmessage.NewMemoryRepository(&chatmessage.MemoryConfig{Clock: clk})

	case config.StoreRedis:
		client, err := redis.Connect(a.cfg.RedisEndpoints, &redis.Options{
			PoolSize:        a.cfg.RedisPoolSize,
			ConnMaxIdleTime: a.cfg.RedisIdleTime,
			UseTLS:          a.cfg.RedisTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return chatmessage.NewRedisRepository(&chatmessage.RedisConfig{Client: client, Clock: clk})

	default:
		repo, err := chatmessage.OpenSQLite(ctx, &chatmessage.SQLiteConfig{Path: a.cfg.SQLitePath, Clock: clk})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	}
}

func (a *app) wire() error {
	var err error

	a.metrics, err = metrics.New(a.cfg.MetricsNamespace)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	a.evaluator, err = formula.New(&formula.Config{Roller: dice.DefaultRoller})
	if err != nil {
		return fmt.Errorf("failed to create evaluator: %w", err)
	}

	builder, err := outcome.NewBuilder(&outcome.Config{
		Evaluator:   a.evaluator,
		IDGenerator: idgen.NewUUID("outcome"),
	})
	if err != nil {
		return fmt.Errorf("failed to create outcome builder: %w", err)
	}

	a.rules, err = pirateborg.New(&pirateborg.Config{
		Builder:   builder,
		ActorRepo: a.actors,
		Animator:  pirateborg.LogAnimator{},
	})
	if err != nil {
		return fmt.Errorf("failed to create rules: %w", err)
	}

	a.chatLog, err = chatlog.New(&chatlog.Config{
		Repository:  a.messages,
		IDGenerator: idgen.NewUUID("msg"),
	})
	if err != nil {
		return fmt.Errorf("failed to create chat log: %w", err)
	}

	bus := events.NewBus()
	automation.SubscribeMetrics(bus, a.metrics)

	automations := automation.NewRegistry()
	a.rules.RegisterAutomations(automations)
	a.automation, err = automation.NewOrchestrator(&automation.Config{
		Registry: automations,
		ChatLog:  a.chatLog,
		EventBus: bus,
		Metrics:  a.metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create automation orchestrator: %w", err)
	}

	buttons := chatbutton.NewRegistry()
	a.rules.RegisterButtons(buttons)
	a.buttons, err = chatbutton.NewOrchestrator(&chatbutton.Config{
		Registry:  buttons,
		ChatLog:   a.chatLog,
		ActorRepo: a.actors,
		Metrics:   a.metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create chat button orchestrator: %w", err)
	}

	return nil
}

// close releases the store and, with --metrics, prints the counters
func (a *app) close() {
	if showMetrics {
		if err := a.metrics.WriteText(os.Stderr); err != nil {
			slog.Error("Failed to write metrics", "error", err)
		}
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			slog.Error("Failed to close", "error", err)
		}
	}
}

// withApp runs fn with a wired app and releases it afterwards
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}
