package pirateborg_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-pirateborg/internal/entities"
	"github.com/KirkDiggler/rpg-pirateborg/internal/formula"
	"github.com/KirkDiggler/rpg-pirateborg/internal/orchestrators/automation"
	"github.com/KirkDiggler/rpg-pirateborg/internal/orchestrators/chatbutton"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pirateborg"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-pirateborg/internal/repositories/actor"
	chatmessage "github.com/KirkDiggler/rpg-pirateborg/internal/repositories/chat_message"
	"github.com/KirkDiggler/rpg-pirateborg/internal/services/chatlog"
	"github.com/KirkDiggler/rpg-pirateborg/internal/testutils"
)

func rollOf(f string, faces ...int) *formula.Roll {
	total := 0
	for _, face := range faces {
		total += face
	}
	return &formula.Roll{
		Formula: f,
		Total:   total,
		Dice:    []formula.DieTerm{{Count: len(faces), Results: faces, Kept: faces, Total: total}},
	}
}

type ButtonsTestSuite struct {
	suite.Suite
	ctx      context.Context
	roller   *testutils.ScriptedRoller
	repo     actor.Repository
	rules    *pirateborg.Rules
	registry *chatbutton.Registry

	chatLog    chatlog.Service
	automation automation.Service
	buttons    chatbutton.Service
}

func TestButtonsSuite(t *testing.T) {
	suite.Run(t, new(ButtonsTestSuite))
}

func (s *ButtonsTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.roller = testutils.NewScriptedRoller()

	eval, err := formula.New(&formula.Config{Roller: s.roller})
	s.Require().NoError(err)
	builder, err := outcome.NewBuilder(&outcome.Config{Evaluator: eval, IDGenerator: idgen.NewSequential("out")})
	s.Require().NoError(err)

	s.repo, err = actor.NewRosterRepository(&actor.Config{Actors: testActors()})
	s.Require().NoError(err)
	s.rules, err = pirateborg.New(&pirateborg.Config{Builder: builder, ActorRepo: s.repo})
	s.Require().NoError(err)

	s.registry = chatbutton.NewRegistry()
	s.rules.RegisterButtons(s.registry)

	messages, err := chatmessage.NewMemoryRepository(&chatmessage.MemoryConfig{
		Clock: &clock.Fixed{At: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
	})
	s.Require().NoError(err)
	s.chatLog, err = chatlog.New(&chatlog.Config{Repository: messages, IDGenerator: idgen.NewSequential("msg")})
	s.Require().NoError(err)

	automations := automation.NewRegistry()
	s.rules.RegisterAutomations(automations)
	s.automation, err = automation.NewOrchestrator(&automation.Config{Registry: automations, ChatLog: s.chatLog})
	s.Require().NoError(err)

	s.buttons, err = chatbutton.NewOrchestrator(&chatbutton.Config{Registry: s.registry, ChatLog: s.chatLog, ActorRepo: s.repo})
	s.Require().NoError(err)
}

func (s *ButtonsTestSuite) TearDownTest() {
	s.Equal(0, s.roller.Remaining(), "every scripted face should be rolled")
}

func (s *ButtonsTestSuite) actor(id string) *entities.Actor {
	out, err := s.repo.Get(s.ctx, actor.GetInput{ID: id})
	s.Require().NoError(err)
	return out.Actor
}

func (s *ButtonsTestSuite) click(t outcome.ButtonType, speaker *entities.Actor, source *outcome.Outcome) []*outcome.Outcome {
	handler, ok := s.registry.Lookup(t)
	s.Require().True(ok)
	outs, err := handler.Execute(s.ctx, speaker, source)
	s.Require().NoError(err)
	s.Require().Len(outs, 1)
	return outs
}

func (s *ButtonsTestSuite) TestRegisteredTypes() {
	s.Equal([]outcome.ButtonType{
		pirateborg.ButtonRollDamage,
		pirateborg.ButtonTakeDamage,
		pirateborg.ButtonShipDamage,
		pirateborg.ButtonMishap,
		pirateborg.ButtonRepairHull,
	}, s.registry.Types())
}

func (s *ButtonsTestSuite) TestRollDamageCarriesCritical() {
	s.roller.Push(3, 1)

	source := &outcome.Outcome{
		ID:                "out_src",
		TargetToken:       "tok_brute",
		IsCriticalSuccess: true,
		Props:             map[string]any{pirateborg.PropDamageFormula: "d8"},
	}
	o := s.click(pirateborg.ButtonRollDamage, s.actor("pc_anne"), source)[0]

	s.Equal(pirateborg.ActionDamage, o.Type)
	s.Equal("(d8)*2", o.Formula)
	s.Equal(5, o.TotalDamage)
	s.Equal("tok_brute", o.TargetToken)
}

func (s *ButtonsTestSuite) TestTakeDamageDoublesOnFumble() {
	s.roller.Push(3, 2)

	source := &outcome.Outcome{
		ID:       "out_src",
		IsFumble: true,
		Props:    map[string]any{pirateborg.PropIncomingDamage: "d6"},
	}
	o := s.click(pirateborg.ButtonTakeDamage, s.actor("pc_anne"), source)[0]

	s.Equal(4, o.TotalDamage)
	s.Equal("tok_anne", o.TargetToken)
}

func (s *ButtonsTestSuite) TestMishap() {
	s.roller.Push(5)

	o := s.click(pirateborg.ButtonMishap, s.actor("pc_anne"), &outcome.Outcome{ID: "out_src"})[0]

	s.Equal(pirateborg.ActionMishap, o.Type)
	s.Equal("A nearby ally is struck instead. They take d6 damage.", o.Description)
}

// Attack, click Roll Damage, then process the message: the brute loses the
// rolled damage exactly once.
func (s *ButtonsTestSuite) TestAttackToDamageFlow() {
	anne := s.actor("pc_anne")

	s.roller.Push(15)
	attack, err := s.rules.Perform(s.ctx, pirateborg.ActionAttack, pirateborg.ActionInput{
		Actor:       anne,
		WeaponID:    "cutlass",
		TargetToken: "tok_brute",
	})
	s.Require().NoError(err)

	posted, err := s.chatLog.Post(s.ctx, &chatlog.PostInput{
		Speaker:  chatmessage.Speaker{ActorID: anne.ID, TokenID: anne.TokenID, Alias: anne.Name},
		Outcomes: attack,
	})
	s.Require().NoError(err)
	s.Contains(posted.Message.Content, `data-type="roll-damage"`)

	s.roller.Push(6, 2)
	clicked, err := s.buttons.HandleChatMessage(s.ctx, &chatbutton.HandleChatMessageInput{
		MessageID: posted.Message.ID,
		Button:    attack[0].Button.Data,
	})
	s.Require().NoError(err)
	s.Require().Len(clicked.Outcomes, 1)
	s.Equal(4, clicked.Outcomes[0].TotalDamage)
	s.NotContains(clicked.Message.Content, `data-type="roll-damage"`)

	processed, err := s.automation.HandleChatMessage(s.ctx, &automation.HandleChatMessageInput{MessageID: posted.Message.ID})
	s.Require().NoError(err)
	s.Equal(2, processed.Processed)
	s.True(processed.Written)

	again, err := s.automation.HandleChatMessage(s.ctx, &automation.HandleChatMessageInput{MessageID: posted.Message.ID})
	s.Require().NoError(err)
	s.Equal(0, again.Processed)
	s.Equal(2, again.Skipped)
	s.False(again.Written)

	brute, err := s.repo.Get(s.ctx, actor.GetInput{ID: "npc_brute"})
	s.Require().NoError(err)
	s.Equal(6, brute.Actor.HP.Value)
}
