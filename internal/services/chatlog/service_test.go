package chatlog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/formula"
	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/idgen"
	chatmessage "github.com/KirkDiggler/rpg-pirateborg/internal/repositories/chat_message"
	"github.com/KirkDiggler/rpg-pirateborg/internal/services/chatlog"
)

type ChatLogTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo chatmessage.Repository
	svc  chatlog.Service
}

func TestChatLogSuite(t *testing.T) {
	suite.Run(t, new(ChatLogTestSuite))
}

func (s *ChatLogTestSuite) SetupTest() {
	s.ctx = context.Background()

	repo, err := chatmessage.NewMemoryRepository(&chatmessage.MemoryConfig{
		Clock: &clock.Fixed{At: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	})
	s.Require().NoError(err)
	s.repo = repo

	svc, err := chatlog.New(&chatlog.Config{Repository: repo, IDGenerator: idgen.NewSequential("msg")})
	s.Require().NoError(err)
	s.svc = svc
}

func attack() *outcome.Outcome {
	return &outcome.Outcome{
		ID:           "o1",
		Type:         "attack",
		Title:        "Hit!",
		Roll:         &formula.Roll{Formula: "d20+2", Total: 17, Dice: []formula.DieTerm{{Count: 1, Faces: 20, Results: []int{15}, Kept: []int{15}, Total: 15}}},
		Formula:      "d20+2",
		FormulaLabel: "Attack",
		DR:           12,
		IsSuccess:    true,
		Result:       outcome.ResultSuccess,
		Button: &outcome.Button{
			Title: "Roll Damage",
			Data:  outcome.ButtonData{Type: "roll-damage", ID: "b1", Outcome: "o1"},
		},
	}
}

func (s *ChatLogTestSuite) TestPost() {
	out, err := s.svc.Post(s.ctx, &chatlog.PostInput{
		Speaker:  chatmessage.Speaker{ActorID: "pc_anne", Alias: "Anne"},
		Outcomes: []*outcome.Outcome{attack()},
	})
	s.Require().NoError(err)

	msg := out.Message
	s.Equal("msg_1", msg.ID)
	s.Equal(chatlog.SoundDice, msg.Sound)
	s.Contains(msg.Content, `data-outcome-id="o1"`)
	s.Contains(msg.Content, `<h3 class="outcome-title">Hit!</h3>`)
	s.Contains(msg.Content, `<span class="dice-faces">15</span><span class="dice-total">17</span>`)
	s.Contains(msg.Content, `DR 12`)
	s.Contains(msg.Content, `result-success">Success<`)
	s.Contains(msg.Content, `data-outcome="o1">Roll Damage</button>`)

	stored, err := s.svc.Outcomes(s.ctx, &chatlog.OutcomesInput{MessageID: msg.ID})
	s.Require().NoError(err)
	s.Require().Len(stored.Outcomes, 1)
	s.Equal(attack(), stored.Outcomes[0])
}

func (s *ChatLogTestSuite) TestPostWithoutRollIsSilent() {
	out, err := s.svc.Post(s.ctx, &chatlog.PostInput{
		Outcomes: []*outcome.Outcome{{ID: "o1", Type: "reaction", Description: "<b>Hostile</b>"}},
	})
	s.Require().NoError(err)
	s.Empty(out.Message.Sound)
	s.Contains(out.Message.Content, "&lt;b&gt;Hostile&lt;/b&gt;")
}

func (s *ChatLogTestSuite) TestOutcomesOfMessageWithoutFlag() {
	_, err := s.repo.Create(s.ctx, chatmessage.CreateInput{Message: &chatmessage.ChatMessage{ID: "plain"}})
	s.Require().NoError(err)

	out, err := s.svc.Outcomes(s.ctx, &chatlog.OutcomesInput{MessageID: "plain"})
	s.Require().NoError(err)
	s.Empty(out.Outcomes)

	_, err = s.svc.Outcomes(s.ctx, &chatlog.OutcomesInput{MessageID: "missing"})
	s.True(errors.IsNotFound(err))
}

func (s *ChatLogTestSuite) TestAppendOutcomes() {
	posted, err := s.svc.Post(s.ctx, &chatlog.PostInput{Outcomes: []*outcome.Outcome{attack()}})
	s.Require().NoError(err)

	out, err := s.svc.AppendOutcomes(s.ctx, &chatlog.AppendOutcomesInput{
		MessageID: posted.Message.ID,
		Outcomes:  []*outcome.Outcome{{ID: "o2", Type: "damage"}},
	})
	s.Require().NoError(err)
	s.Len(out.Outcomes, 2)

	stored, err := s.svc.Outcomes(s.ctx, &chatlog.OutcomesInput{MessageID: posted.Message.ID})
	s.Require().NoError(err)
	s.Equal("o1", stored.Outcomes[0].ID)
	s.Equal("o2", stored.Outcomes[1].ID)
}

func (s *ChatLogTestSuite) TestRemoveButton() {
	other := attack()
	other.ID = "o2"
	other.Button.Data.Outcome = "o2"

	content, err := s.svc.Render([]*outcome.Outcome{attack(), other})
	s.Require().NoError(err)
	s.Equal(2, strings.Count(content, "<button"))

	stripped := chatlog.RemoveButton(content, "o1")
	s.Equal(1, strings.Count(stripped, "<button"))
	s.NotContains(stripped, `data-outcome="o1"`)
	s.Contains(stripped, `data-outcome="o2"`)
	s.Contains(stripped, `data-outcome-id="o1"`)

	s.Equal(stripped, chatlog.RemoveButton(stripped, "o1"))
}

func (s *ChatLogTestSuite) TestRemoveButtonEscapedID() {
	o := attack()
	o.ID = "o+1 <&'>"
	o.Button.Data.Outcome = o.ID

	content, err := s.svc.Render([]*outcome.Outcome{o, attack()})
	s.Require().NoError(err)
	s.Contains(content, `data-outcome="o&#43;1`)

	stripped := chatlog.RemoveButton(content, o.ID)
	s.Equal(1, strings.Count(stripped, "<button"))
	s.Contains(stripped, `data-outcome="o1"`)
}

func (s *ChatLogTestSuite) TestRenderDraw() {
	content, err := s.svc.Render([]*outcome.Outcome{{
		ID:          "o1",
		Type:        "draw-table",
		Description: "Rum\nPowder",
		DrawResults: []string{"Rum", "Powder"},
	}})
	s.Require().NoError(err)
	s.Contains(content, `<ul class="draw-results"><li>Rum</li><li>Powder</li></ul>`)
	s.NotContains(content, "outcome-description")
}

func TestNewValidation(t *testing.T) {
	_, err := chatlog.New(&chatlog.Config{})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
