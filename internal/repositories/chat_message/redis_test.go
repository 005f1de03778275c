package chatmessage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/clock"
	chatmessage "github.com/KirkDiggler/rpg-pirateborg/internal/repositories/chat_message"
	"github.com/KirkDiggler/rpg-pirateborg/internal/testutils"
)

// RedisCreateTestSuite covers the Redis specifics of Create
type RedisCreateTestSuite struct {
	suite.Suite
	ctx  context.Context
	mr   *miniredis.Miniredis
	repo chatmessage.Repository
}

func TestRedisCreateSuite(t *testing.T) {
	suite.Run(t, new(RedisCreateTestSuite))
}

func (s *RedisCreateTestSuite) SetupTest() {
	s.ctx = context.Background()

	client, mr := testutils.CreateTestRedisClient(s.T())
	s.mr = mr

	repo, err := chatmessage.NewRedisRepository(&chatmessage.RedisConfig{
		Client: client,
		Clock:  &clock.Fixed{At: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisCreateTestSuite) TestWritesDocumentAndIndex() {
	_, err := s.repo.Create(s.ctx, chatmessage.CreateInput{Message: &chatmessage.ChatMessage{ID: "msg_1"}})
	s.Require().NoError(err)

	s.True(s.mr.Exists("chat_message:msg_1"))
	members, err := s.mr.ZMembers("chat_messages")
	s.Require().NoError(err)
	s.Equal([]string{"msg_1"}, members)
}

func (s *RedisCreateTestSuite) TestFailedCreateLeavesNothing() {
	s.mr.SetError("ERR store offline")
	_, err := s.repo.Create(s.ctx, chatmessage.CreateInput{Message: &chatmessage.ChatMessage{ID: "msg_1"}})
	s.Require().Error(err)
	s.mr.SetError("")

	s.False(s.mr.Exists("chat_message:msg_1"))
	s.False(s.mr.Exists("chat_messages"))

	listed, err := s.repo.List(s.ctx, chatmessage.ListInput{})
	s.Require().NoError(err)
	s.Empty(listed.Messages)
}

func (s *RedisCreateTestSuite) TestConcurrentCreatesOfOneID() {
	const writers = 8

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.Create(s.ctx, chatmessage.CreateInput{Message: &chatmessage.ChatMessage{ID: "msg_1"}})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.IsAlreadyExists(err):
				dupes++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, created)
	s.Equal(writers-1, dupes)

	members, err := s.mr.ZMembers("chat_messages")
	s.Require().NoError(err)
	s.Equal([]string{"msg_1"}, members)
}
