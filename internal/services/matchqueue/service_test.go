package matchqueue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/minisport/arena/internal/dependencies/mocks"
	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/services/leaderboard"
	"github.com/minisport/arena/internal/services/rewards"
	"github.com/minisport/arena/internal/services/session"
	"github.com/minisport/arena/internal/services/stats"
	"github.com/minisport/arena/internal/storage/memory"
	"github.com/minisport/arena/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage     *memory.Storage
	clock       *mocks.MockClock
	random      *mocks.MockRandom
	broadcaster *mocks.MockBroadcaster
	service     *Service
	ctx         context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.broadcaster = mocks.NewMockBroadcaster()
	logger := testutil.NopLogger()

	sessions := session.NewController(
		s.storage,
		rewards.New(rewards.DefaultConfig()),
		stats.New(s.storage, s.clock, logger),
		leaderboard.NewLive(s.storage, logger),
		s.broadcaster,
		s.clock,
		s.random,
		logger,
	)
	s.service = New(s.storage, sessions, s.broadcaster, s.clock, DefaultConfig(), logger)
	s.ctx = context.Background()
}

func (s *ServiceSuite) seedPlayers(n int) []model.PlayerID {
	ids := make([]model.PlayerID, 0, n)
	for i := 0; i < n; i++ {
		id := model.PlayerID(fmt.Sprintf("p%d", i+1))
		err := s.storage.SavePlayer(s.ctx, &model.Player{
			ID:       id,
			Username: fmt.Sprintf("player%d", i+1),
			Level:    1,
			IsGuest:  true,
		})
		s.Require().NoError(err)
		ids = append(ids, id)
	}
	return ids
}

func (s *ServiceSuite) TestJoinQueuesFirstPlayer() {
	ids := s.seedPlayers(1)

	result, err := s.service.Join(s.ctx, ids[0], "conn-1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.Equal(1, result.Position)
	s.Nil(result.Session)

	depth, err := s.service.Depth(s.ctx, model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.Equal(1, depth)

	events := s.broadcaster.PlayerEvents(ids[0])
	s.Require().Len(events, 1)
	s.Equal(model.EventMatchQueued, events[0].Type)
	s.Equal(model.MatchQueuedPayload{Position: 1}, events[0].Payload)
}

func (s *ServiceSuite) TestJoinUnknownPlayer() {
	_, err := s.service.Join(s.ctx, "ghost", "conn-1", model.GameTypeRunning, model.ModeOneVsOne)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestJoinTwiceRejected() {
	ids := s.seedPlayers(1)

	_, err := s.service.Join(s.ctx, ids[0], "conn-1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)

	_, err = s.service.Join(s.ctx, ids[0], "conn-2", model.GameTypeRunning, model.ModeOneVsOne)
	s.ErrorIs(err, model.ErrAlreadyQueued)
}

func (s *ServiceSuite) TestSecondJoinPairs() {
	ids := s.seedPlayers(2)

	_, err := s.service.Join(s.ctx, ids[0], "conn-1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)

	result, err := s.service.Join(s.ctx, ids[1], "conn-2", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.Require().NotNil(result.Session)
	s.Equal(model.SessionCountdown, result.Session.Status)
	s.Len(result.Session.Players, 2)

	depth, err := s.service.Depth(s.ctx, model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.Equal(0, depth)

	// Both players hear about the match, each with the other as opponent
	p1Events := s.broadcaster.PlayerEvents(ids[0])
	s.Require().Len(p1Events, 2)
	s.Equal(model.EventMatchFound, p1Events[1].Type)
	s.Equal(model.MatchFoundPayload{
		SessionID:  result.Session.ID,
		OpponentID: ids[1],
	}, p1Events[1].Payload)

	p2Events := s.broadcaster.PlayerEvents(ids[1])
	s.Require().Len(p2Events, 2)
	s.Equal(model.MatchFoundPayload{
		SessionID:  result.Session.ID,
		OpponentID: ids[0],
	}, p2Events[1].Payload)
}

func (s *ServiceSuite) TestQueuesAreIndependent() {
	ids := s.seedPlayers(2)

	_, err := s.service.Join(s.ctx, ids[0], "conn-1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)

	result, err := s.service.Join(s.ctx, ids[1], "conn-2", model.GameTypeJumping, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.Nil(result.Session)
	s.Equal(1, result.Position)
}

func (s *ServiceSuite) TestNormalizesGameTypeAndMode() {
	ids := s.seedPlayers(2)

	_, err := s.service.Join(s.ctx, ids[0], "conn-1", "not-a-game", "not-a-mode")
	s.Require().NoError(err)

	// The default queue is the same one an explicit running/1v1 join lands in
	result, err := s.service.Join(s.ctx, ids[1], "conn-2", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.NotNil(result.Session)
}

func (s *ServiceSuite) TestQueueFull() {
	s.service.cfg.MaxDepth = 1
	ids := s.seedPlayers(2)

	_, err := s.service.Join(s.ctx, ids[0], "conn-1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)

	_, err = s.service.Join(s.ctx, ids[1], "conn-2", model.GameTypeRunning, model.ModeOneVsOne)
	s.ErrorIs(err, model.ErrQueueFull)
}

func (s *ServiceSuite) TestLeaveRemovesEntry() {
	ids := s.seedPlayers(1)

	_, err := s.service.Join(s.ctx, ids[0], "conn-1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)

	removed, err := s.service.Leave(s.ctx, ids[0], model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.Require().NotNil(removed)
	s.Equal(ids[0], removed.PlayerID)

	depth, err := s.service.Depth(s.ctx, model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.Equal(0, depth)
}

func (s *ServiceSuite) TestLeaveAfterPairingIsNoOp() {
	ids := s.seedPlayers(2)

	_, err := s.service.Join(s.ctx, ids[0], "conn-1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	_, err = s.service.Join(s.ctx, ids[1], "conn-2", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)

	removed, err := s.service.Leave(s.ctx, ids[0], model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.Nil(removed)
}

func (s *ServiceSuite) TestEveryPairProducesOneSession() {
	const players = 10
	ids := s.seedPlayers(players)
	for i := 0; i < players; i++ {
		s.random.QueueString(fmt.Sprintf("%012d", i))
	}

	sessions := make(map[model.SessionID]bool)
	for i, id := range ids {
		result, err := s.service.Join(s.ctx, id, model.ConnectionID(fmt.Sprintf("conn-%d", i)), model.GameTypeRunning, model.ModeOneVsOne)
		s.Require().NoError(err)
		if result.Session != nil {
			sessions[result.Session.ID] = true
		}
	}

	s.Len(sessions, players/2)

	depth, err := s.service.Depth(s.ctx, model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.Equal(0, depth)
}

func (s *ServiceSuite) TestConcurrentJoinsNeverPairTwice() {
	const players = 40
	ids := s.seedPlayers(players)

	// Unique session IDs so concurrent CreateMatch calls do not collide
	for i := 0; i < players; i++ {
		s.random.QueueString(fmt.Sprintf("%012d", i))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		errs      []error
		paired    = make(map[model.PlayerID]int)
		sessionID = make(map[model.SessionID]bool)
	)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id model.PlayerID) {
			defer wg.Done()
			result, err := s.service.Join(s.ctx, id, model.ConnectionID(fmt.Sprintf("conn-%d", i)), model.GameTypeRunning, model.ModeOneVsOne)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if result.Session == nil {
				return
			}
			sessionID[result.Session.ID] = true
			for _, p := range result.Session.Players {
				paired[p.PlayerID]++
			}
		}(i, id)
	}
	wg.Wait()

	s.Require().Empty(errs)

	s.Len(sessionID, players/2)
	s.Len(paired, players)
	for id, count := range paired {
		s.Equalf(1, count, "player %s paired %d times", id, count)
	}

	depth, err := s.service.Depth(s.ctx, model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.Equal(0, depth)
}

func (s *ServiceSuite) TestPruneRemovesStaleEntries() {
	ids := s.seedPlayers(3)

	_, err := s.service.Join(s.ctx, ids[0], "conn-1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	_, err = s.service.Join(s.ctx, ids[1], "conn-2", model.GameTypeJumping, model.ModeOneVsOne)
	s.Require().NoError(err)

	s.clock.Advance(3 * time.Minute)

	_, err = s.service.Join(s.ctx, ids[2], "conn-3", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)

	pruned, err := s.service.Prune(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, pruned)

	depth, err := s.service.Depth(s.ctx, model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.Equal(1, depth)
}

func (s *ServiceSuite) TestPruneNothingStale() {
	ids := s.seedPlayers(1)

	_, err := s.service.Join(s.ctx, ids[0], "conn-1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)

	pruned, err := s.service.Prune(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, pruned)
}
