package session

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
	"github.com/minisport/arena/internal/services/stats"
	"github.com/minisport/arena/internal/storage/memory"
	"github.com/minisport/arena/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage     *memory.Storage
	clock       *mocks.MockClock
	random      *mocks.MockRandom
	broadcaster *mocks.MockBroadcaster
	index       leaderboard.Index
	controller  *Controller
	ctx         context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.broadcaster = mocks.NewMockBroadcaster()
	s.index = leaderboard.NewLive(s.storage, logger)
	s.controller = NewController(
		s.storage,
		rewards.New(rewards.DefaultConfig()),
		stats.New(s.storage, s.clock, logger),
		s.index,
		s.broadcaster,
		s.clock,
		s.random,
		logger,
	)
	s.ctx = context.Background()

	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "p1", Username: "alice"}))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "p2", Username: "bob"}))
}

func (s *ControllerSuite) createMatch() *model.Session {
	session, err := s.controller.CreateMatch(s.ctx, model.GameTypeRunning, model.ModeOneVsOne,
		model.QueueEntry{PlayerID: "p1"},
		model.QueueEntry{PlayerID: "p2"},
	)
	s.Require().NoError(err)
	return session
}

func (s *ControllerSuite) TestCreateStartsWaiting() {
	s.random.QueueString("abc123def456")

	session, err := s.controller.Create(s.ctx, "p1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)
	s.Equal(model.SessionID("sess_abc123def456"), session.ID)
	s.Equal(model.SessionWaiting, session.Status)
	s.Require().Len(session.Players, 1)
	s.Equal("alice", session.Players[0].Username)
}

func (s *ControllerSuite) TestCreateUnknownPlayer() {
	_, err := s.controller.Create(s.ctx, "ghost", model.GameTypeRunning, model.ModeOneVsOne)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ControllerSuite) TestCreateNormalizesGameTypeAndMode() {
	session, err := s.controller.Create(s.ctx, "p1", "not-a-game", "not-a-mode")
	s.Require().NoError(err)
	s.Equal(model.GameTypeRunning, session.GameType)
	s.Equal(model.ModeOneVsOne, session.Mode)
}

func (s *ControllerSuite) TestCreateMatchStartsCountdown() {
	session := s.createMatch()
	s.Equal(model.SessionCountdown, session.Status)
	s.Len(session.Players, 2)
}

func (s *ControllerSuite) TestJoinWaitingSession() {
	session, err := s.controller.Create(s.ctx, "p1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)

	joined, err := s.controller.Join(s.ctx, session.ID, "p2", "conn-2")
	s.Require().NoError(err)
	s.Len(joined.Players, 2)

	events := s.broadcaster.SessionEvents(session.ID)
	s.Require().Len(events, 1)
	s.Equal(model.EventPlayerJoined, events[0].Type)
}

func (s *ControllerSuite) TestJoinAfterCountdownRejected() {
	session := s.createMatch()

	_, err := s.controller.Join(s.ctx, session.ID, "p1", "conn-1")
	s.ErrorIs(err, model.ErrInvalidSessionState)
}

func (s *ControllerSuite) TestLeaveAnnouncesAndLastLeaverCancels() {
	session := s.createMatch()

	s.Require().NoError(s.controller.Leave(s.ctx, session.ID, "p1"))
	events := s.broadcaster.SessionEvents(session.ID)
	s.Require().Len(events, 1)
	s.Equal(model.EventPlayerLeft, events[0].Type)

	s.Require().NoError(s.controller.Leave(s.ctx, session.ID, "p2"))

	got, err := s.controller.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionCancelled, got.Status)
}

func (s *ControllerSuite) TestBeginRecordsStart() {
	session := s.createMatch()

	began, err := s.controller.Begin(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionActive, began.Status)
	s.Require().NotNil(began.StartedAt)
	s.Equal(s.clock.CurrentTime, *began.StartedAt)
}

func (s *ControllerSuite) TestBeginWithoutOpponentRejected() {
	session, err := s.controller.Create(s.ctx, "p1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)

	_, err = s.controller.Begin(s.ctx, session.ID)
	s.ErrorIs(err, model.ErrInsufficientPlayers)
}

func (s *ControllerSuite) TestBeginTerminalSessionRejected() {
	session := s.createMatch()
	s.Require().NoError(s.controller.Cancel(s.ctx, session.ID, "test"))

	_, err := s.controller.Begin(s.ctx, session.ID)
	s.ErrorIs(err, model.ErrInvalidSessionState)
}

func (s *ControllerSuite) TestFullLifecycle() {
	session := s.createMatch()
	_, err := s.controller.Begin(s.ctx, session.ID)
	s.Require().NoError(err)

	winner, err := s.controller.SubmitResult(s.ctx, session.ID, "p1", 100, 1, map[string]int{"laps": 3})
	s.Require().NoError(err)
	s.Equal(2000, winner.PointsEarned)
	s.Equal(1000, winner.XPEarned)

	loser, err := s.controller.SubmitResult(s.ctx, session.ID, "p2", 80, 2, nil)
	s.Require().NoError(err)
	s.Equal(1200, loser.PointsEarned)

	got, err := s.controller.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionFinished, got.Status)
	s.Equal(model.PlayerID("p1"), got.WinnerID)
	s.Require().NotNil(got.EndedAt)

	results, err := s.controller.Results(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Len(results, 2)
}

func (s *ControllerSuite) TestSettlementUpdatesPlayerStatsAndLeaderboard() {
	session := s.createMatch()
	_, err := s.controller.Begin(s.ctx, session.ID)
	s.Require().NoError(err)

	_, err = s.controller.SubmitResult(s.ctx, session.ID, "p1", 100, 1, nil)
	s.Require().NoError(err)

	player, err := s.storage.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(2000, player.TotalPoints)
	s.Equal(1000, player.XP)
	s.Equal(200, player.Coins)
	s.Equal(1, player.Wins)
	s.Equal(2, player.Level)

	agg, err := s.storage.GetStats(s.ctx, "p1", model.GameTypeRunning)
	s.Require().NoError(err)
	s.Equal(1, agg.GamesPlayed)
	s.Equal(1, agg.CurrentStreak)
	s.Equal(100, agg.BestScore)

	rank, err := s.index.RankOf(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(1, rank)
}

func (s *ControllerSuite) TestRankOneFinishesImmediately() {
	session := s.createMatch()
	_, err := s.controller.Begin(s.ctx, session.ID)
	s.Require().NoError(err)

	_, err = s.controller.SubmitResult(s.ctx, session.ID, "p1", 100, 1, nil)
	s.Require().NoError(err)

	got, err := s.controller.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionFinished, got.Status)

	// The finished broadcast happened once, on the rank-1 submission
	finished := 0
	for _, e := range s.broadcaster.SessionEvents(session.ID) {
		if e.Type == model.EventGameFinished {
			finished++
		}
	}
	s.Equal(1, finished)

	// The loser's late result is still recorded without re-finishing
	_, err = s.controller.SubmitResult(s.ctx, session.ID, "p2", 80, 2, nil)
	s.Require().NoError(err)

	results, err := s.controller.Results(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Len(results, 2)

	finished = 0
	for _, e := range s.broadcaster.SessionEvents(session.ID) {
		if e.Type == model.EventGameFinished {
			finished++
		}
	}
	s.Equal(1, finished)
}

func (s *ControllerSuite) TestLastSubmissionFinishesWithoutRankOne() {
	session := s.createMatch()
	_, err := s.controller.Begin(s.ctx, session.ID)
	s.Require().NoError(err)

	_, err = s.controller.SubmitResult(s.ctx, session.ID, "p1", 80, 2, nil)
	s.Require().NoError(err)

	got, err := s.controller.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionActive, got.Status)

	_, err = s.controller.SubmitResult(s.ctx, session.ID, "p2", 60, 3, nil)
	s.Require().NoError(err)

	got, err = s.controller.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionFinished, got.Status)
	s.Equal(model.PlayerID("p1"), got.WinnerID)
}

func (s *ControllerSuite) TestDuplicateSubmissionRejected() {
	session := s.createMatch()
	_, err := s.controller.Begin(s.ctx, session.ID)
	s.Require().NoError(err)

	_, err = s.controller.SubmitResult(s.ctx, session.ID, "p2", 80, 2, nil)
	s.Require().NoError(err)

	_, err = s.controller.SubmitResult(s.ctx, session.ID, "p2", 95, 1, nil)
	s.ErrorIs(err, model.ErrResultAlreadyExists)

	// No double rewards
	player, err := s.storage.GetPlayer(s.ctx, "p2")
	s.Require().NoError(err)
	s.Equal(1200, player.TotalPoints)
	s.Equal(1, player.GamesPlayed)

	results, err := s.controller.Results(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Len(results, 1)
}

func (s *ControllerSuite) TestNonParticipantRejected() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "p3", Username: "mallory"}))
	session := s.createMatch()
	_, err := s.controller.Begin(s.ctx, session.ID)
	s.Require().NoError(err)

	_, err = s.controller.SubmitResult(s.ctx, session.ID, "p3", 999, 1, nil)
	s.ErrorIs(err, model.ErrNotParticipant)
}

func (s *ControllerSuite) TestSubmitBeforePlayRejected() {
	s.random.QueueString("abc123def456")
	session, err := s.controller.Create(s.ctx, "p1", model.GameTypeRunning, model.ModeOneVsOne)
	s.Require().NoError(err)

	_, err = s.controller.SubmitResult(s.ctx, session.ID, "p1", 100, 1, nil)
	s.ErrorIs(err, model.ErrInvalidSessionState)
}

func (s *ControllerSuite) TestCancelAfterActiveLeavesNoResults() {
	session := s.createMatch()
	_, err := s.controller.Begin(s.ctx, session.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.controller.Cancel(s.ctx, session.ID, "host quit"))

	got, err := s.controller.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionCancelled, got.Status)

	results, err := s.controller.Results(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Empty(results)

	events := s.broadcaster.SessionEvents(session.ID)
	s.Require().NotEmpty(events)
	s.Equal(model.EventGameCancelled, events[len(events)-1].Type)
}

func (s *ControllerSuite) TestCancelFinishedSessionRejected() {
	session := s.createMatch()
	_, err := s.controller.Begin(s.ctx, session.ID)
	s.Require().NoError(err)
	_, err = s.controller.SubmitResult(s.ctx, session.ID, "p1", 100, 1, nil)
	s.Require().NoError(err)

	err = s.controller.Cancel(s.ctx, session.ID, "too late")
	s.ErrorIs(err, model.ErrInvalidSessionState)
}

func (s *ControllerSuite) TestSubmitAfterCancelRejected() {
	session := s.createMatch()
	_, err := s.controller.Begin(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.controller.Cancel(s.ctx, session.ID, "host quit"))

	_, err = s.controller.SubmitResult(s.ctx, session.ID, "p1", 100, 1, nil)
	s.ErrorIs(err, model.ErrInvalidSessionState)
}

// flakyStore fails ApplyScoreDelta a set number of times before delegating,
// simulating a transient store outage between the result append and the
// dependent total updates
type flakyStore struct {
	*memory.Storage
	scoreDeltaFailures int
}

func (f *flakyStore) ApplyScoreDelta(ctx context.Context, id model.PlayerID, delta model.ScoreDelta) (*model.Player, error) {
	if f.scoreDeltaFailures > 0 {
		f.scoreDeltaFailures--
		return nil, model.ErrStoreUnavailable
	}
	return f.Storage.ApplyScoreDelta(ctx, id, delta)
}

func (s *ControllerSuite) TestSettlementRetriesTransientStoreFailure() {
	logger := testutil.NopLogger()
	store := &flakyStore{Storage: memory.New(), scoreDeltaFailures: 1}
	controller := NewController(
		store,
		rewards.New(rewards.DefaultConfig()),
		stats.New(store, s.clock, logger),
		leaderboard.NewLive(store, logger),
		s.broadcaster,
		s.clock,
		s.random,
		logger,
	)

	s.Require().NoError(store.SavePlayer(s.ctx, &model.Player{ID: "p1", Username: "alice"}))
	s.Require().NoError(store.SavePlayer(s.ctx, &model.Player{ID: "p2", Username: "bob"}))

	session, err := controller.CreateMatch(s.ctx, model.GameTypeRunning, model.ModeOneVsOne,
		model.QueueEntry{PlayerID: "p1"},
		model.QueueEntry{PlayerID: "p2"},
	)
	s.Require().NoError(err)
	_, err = controller.Begin(s.ctx, session.ID)
	s.Require().NoError(err)

	// The transient failure is absorbed; totals land on the first submission
	result, err := controller.SubmitResult(s.ctx, session.ID, "p1", 100, 1, nil)
	s.Require().NoError(err)
	s.Equal(2000, result.PointsEarned)
	s.Equal(0, store.scoreDeltaFailures)

	player, err := store.GetPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(2000, player.TotalPoints)
	s.Equal(1, player.Wins)
}

func (s *ControllerSuite) TestConcurrentCancelAndSubmitOneWins() {
	for i := 0; i < 20; i++ {
		// Unique session IDs so each iteration settles against its own results
		s.random.QueueString(fmt.Sprintf("%012d", i))
		session := s.createMatch()
		_, err := s.controller.Begin(s.ctx, session.ID)
		s.Require().NoError(err)

		var wg sync.WaitGroup
		var cancelErr, submitErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			cancelErr = s.controller.Cancel(s.ctx, session.ID, "race")
		}()
		go func() {
			defer wg.Done()
			_, submitErr = s.controller.SubmitResult(s.ctx, session.ID, "p1", 100, 1, nil)
		}()
		wg.Wait()

		got, err := s.controller.Get(s.ctx, session.ID)
		s.Require().NoError(err)
		s.True(got.Status.IsTerminal())

		switch got.Status {
		case model.SessionCancelled:
			s.NoError(cancelErr)
			s.ErrorIs(submitErr, model.ErrInvalidSessionState)
		case model.SessionFinished:
			s.NoError(submitErr)
			s.ErrorIs(cancelErr, model.ErrInvalidSessionState)
		}
	}
}
