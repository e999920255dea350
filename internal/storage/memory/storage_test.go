package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/minisport/arena/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:       "player-1",
		Username: "alice",
	}

	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	got, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestApplyScoreDelta() {
	player := &model.Player{ID: "player-1", Username: "alice", XP: 900}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	updated, err := s.storage.ApplyScoreDelta(s.ctx, "player-1", model.ScoreDelta{
		Points: 2000,
		XP:     1000,
		Coins:  200,
		Win:    true,
	})
	s.Require().NoError(err)

	s.Equal(2000, updated.TotalPoints)
	s.Equal(1900, updated.XP)
	s.Equal(200, updated.Coins)
	s.Equal(1, updated.GamesPlayed)
	s.Equal(1, updated.Wins)
	s.Equal(0, updated.Losses)
	s.Equal(2, updated.Level)
}

func (s *StorageSuite) TestApplyScoreDeltaMissingPlayer() {
	_, err := s.storage.ApplyScoreDelta(s.ctx, "missing", model.ScoreDelta{Points: 10})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	session := &model.Session{
		ID:       "sess-1",
		GameType: model.GameTypeRunning,
		Mode:     model.ModeOneVsOne,
		Status:   model.SessionWaiting,
		Players: []model.SessionPlayer{
			{PlayerID: "player-1", Username: "alice"},
		},
	}

	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	got, err := s.storage.GetSession(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(model.SessionWaiting, got.Status)
	s.Len(got.Players, 1)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestSessionCopyIsolation() {
	session := &model.Session{ID: "sess-1", Status: model.SessionWaiting}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	got, _ := s.storage.GetSession(s.ctx, "sess-1")
	got.Status = model.SessionCancelled

	again, _ := s.storage.GetSession(s.ctx, "sess-1")
	s.Equal(model.SessionWaiting, again.Status)
}

// Result tests

func (s *StorageSuite) TestSaveResultRejectsDuplicate() {
	result := &model.MatchResult{ID: "r1", SessionID: "sess-1", PlayerID: "player-1", Score: 100}
	s.Require().NoError(s.storage.SaveResult(s.ctx, result))

	err := s.storage.SaveResult(s.ctx, &model.MatchResult{ID: "r2", SessionID: "sess-1", PlayerID: "player-1"})
	s.ErrorIs(err, model.ErrResultAlreadyExists)

	results, err := s.storage.GetResultsForSession(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Len(results, 1)
}

func (s *StorageSuite) TestGetResultNotFound() {
	_, err := s.storage.GetResult(s.ctx, "sess-1", "player-1")
	s.ErrorIs(err, model.ErrResultNotFound)
}

// Stats tests

func (s *StorageSuite) TestSaveAndGetStats() {
	stats := &model.PlayerStats{
		PlayerID: "player-1",
		GameType: model.GameTypeRunning,
		Wins:     3,
	}
	s.Require().NoError(s.storage.SaveStats(s.ctx, stats))

	got, err := s.storage.GetStats(s.ctx, "player-1", model.GameTypeRunning)
	s.Require().NoError(err)
	s.Equal(3, got.Wins)

	_, err = s.storage.GetStats(s.ctx, "player-1", model.GameTypeJumping)
	s.ErrorIs(err, model.ErrStatsNotFound)
}

// Queue tests

func queueKey() model.QueueKey {
	return model.QueueKey{GameType: model.GameTypeRunning, Mode: model.ModeOneVsOne}
}

func entry(playerID model.PlayerID) model.QueueEntry {
	return model.QueueEntry{
		PlayerID:     playerID,
		ConnectionID: model.ConnectionID("conn-" + playerID),
		GameType:     model.GameTypeRunning,
		Mode:         model.ModeOneVsOne,
		JoinedAt:     time.Now(),
	}
}

func (s *StorageSuite) TestEnqueueReturnsPosition() {
	pos, err := s.storage.EnqueueEntry(s.ctx, queueKey(), entry("p1"), 0)
	s.Require().NoError(err)
	s.Equal(1, pos)

	pos, err = s.storage.EnqueueEntry(s.ctx, queueKey(), entry("p2"), 0)
	s.Require().NoError(err)
	s.Equal(2, pos)
}

func (s *StorageSuite) TestEnqueueRejectsDuplicatePlayer() {
	_, err := s.storage.EnqueueEntry(s.ctx, queueKey(), entry("p1"), 0)
	s.Require().NoError(err)

	_, err = s.storage.EnqueueEntry(s.ctx, queueKey(), entry("p1"), 0)
	s.ErrorIs(err, model.ErrAlreadyQueued)
}

func (s *StorageSuite) TestEnqueueEnforcesMaxDepth() {
	_, err := s.storage.EnqueueEntry(s.ctx, queueKey(), entry("p1"), 1)
	s.Require().NoError(err)

	_, err = s.storage.EnqueueEntry(s.ctx, queueKey(), entry("p2"), 1)
	s.ErrorIs(err, model.ErrQueueFull)
}

func (s *StorageSuite) TestDequeuePairFIFO() {
	for _, id := range []model.PlayerID{"p1", "p2", "p3"} {
		_, err := s.storage.EnqueueEntry(s.ctx, queueKey(), entry(id), 0)
		s.Require().NoError(err)
	}

	first, second, err := s.storage.DequeuePair(s.ctx, queueKey())
	s.Require().NoError(err)
	s.Require().NotNil(first)
	s.Require().NotNil(second)
	s.Equal(model.PlayerID("p1"), first.PlayerID)
	s.Equal(model.PlayerID("p2"), second.PlayerID)

	length, _ := s.storage.QueueLength(s.ctx, queueKey())
	s.Equal(1, length)
}

func (s *StorageSuite) TestDequeuePairReturnsNothingBelowTwo() {
	_, err := s.storage.EnqueueEntry(s.ctx, queueKey(), entry("p1"), 0)
	s.Require().NoError(err)

	first, second, err := s.storage.DequeuePair(s.ctx, queueKey())
	s.Require().NoError(err)
	s.Nil(first)
	s.Nil(second)

	length, _ := s.storage.QueueLength(s.ctx, queueKey())
	s.Equal(1, length)
}

func (s *StorageSuite) TestDequeuePairExclusiveUnderConcurrency() {
	const total = 40
	for i := 0; i < total; i++ {
		_, err := s.storage.EnqueueEntry(s.ctx, queueKey(), entry(model.PlayerID(string(rune('A'+i)))), 0)
		s.Require().NoError(err)
	}

	var mu sync.Mutex
	claimed := make(map[model.PlayerID]int)
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, second, err := s.storage.DequeuePair(s.ctx, queueKey())
			s.NoError(err)
			if first == nil {
				return
			}
			mu.Lock()
			claimed[first.PlayerID]++
			claimed[second.PlayerID]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Every claimed entry is claimed exactly once
	for id, count := range claimed {
		s.Equalf(1, count, "entry %s claimed %d times", id, count)
	}
	s.Len(claimed, total)
}

func (s *StorageSuite) TestRemoveQueueEntry() {
	_, err := s.storage.EnqueueEntry(s.ctx, queueKey(), entry("p1"), 0)
	s.Require().NoError(err)

	removed, err := s.storage.RemoveQueueEntry(s.ctx, queueKey(), "p1")
	s.Require().NoError(err)
	s.Require().NotNil(removed)
	s.Equal(model.PlayerID("p1"), removed.PlayerID)

	// Second removal is a no-op
	removed, err = s.storage.RemoveQueueEntry(s.ctx, queueKey(), "p1")
	s.Require().NoError(err)
	s.Nil(removed)
}

func (s *StorageSuite) TestQueueKeysListsNonEmptyQueues() {
	other := model.QueueKey{GameType: model.GameTypeJumping, Mode: model.ModeBattleRoyale}
	_, err := s.storage.EnqueueEntry(s.ctx, queueKey(), entry("p1"), 0)
	s.Require().NoError(err)
	e := entry("p2")
	e.GameType = other.GameType
	e.Mode = other.Mode
	_, err = s.storage.EnqueueEntry(s.ctx, other, e, 0)
	s.Require().NoError(err)

	keys, err := s.storage.QueueKeys(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]model.QueueKey{queueKey(), other}, keys)
}

// Score index tests

func (s *StorageSuite) TestIncrementScoreAndRank() {
	_, err := s.storage.IncrementScore(s.ctx, "a", 500)
	s.Require().NoError(err)
	_, err = s.storage.IncrementScore(s.ctx, "b", 300)
	s.Require().NoError(err)

	rank, err := s.storage.ScoreRank(s.ctx, "b")
	s.Require().NoError(err)
	s.Equal(2, rank)

	top, err := s.storage.TopScores(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal([]model.RankedScore{{PlayerID: "a", Score: 500}, {PlayerID: "b", Score: 300}}, top)
}

func (s *StorageSuite) TestScoreRankTieBreaksByPlayerID() {
	for _, id := range []model.PlayerID{"c", "a", "b"} {
		_, err := s.storage.IncrementScore(s.ctx, id, 100)
		s.Require().NoError(err)
	}

	top, err := s.storage.TopScores(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal([]model.RankedScore{
		{PlayerID: "a", Score: 100},
		{PlayerID: "b", Score: 100},
		{PlayerID: "c", Score: 100},
	}, top)

	rank, err := s.storage.ScoreRank(s.ctx, "c")
	s.Require().NoError(err)
	s.Equal(3, rank)
}

func (s *StorageSuite) TestScoreRankNotRanked() {
	_, err := s.storage.ScoreRank(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotRanked)
}

func (s *StorageSuite) TestReplaceScoresSwapsWholesale() {
	_, err := s.storage.IncrementScore(s.ctx, "old", 999)
	s.Require().NoError(err)

	err = s.storage.ReplaceScores(s.ctx, []model.RankedScore{
		{PlayerID: "x", Score: 10},
		{PlayerID: "y", Score: 20},
	})
	s.Require().NoError(err)

	_, err = s.storage.ScoreRank(s.ctx, "old")
	s.ErrorIs(err, model.ErrPlayerNotRanked)

	top, err := s.storage.TopScores(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal([]model.RankedScore{{PlayerID: "y", Score: 20}, {PlayerID: "x", Score: 10}}, top)
}

func (s *StorageSuite) TestReplaceScoresConcurrentWithReaders() {
	scores := make([]model.RankedScore, 50)
	for i := range scores {
		scores[i] = model.RankedScore{PlayerID: model.PlayerID(rune('A' + i)), Score: i + 1}
	}
	s.Require().NoError(s.storage.ReplaceScores(s.ctx, scores))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = s.storage.ReplaceScores(s.ctx, scores)
		}
	}()

	for i := 0; i < 100; i++ {
		top, err := s.storage.TopScores(s.ctx, len(scores))
		s.Require().NoError(err)
		// Readers always see the complete index, never a partial rebuild
		s.Len(top, len(scores))
	}
	<-done
}
