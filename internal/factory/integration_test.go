package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/codequest-game/codequest/internal/model"
)

// IntegrationSuite drives full game flows through the wired application
type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.SeedQuestionBank(s.ctx))
}

// answerAll submits an answer for every question, choosing the correct
// choice when correct is true.
func (s *IntegrationSuite) answerAll(roundID model.RoundID, questions []*model.Question, correct bool, timeSpentSec int) {
	for _, question := range questions {
		choiceID := question.Choices[0].ID
		if wantID, ok := question.CorrectChoice(); ok {
			if correct {
				choiceID = wantID
			} else {
				for _, c := range question.Choices {
					if c.ID != wantID {
						choiceID = c.ID
						break
					}
				}
			}
		}
		err := s.app.GameService.SubmitAnswer(s.ctx, roundID, question.ID, choiceID, timeSpentSec)
		s.Require().NoError(err)
	}
}

func (s *IntegrationSuite) TestPerfectRoundFlow() {
	userID, err := s.app.GameService.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	roundID, err := s.app.GameService.StartNewRound(s.ctx, userID)
	s.Require().NoError(err)

	questions, err := s.app.GameService.GetQuestionsForRound(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(questions, 3)

	s.answerAll(roundID, questions, true, 5)

	s.app.MockClock.Advance(15 * time.Second)
	result, err := s.app.GameService.CompleteRound(s.ctx, roundID)
	s.Require().NoError(err)
	s.Equal(60, result.Score)
	s.Equal(60, result.XPEarned)
	s.Equal(3, result.CorrectCount)
	s.Equal(15, result.TotalTimeSec)

	user, err := s.app.GameService.GetUserStats(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(60, user.XP)
	s.Equal(1, user.Level)
}

func (s *IntegrationSuite) TestLevelUpAcrossRounds() {
	userID, err := s.app.GameService.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	// Two perfect hard rounds earn 90 XP each, crossing level 1 -> 2
	for i := 0; i < 2; i++ {
		roundID, err := s.app.GameService.StartNewRound(s.ctx, userID)
		s.Require().NoError(err)

		questions, err := s.app.GameService.GetQuestionsForRound(s.ctx, 3)
		s.Require().NoError(err)
		s.answerAll(roundID, questions, true, 3)

		_, err = s.app.GameService.CompleteRound(s.ctx, roundID)
		s.Require().NoError(err)
	}

	user, err := s.app.GameService.GetUserStats(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(180, user.XP)
	s.Equal(2, user.Level)
}

func (s *IntegrationSuite) TestFailedRoundEarnsNothing() {
	userID, err := s.app.GameService.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	roundID, err := s.app.GameService.StartNewRound(s.ctx, userID)
	s.Require().NoError(err)

	questions, err := s.app.GameService.GetQuestionsForRound(s.ctx, 1)
	s.Require().NoError(err)
	s.answerAll(roundID, questions, false, 10)

	result, err := s.app.GameService.CompleteRound(s.ctx, roundID)
	s.Require().NoError(err)
	s.Equal(0, result.Score)
	s.Equal(0, result.CorrectCount)

	user, err := s.app.GameService.GetUserStats(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(0, user.XP)
	s.Equal(1, user.Level)
}

func (s *IntegrationSuite) TestLocatorServesWiredGraph() {
	svc, err := s.app.Locator.Get(s.ctx)
	s.Require().NoError(err)

	// The locator's service shares storage with the factory's graph
	userID, err := svc.CreateUser(s.ctx, "bob")
	s.Require().NoError(err)

	exists, err := s.app.GameService.UserExists(s.ctx, "bob")
	s.Require().NoError(err)
	s.True(exists)

	again, err := s.app.Locator.Get(s.ctx)
	s.Require().NoError(err)
	s.Same(svc, again)

	_, err = svc.GetUserByID(s.ctx, userID)
	s.NoError(err)
}

func (s *IntegrationSuite) TestRankingAfterPlay() {
	aliceID, err := s.app.GameService.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)
	_, err = s.app.GameService.CreateUser(s.ctx, "bob")
	s.Require().NoError(err)

	roundID, err := s.app.GameService.StartNewRound(s.ctx, aliceID)
	s.Require().NoError(err)
	questions, err := s.app.GameService.GetQuestionsForRound(s.ctx, 1)
	s.Require().NoError(err)
	s.answerAll(roundID, questions, true, 4)
	_, err = s.app.GameService.CompleteRound(s.ctx, roundID)
	s.Require().NoError(err)

	entries, err := s.app.GameService.GetTopRanking(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("alice", entries[0].Username)
	s.Equal(30, entries[0].XP)
	s.Equal(1, entries[0].RoundsPlayed)
	s.Equal("bob", entries[1].Username)
}

func (s *IntegrationSuite) TestDeleteUserRemovesHistory() {
	userID, err := s.app.GameService.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	roundID, err := s.app.GameService.StartNewRound(s.ctx, userID)
	s.Require().NoError(err)

	s.Require().NoError(s.app.GameService.DeleteUser(s.ctx, userID))

	_, err = s.app.GameService.GetUserByID(s.ctx, userID)
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.app.Storage.GetRound(s.ctx, roundID)
	s.ErrorIs(err, model.ErrRoundNotFound)

	entries, err := s.app.GameService.GetTopRanking(s.ctx)
	s.Require().NoError(err)
	s.Empty(entries)
}
