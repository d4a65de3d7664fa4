package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/codequest-game/codequest/internal/model"
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

func (s *StorageSuite) seedQuestion(difficulty int) *model.Question {
	question := &model.Question{
		Text:       "q",
		Difficulty: difficulty,
		Choices: []model.Choice{
			{Text: "right", IsCorrect: true},
			{Text: "wrong"},
		},
	}
	s.Require().NoError(s.storage.SaveQuestion(s.ctx, question))
	return question
}

// User tests

func (s *StorageSuite) TestPing() {
	s.NoError(s.storage.Ping(s.ctx))
}

func (s *StorageSuite) TestCreateAndGetUser() {
	id, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	user, err := s.storage.GetUser(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(id, user.ID)
	s.Equal("alice", user.Username)
	s.Equal(0, user.XP)
	s.Equal(1, user.Level)
	s.False(user.CreatedAt.IsZero())
}

func (s *StorageSuite) TestCreateUserDuplicate() {
	_, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	_, err = s.storage.CreateUser(s.ctx, "alice")
	s.ErrorIs(err, model.ErrDuplicateUsername)
}

func (s *StorageSuite) TestCreateUserDuplicateDifferentCase() {
	_, err := s.storage.CreateUser(s.ctx, "Alice")
	s.Require().NoError(err)

	_, err = s.storage.CreateUser(s.ctx, "ALICE")
	s.ErrorIs(err, model.ErrDuplicateUsername)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, 9999)
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestUserExists() {
	_, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	exists, err := s.storage.UserExists(s.ctx, "ALICE")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.storage.UserExists(s.ctx, "bob")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestGetUserID() {
	id, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	resolved, err := s.storage.GetUserID(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(id, resolved)

	_, err = s.storage.GetUserID(s.ctx, "bob")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestSaveUser() {
	id, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	user, err := s.storage.GetUser(s.ctx, id)
	s.Require().NoError(err)
	user.ApplyXP(150)
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	stored, err := s.storage.GetUser(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(150, stored.XP)
	s.Equal(2, stored.Level)
}

func (s *StorageSuite) TestSaveUserReturnsCopy() {
	id, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	user, err := s.storage.GetUser(s.ctx, id)
	s.Require().NoError(err)
	user.XP = 999

	stored, err := s.storage.GetUser(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(0, stored.XP)
}

func (s *StorageSuite) TestUpdateUsername() {
	id, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	s.Require().NoError(s.storage.UpdateUsername(s.ctx, id, "alice_v2"))

	resolved, err := s.storage.GetUserID(s.ctx, "alice_v2")
	s.Require().NoError(err)
	s.Equal(id, resolved)

	_, err = s.storage.GetUserID(s.ctx, "alice")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestUpdateUsernameTaken() {
	_, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)
	id, err := s.storage.CreateUser(s.ctx, "bob")
	s.Require().NoError(err)

	s.ErrorIs(s.storage.UpdateUsername(s.ctx, id, "Alice"), model.ErrDuplicateUsername)
}

func (s *StorageSuite) TestUpdateUsernameSameUserDifferentCase() {
	id, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	// Changing only the casing of your own name is allowed
	s.NoError(s.storage.UpdateUsername(s.ctx, id, "Alice"))
}

func (s *StorageSuite) TestDeleteUserCompleteCascades() {
	id, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	roundID, err := s.storage.CreateRound(s.ctx, id, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.storage.RecordAnswer(s.ctx, &model.AnswerSubmission{RoundID: roundID, QuestionID: 1, ChoiceID: 1}))

	s.Require().NoError(s.storage.DeleteUserComplete(s.ctx, id))

	_, err = s.storage.GetUser(s.ctx, id)
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.storage.GetRound(s.ctx, roundID)
	s.ErrorIs(err, model.ErrRoundNotFound)

	// The freed username can be claimed again
	_, err = s.storage.CreateUser(s.ctx, "alice")
	s.NoError(err)
}

// Question tests

func (s *StorageSuite) TestSaveQuestionAllocatesIDs() {
	question := s.seedQuestion(1)
	s.NotZero(question.ID)
	for _, c := range question.Choices {
		s.NotZero(c.ID)
	}
}

func (s *StorageSuite) TestGetQuestion() {
	question := s.seedQuestion(2)

	stored, err := s.storage.GetQuestion(s.ctx, question.ID)
	s.Require().NoError(err)
	s.Equal(question.ID, stored.ID)
	s.Len(stored.Choices, 2)
}

func (s *StorageSuite) TestGetQuestionNotFound() {
	_, err := s.storage.GetQuestion(s.ctx, 9999)
	s.ErrorIs(err, model.ErrQuestionNotFound)
}

func (s *StorageSuite) TestGetQuestionReturnsCopy() {
	question := s.seedQuestion(1)

	first, err := s.storage.GetQuestion(s.ctx, question.ID)
	s.Require().NoError(err)
	first.Choices[0].Text = "mutated"

	second, err := s.storage.GetQuestion(s.ctx, question.ID)
	s.Require().NoError(err)
	s.Equal("right", second.Choices[0].Text)
}

func (s *StorageSuite) TestGetQuestionsByDifficulty() {
	for i := 0; i < 5; i++ {
		s.seedQuestion(1)
	}
	s.seedQuestion(3)

	questions, err := s.storage.GetQuestionsByDifficulty(s.ctx, 1, 3)
	s.Require().NoError(err)
	s.Len(questions, 3)
	for _, q := range questions {
		s.Equal(1, q.Difficulty)
	}
}

func (s *StorageSuite) TestGetQuestionsByDifficultyFewerThanRequested() {
	s.seedQuestion(2)

	questions, err := s.storage.GetQuestionsByDifficulty(s.ctx, 2, 3)
	s.Require().NoError(err)
	s.Len(questions, 1)
}

func (s *StorageSuite) TestDeleteQuestion() {
	question := s.seedQuestion(1)

	s.Require().NoError(s.storage.DeleteQuestion(s.ctx, question.ID))

	_, err := s.storage.GetQuestion(s.ctx, question.ID)
	s.ErrorIs(err, model.ErrQuestionNotFound)
}

// Round tests

func (s *StorageSuite) TestCreateAndGetRound() {
	id, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)

	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	roundID, err := s.storage.CreateRound(s.ctx, id, started)
	s.Require().NoError(err)

	round, err := s.storage.GetRound(s.ctx, roundID)
	s.Require().NoError(err)
	s.Equal(id, round.UserID)
	s.Equal(started, round.StartedAt)
	s.False(round.IsClosed())
}

func (s *StorageSuite) TestCreateRoundUnknownUser() {
	_, err := s.storage.CreateRound(s.ctx, 9999, time.Now())
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestSaveRound() {
	id, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)
	roundID, err := s.storage.CreateRound(s.ctx, id, time.Now())
	s.Require().NoError(err)

	round, err := s.storage.GetRound(s.ctx, roundID)
	s.Require().NoError(err)
	round.CompletedAt = time.Now()
	round.Score = 40
	round.XPEarned = 40
	s.Require().NoError(s.storage.SaveRound(s.ctx, round))

	stored, err := s.storage.GetRound(s.ctx, roundID)
	s.Require().NoError(err)
	s.True(stored.IsClosed())
	s.Equal(40, stored.Score)
}

func (s *StorageSuite) TestRecordAndGetAnswers() {
	id, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)
	roundID, err := s.storage.CreateRound(s.ctx, id, time.Now())
	s.Require().NoError(err)

	s.Require().NoError(s.storage.RecordAnswer(s.ctx, &model.AnswerSubmission{RoundID: roundID, QuestionID: 1, ChoiceID: 11, TimeSpentSec: 5}))
	s.Require().NoError(s.storage.RecordAnswer(s.ctx, &model.AnswerSubmission{RoundID: roundID, QuestionID: 2, ChoiceID: 22, TimeSpentSec: 8}))

	answers, err := s.storage.GetAnswersForRound(s.ctx, roundID)
	s.Require().NoError(err)
	s.Require().Len(answers, 2)
	s.Equal(model.QuestionID(1), answers[0].QuestionID)
	s.Equal(model.QuestionID(2), answers[1].QuestionID)
}

func (s *StorageSuite) TestRecordAnswerUnknownRound() {
	err := s.storage.RecordAnswer(s.ctx, &model.AnswerSubmission{RoundID: 9999})
	s.ErrorIs(err, model.ErrRoundNotFound)
}

func (s *StorageSuite) TestDeleteRound() {
	id, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)
	roundID, err := s.storage.CreateRound(s.ctx, id, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.storage.RecordAnswer(s.ctx, &model.AnswerSubmission{RoundID: roundID, QuestionID: 1, ChoiceID: 1}))

	s.Require().NoError(s.storage.DeleteRound(s.ctx, roundID))

	_, err = s.storage.GetRound(s.ctx, roundID)
	s.ErrorIs(err, model.ErrRoundNotFound)
	_, err = s.storage.GetAnswersForRound(s.ctx, roundID)
	s.ErrorIs(err, model.ErrRoundNotFound)
}

// Ranking tests

func (s *StorageSuite) closeRound(userID model.UserID, score int, completedAt time.Time) {
	roundID, err := s.storage.CreateRound(s.ctx, userID, completedAt.Add(-time.Minute))
	s.Require().NoError(err)
	round, err := s.storage.GetRound(s.ctx, roundID)
	s.Require().NoError(err)
	round.CompletedAt = completedAt
	round.Score = score
	round.XPEarned = score
	s.Require().NoError(s.storage.SaveRound(s.ctx, round))
}

func (s *StorageSuite) TestGetTopRanking() {
	aliceID, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)
	bobID, err := s.storage.CreateUser(s.ctx, "bob")
	s.Require().NoError(err)

	alice, err := s.storage.GetUser(s.ctx, aliceID)
	s.Require().NoError(err)
	alice.ApplyXP(50)
	s.Require().NoError(s.storage.SaveUser(s.ctx, alice))

	bob, err := s.storage.GetUser(s.ctx, bobID)
	s.Require().NoError(err)
	bob.ApplyXP(150)
	s.Require().NoError(s.storage.SaveUser(s.ctx, bob))

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.closeRound(bobID, 100, now)
	s.closeRound(bobID, 50, now.Add(time.Hour))
	s.closeRound(aliceID, 50, now)

	entries, err := s.storage.GetTopRanking(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	s.Equal("bob", entries[0].Username)
	s.Equal(150, entries[0].XP)
	s.Equal(2, entries[0].Level)
	s.Equal(2, entries[0].RoundsPlayed)
	s.InDelta(75.0, entries[0].AvgScore, 0.001)
	s.Equal(now.Add(time.Hour), entries[0].LastRoundAt)

	s.Equal("alice", entries[1].Username)
	s.Equal(1, entries[1].RoundsPlayed)
}

func (s *StorageSuite) TestGetTopRankingTieBreaksByUsername() {
	_, err := s.storage.CreateUser(s.ctx, "zoe")
	s.Require().NoError(err)
	_, err = s.storage.CreateUser(s.ctx, "amy")
	s.Require().NoError(err)

	entries, err := s.storage.GetTopRanking(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("amy", entries[0].Username)
	s.Equal("zoe", entries[1].Username)
}

func (s *StorageSuite) TestGetTopRankingAppliesLimit() {
	for _, name := range []string{"aaa", "bbb", "ccc"} {
		_, err := s.storage.CreateUser(s.ctx, name)
		s.Require().NoError(err)
	}

	entries, err := s.storage.GetTopRanking(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(entries, 2)
}
