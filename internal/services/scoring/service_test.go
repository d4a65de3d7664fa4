package scoring

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/codequest-game/codequest/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
}

// Helper to build a question with one correct and one wrong choice
func (s *ServiceSuite) question(id model.QuestionID, difficulty int) *model.Question {
	return &model.Question{
		ID:         id,
		Text:       "q",
		Difficulty: difficulty,
		Choices: []model.Choice{
			{ID: model.ChoiceID(id*10 + 1), Text: "right", IsCorrect: true},
			{ID: model.ChoiceID(id*10 + 2), Text: "wrong"},
		},
	}
}

// BasePoints tests

func (s *ServiceSuite) TestBasePointsPerTier() {
	s.Equal(10, s.service.BasePoints(1))
	s.Equal(20, s.service.BasePoints(2))
	s.Equal(30, s.service.BasePoints(3))
}

// ScoreAnswer tests

func (s *ServiceSuite) TestScoreCorrectAnswer() {
	q := s.question(1, 2)
	s.Equal(20, s.service.ScoreAnswer(q, 11))
}

func (s *ServiceSuite) TestScoreWrongAnswer() {
	q := s.question(1, 2)
	s.Equal(0, s.service.ScoreAnswer(q, 12))
}

func (s *ServiceSuite) TestScoreUnknownChoice() {
	q := s.question(1, 3)
	s.Equal(0, s.service.ScoreAnswer(q, 999))
}

// AggregateRound tests

func (s *ServiceSuite) TestAggregateEmptyRound() {
	result := s.service.AggregateRound(nil, nil)

	s.Equal(0, result.Score)
	s.Equal(0, result.XPEarned)
	s.Equal(0, result.CorrectCount)
	s.Equal(0, result.TotalTimeSec)
}

func (s *ServiceSuite) TestAggregateMixedAnswers() {
	questions := map[model.QuestionID]*model.Question{
		1: s.question(1, 1),
		2: s.question(2, 2),
		3: s.question(3, 3),
	}
	answers := []*model.AnswerSubmission{
		{QuestionID: 1, ChoiceID: 11, TimeSpentSec: 5},  // correct, 10
		{QuestionID: 2, ChoiceID: 22, TimeSpentSec: 8},  // wrong, 0
		{QuestionID: 3, ChoiceID: 31, TimeSpentSec: 12}, // correct, 30
	}

	result := s.service.AggregateRound(questions, answers)

	s.Equal(40, result.Score)
	s.Equal(40, result.XPEarned)
	s.Equal(2, result.CorrectCount)
	s.Equal(25, result.TotalTimeSec)
}

func (s *ServiceSuite) TestAggregateXPEqualsScore() {
	questions := map[model.QuestionID]*model.Question{1: s.question(1, 2)}
	answers := []*model.AnswerSubmission{{QuestionID: 1, ChoiceID: 11}}

	result := s.service.AggregateRound(questions, answers)

	s.Equal(result.Score, result.XPEarned)
	s.Equal(20, result.Score)
}

func (s *ServiceSuite) TestAggregateOrderIndependent() {
	questions := map[model.QuestionID]*model.Question{
		1: s.question(1, 1),
		2: s.question(2, 2),
		3: s.question(3, 3),
	}
	answers := []*model.AnswerSubmission{
		{QuestionID: 1, ChoiceID: 11, TimeSpentSec: 1},
		{QuestionID: 2, ChoiceID: 21, TimeSpentSec: 2},
		{QuestionID: 3, ChoiceID: 32, TimeSpentSec: 3},
	}
	reversed := []*model.AnswerSubmission{answers[2], answers[1], answers[0]}

	forward := s.service.AggregateRound(questions, answers)
	backward := s.service.AggregateRound(questions, reversed)

	s.Equal(forward, backward)
}

func (s *ServiceSuite) TestAggregateMissingQuestionScoresZero() {
	questions := map[model.QuestionID]*model.Question{1: s.question(1, 1)}
	answers := []*model.AnswerSubmission{
		{QuestionID: 1, ChoiceID: 11, TimeSpentSec: 4},
		{QuestionID: 99, ChoiceID: 991, TimeSpentSec: 6}, // question gone
	}

	result := s.service.AggregateRound(questions, answers)

	s.Equal(10, result.Score)
	s.Equal(1, result.CorrectCount)
	// Time still counts even when the question is gone
	s.Equal(10, result.TotalTimeSec)
}
