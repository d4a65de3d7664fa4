package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type QuestionSuite struct {
	suite.Suite
}

func TestQuestionSuite(t *testing.T) {
	suite.Run(t, new(QuestionSuite))
}

func (s *QuestionSuite) validQuestion() *Question {
	return &Question{
		ID:         1,
		Text:       "What is Go?",
		Difficulty: 2,
		Choices: []Choice{
			{ID: 11, Text: "A language", IsCorrect: true},
			{ID: 12, Text: "A board game"},
		},
	}
}

func (s *QuestionSuite) TestValidateOK() {
	s.NoError(s.validQuestion().Validate())
}

func (s *QuestionSuite) TestValidateBlankText() {
	q := s.validQuestion()
	q.Text = "   "
	s.Error(q.Validate())
}

func (s *QuestionSuite) TestValidateTextTooLong() {
	q := s.validQuestion()
	q.Text = strings.Repeat("x", QuestionTextMaxLen+1)
	s.Error(q.Validate())
}

func (s *QuestionSuite) TestValidateBadDifficulty() {
	q := s.validQuestion()
	q.Difficulty = 0
	s.Error(q.Validate())

	q.Difficulty = 4
	s.Error(q.Validate())
}

func (s *QuestionSuite) TestValidateBlankChoice() {
	q := s.validQuestion()
	q.Choices[1].Text = ""
	s.Error(q.Validate())
}

func (s *QuestionSuite) TestValidateNoCorrectChoice() {
	q := s.validQuestion()
	q.Choices[0].IsCorrect = false
	s.Error(q.Validate())
}

func (s *QuestionSuite) TestCorrectChoice() {
	q := s.validQuestion()
	id, ok := q.CorrectChoice()
	s.True(ok)
	s.Equal(ChoiceID(11), id)
}

func (s *QuestionSuite) TestCorrectChoiceMissing() {
	q := &Question{Choices: []Choice{{ID: 1, Text: "a"}}}
	_, ok := q.CorrectChoice()
	s.False(ok)
}
