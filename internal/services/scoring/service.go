package scoring

import "github.com/codequest-game/codequest/internal/model"

// PointsPerDifficulty is the base point multiplier per difficulty tier
const PointsPerDifficulty = 10

// Service computes per-question points and round aggregates.
// It is pure: no storage access, no side effects.
type Service struct{}

// New creates a new ScoringService
func New() *Service {
	return &Service{}
}

// BasePoints returns the points a correct answer is worth at the given
// difficulty tier
func (s *Service) BasePoints(difficulty int) int {
	return difficulty * PointsPerDifficulty
}

// ScoreAnswer returns the points earned for choosing choiceID on the
// question: base points when the choice is correct, zero otherwise.
// A choice ID that does not belong to the question scores zero; it is
// not an error at this layer.
func (s *Service) ScoreAnswer(question *model.Question, choiceID model.ChoiceID) int {
	for _, choice := range question.Choices {
		if choice.ID == choiceID {
			if choice.IsCorrect {
				return s.BasePoints(question.Difficulty)
			}
			return 0
		}
	}
	return 0
}

// AggregateRound folds a round's recorded answers into its result.
// XP earned equals the score one-to-one; there is no bonus or penalty
// scheme. The result is a pure sum, so answer order does not matter.
// Answers referencing a question missing from the lookup score zero.
func (s *Service) AggregateRound(questions map[model.QuestionID]*model.Question, answers []*model.AnswerSubmission) *model.RoundResult {
	result := &model.RoundResult{}
	for _, answer := range answers {
		result.TotalTimeSec += answer.TimeSpentSec

		question, ok := questions[answer.QuestionID]
		if !ok {
			continue
		}
		points := s.ScoreAnswer(question, answer.ChoiceID)
		result.Score += points
		if points > 0 {
			result.CorrectCount++
		}
	}
	result.XPEarned = result.Score
	return result
}

// Interface for dependency injection
type ServiceInterface interface {
	BasePoints(difficulty int) int
	ScoreAnswer(question *model.Question, choiceID model.ChoiceID) int
	AggregateRound(questions map[model.QuestionID]*model.Question, answers []*model.AnswerSubmission) *model.RoundResult
}

var _ ServiceInterface = (*Service)(nil)
