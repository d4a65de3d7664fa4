package model

import "github.com/codequest-game/codequest/internal/validate"

// QuestionID uniquely identifies a question
type QuestionID int64

// ChoiceID uniquely identifies a choice within the question bank
type ChoiceID int64

// Difficulty bounds and text length limits for the question bank
const (
	DifficultyMin = 1
	DifficultyMax = 3

	QuestionTextMaxLen = 1000
	ChoiceTextMaxLen   = 500
)

// Choice is one possible answer to a question
type Choice struct {
	ID        ChoiceID
	Text      string
	IsCorrect bool
}

// Question is a multiple-choice question with a difficulty tier.
// The question bank is managed elsewhere; the core only reads questions.
type Question struct {
	ID         QuestionID
	Text       string
	Difficulty int
	Choices    []Choice
}

// Validate checks the structural rules for a question: non-blank text,
// a known difficulty tier, valid choices, and at least one correct choice.
func (q *Question) Validate() error {
	if err := validate.FreeText("question text", q.Text, QuestionTextMaxLen); err != nil {
		return err
	}
	if err := validate.IntRange("difficulty", q.Difficulty, DifficultyMin, DifficultyMax); err != nil {
		return err
	}
	hasCorrect := false
	for _, c := range q.Choices {
		if err := validate.FreeText("choice text", c.Text, ChoiceTextMaxLen); err != nil {
			return err
		}
		if c.IsCorrect {
			hasCorrect = true
		}
	}
	if !hasCorrect {
		return &validate.Error{Field: "choices", Reason: "must include at least one correct choice"}
	}
	return nil
}

// CorrectChoice returns the ID of the first correct choice, for seeding
// and test helpers.
func (q *Question) CorrectChoice() (ChoiceID, bool) {
	for _, c := range q.Choices {
		if c.IsCorrect {
			return c.ID, true
		}
	}
	return 0, false
}
