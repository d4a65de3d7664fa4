package factory

import (
	"context"
	"time"

	"github.com/codequest-game/codequest/internal/dependencies/mocks"
	"github.com/codequest-game/codequest/internal/model"
	"github.com/codequest-game/codequest/internal/storage/memory"
	"github.com/codequest-game/codequest/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// SeedQuestionBank loads a small fixed question bank covering every
// difficulty tier. Each question has four choices with the correct one
// in a different position.
func (t *TestApp) SeedQuestionBank(ctx context.Context) error {
	questions := []*model.Question{
		{
			ID: 1, Text: "What is the capital of France?", Difficulty: 1,
			Choices: []model.Choice{
				{ID: 11, Text: "Paris", IsCorrect: true},
				{ID: 12, Text: "Lyon"},
				{ID: 13, Text: "Marseille"},
				{ID: 14, Text: "Nice"},
			},
		},
		{
			ID: 2, Text: "How many continents are there?", Difficulty: 1,
			Choices: []model.Choice{
				{ID: 21, Text: "Five"},
				{ID: 22, Text: "Seven", IsCorrect: true},
				{ID: 23, Text: "Six"},
				{ID: 24, Text: "Eight"},
			},
		},
		{
			ID: 3, Text: "What color do you get mixing blue and yellow?", Difficulty: 1,
			Choices: []model.Choice{
				{ID: 31, Text: "Orange"},
				{ID: 32, Text: "Purple"},
				{ID: 33, Text: "Green", IsCorrect: true},
				{ID: 34, Text: "Brown"},
			},
		},
		{
			ID: 4, Text: "Which planet is known as the Red Planet?", Difficulty: 2,
			Choices: []model.Choice{
				{ID: 41, Text: "Venus"},
				{ID: 42, Text: "Mars", IsCorrect: true},
				{ID: 43, Text: "Jupiter"},
				{ID: 44, Text: "Mercury"},
			},
		},
		{
			ID: 5, Text: "What is the chemical symbol for gold?", Difficulty: 2,
			Choices: []model.Choice{
				{ID: 51, Text: "Gd"},
				{ID: 52, Text: "Go"},
				{ID: 53, Text: "Ag"},
				{ID: 54, Text: "Au", IsCorrect: true},
			},
		},
		{
			ID: 6, Text: "In which year did the Berlin Wall fall?", Difficulty: 2,
			Choices: []model.Choice{
				{ID: 61, Text: "1989", IsCorrect: true},
				{ID: 62, Text: "1991"},
				{ID: 63, Text: "1987"},
				{ID: 64, Text: "1990"},
			},
		},
		{
			ID: 7, Text: "What is the time complexity of binary search?", Difficulty: 3,
			Choices: []model.Choice{
				{ID: 71, Text: "O(n)"},
				{ID: 72, Text: "O(log n)", IsCorrect: true},
				{ID: 73, Text: "O(n log n)"},
				{ID: 74, Text: "O(1)"},
			},
		},
		{
			ID: 8, Text: "Which element has the highest melting point?", Difficulty: 3,
			Choices: []model.Choice{
				{ID: 81, Text: "Titanium"},
				{ID: 82, Text: "Iron"},
				{ID: 83, Text: "Tungsten", IsCorrect: true},
				{ID: 84, Text: "Platinum"},
			},
		},
		{
			ID: 9, Text: "Who proved Fermat's Last Theorem?", Difficulty: 3,
			Choices: []model.Choice{
				{ID: 91, Text: "Andrew Wiles", IsCorrect: true},
				{ID: 92, Text: "Terence Tao"},
				{ID: 93, Text: "Grigori Perelman"},
				{ID: 94, Text: "Paul Erdos"},
			},
		},
	}

	for _, question := range questions {
		if err := t.Storage.SaveQuestion(ctx, question); err != nil {
			return err
		}
	}
	return nil
}
