package storage

import (
	"context"
	"time"

	"github.com/codequest-game/codequest/internal/model"
)

// Storage defines the interface for data persistence.
// Each operation is its own durable unit; there is no cross-operation
// transaction or rollback. Implementations allocate user and round IDs.
type Storage interface {
	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, username string) (model.UserID, error)
	UserExists(ctx context.Context, username string) (bool, error)
	GetUserID(ctx context.Context, username string) (model.UserID, error)
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	// SaveUser persists XP and level as one write so the leveling
	// invariant is never visible half-applied.
	SaveUser(ctx context.Context, user *model.User) error
	UpdateUsername(ctx context.Context, id model.UserID, username string) error
	// DeleteUserComplete removes the user and cascades to their rounds
	// and recorded answers.
	DeleteUserComplete(ctx context.Context, id model.UserID) error

	// Question operations (the bank is read-only for the game core;
	// Save/Delete exist for seeding and maintenance tooling)
	GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error)
	GetQuestionsByDifficulty(ctx context.Context, difficulty, count int) ([]*model.Question, error)
	SaveQuestion(ctx context.Context, question *model.Question) error
	DeleteQuestion(ctx context.Context, id model.QuestionID) error

	// Round operations
	CreateRound(ctx context.Context, userID model.UserID, startedAt time.Time) (model.RoundID, error)
	GetRound(ctx context.Context, id model.RoundID) (*model.Round, error)
	SaveRound(ctx context.Context, round *model.Round) error
	RecordAnswer(ctx context.Context, answer *model.AnswerSubmission) error
	GetAnswersForRound(ctx context.Context, roundID model.RoundID) ([]*model.AnswerSubmission, error)
	// DeleteRound removes a round and its answers; applied XP stays.
	DeleteRound(ctx context.Context, id model.RoundID) error

	// Ranking
	GetTopRanking(ctx context.Context, limit int) ([]*model.RankingEntry, error)
}
