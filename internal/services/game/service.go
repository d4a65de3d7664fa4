package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codequest-game/codequest/internal/dependencies/random"
	"github.com/codequest-game/codequest/internal/model"
	"github.com/codequest-game/codequest/internal/services/ledger"
	"github.com/codequest-game/codequest/internal/services/round"
	"github.com/codequest-game/codequest/internal/storage"
	"github.com/codequest-game/codequest/internal/validate"
)

// QuestionsPerRound is how many questions a round draws per difficulty
const QuestionsPerRound = 3

// RankingLimit caps the top ranking table
const RankingLimit = 10

// Service is the single API surface consumed by presentation code.
// It composes the round manager, ledger and storage lookups and adds
// no business logic of its own beyond input validation.
type Service struct {
	storage storage.Storage
	rounds  *round.Manager
	ledger  *ledger.Service
	random  random.Random
	logger  *slog.Logger
}

// New creates a new GameService
func New(
	storage storage.Storage,
	rounds *round.Manager,
	ledger *ledger.Service,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		rounds:  rounds,
		ledger:  ledger,
		random:  random,
		logger:  logger,
	}
}

// User operations

// CreateUser validates the username and creates the user. The backend
// enforces uniqueness; a duplicate surfaces as ErrDuplicateUsername.
func (s *Service) CreateUser(ctx context.Context, username string) (model.UserID, error) {
	if err := validate.Username(username); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateUser(ctx, strings.TrimSpace(username))
	if err != nil {
		return 0, err
	}

	s.logger.Info("user created",
		slog.Int64("user_id", int64(id)),
		slog.String("username", strings.TrimSpace(username)),
	)
	return id, nil
}

// UserExists reports whether a username is taken
func (s *Service) UserExists(ctx context.Context, username string) (bool, error) {
	return s.storage.UserExists(ctx, strings.TrimSpace(username))
}

// GetUserID resolves a username to its user ID
func (s *Service) GetUserID(ctx context.Context, username string) (model.UserID, error) {
	return s.storage.GetUserID(ctx, strings.TrimSpace(username))
}

// GetUserByID fetches a user by ID
func (s *Service) GetUserByID(ctx context.Context, userID model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, userID)
}

// GetUserStats fetches the user's current XP, level and profile
func (s *Service) GetUserStats(ctx context.Context, userID model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, userID)
}

// UpdateUsername renames a user, applying the same username rules as
// CreateUser
func (s *Service) UpdateUsername(ctx context.Context, userID model.UserID, username string) error {
	if err := validate.Username(username); err != nil {
		return err
	}
	return s.storage.UpdateUsername(ctx, userID, strings.TrimSpace(username))
}

// ResetUserXP zeroes a user's XP and level (admin maintenance)
func (s *Service) ResetUserXP(ctx context.Context, userID model.UserID) error {
	_, err := s.ledger.ResetXP(ctx, userID)
	return err
}

// DeleteUser removes a user and all their rounds and answers
func (s *Service) DeleteUser(ctx context.Context, userID model.UserID) error {
	if err := s.storage.DeleteUserComplete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.Int64("user_id", int64(userID)))
	return nil
}

// Game operations

// StartNewRound opens a round for the user and returns its ID
func (s *Service) StartNewRound(ctx context.Context, userID model.UserID) (model.RoundID, error) {
	return s.rounds.OpenRound(ctx, userID)
}

// GetQuestionsForRound draws the round's questions at the given
// difficulty. Choice order is shuffled so the correct answer does not
// sit in a fixed position.
func (s *Service) GetQuestionsForRound(ctx context.Context, difficulty int) ([]*model.Question, error) {
	if err := validate.IntRange("difficulty", difficulty, model.DifficultyMin, model.DifficultyMax); err != nil {
		return nil, err
	}

	questions, err := s.storage.GetQuestionsByDifficulty(ctx, difficulty, QuestionsPerRound)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}

	for _, question := range questions {
		choices := question.Choices
		s.random.Shuffle(len(choices), func(i, j int) {
			choices[i], choices[j] = choices[j], choices[i]
		})
	}
	return questions, nil
}

// SubmitAnswer records an answer for an open round
func (s *Service) SubmitAnswer(ctx context.Context, roundID model.RoundID, questionID model.QuestionID, choiceID model.ChoiceID, timeSpentSec int) error {
	return s.rounds.RecordAnswer(ctx, roundID, questionID, choiceID, timeSpentSec)
}

// CompleteRound closes the round, returning its fixed result
func (s *Service) CompleteRound(ctx context.Context, roundID model.RoundID) (*model.RoundResult, error) {
	return s.rounds.CloseRound(ctx, roundID)
}

// DeleteRound removes a round without reversing applied XP
func (s *Service) DeleteRound(ctx context.Context, roundID model.RoundID) error {
	return s.rounds.DeleteRound(ctx, roundID)
}

// Statistics

// GetTopRanking returns the ranking table, descending by XP
func (s *Service) GetTopRanking(ctx context.Context) ([]*model.RankingEntry, error) {
	return s.storage.GetTopRanking(ctx, RankingLimit)
}

// Interface for dependency injection
type ServiceInterface interface {
	CreateUser(ctx context.Context, username string) (model.UserID, error)
	UserExists(ctx context.Context, username string) (bool, error)
	GetUserID(ctx context.Context, username string) (model.UserID, error)
	GetUserByID(ctx context.Context, userID model.UserID) (*model.User, error)
	GetUserStats(ctx context.Context, userID model.UserID) (*model.User, error)
	UpdateUsername(ctx context.Context, userID model.UserID, username string) error
	ResetUserXP(ctx context.Context, userID model.UserID) error
	DeleteUser(ctx context.Context, userID model.UserID) error
	StartNewRound(ctx context.Context, userID model.UserID) (model.RoundID, error)
	GetQuestionsForRound(ctx context.Context, difficulty int) ([]*model.Question, error)
	SubmitAnswer(ctx context.Context, roundID model.RoundID, questionID model.QuestionID, choiceID model.ChoiceID, timeSpentSec int) error
	CompleteRound(ctx context.Context, roundID model.RoundID) (*model.RoundResult, error)
	DeleteRound(ctx context.Context, roundID model.RoundID) error
	GetTopRanking(ctx context.Context) ([]*model.RankingEntry, error)
}

var _ ServiceInterface = (*Service)(nil)
