package round

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/codequest-game/codequest/internal/dependencies/clock"
	"github.com/codequest-game/codequest/internal/model"
	"github.com/codequest-game/codequest/internal/services/ledger"
	"github.com/codequest-game/codequest/internal/services/scoring"
	"github.com/codequest-game/codequest/internal/storage"
	"github.com/codequest-game/codequest/internal/validate"
)

// Manager owns the round state machine: a round is opened, accepts
// answer submissions, and is closed exactly once, at which point the
// result is computed and the earned XP is applied to the user.
type Manager struct {
	storage storage.Storage
	scoring *scoring.Service
	ledger  *ledger.Service
	clock   clock.Clock
	logger  *slog.Logger
}

// NewManager creates a new RoundManager
func NewManager(
	storage storage.Storage,
	scoring *scoring.Service,
	ledger *ledger.Service,
	clock clock.Clock,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		storage: storage,
		scoring: scoring,
		ledger:  ledger,
		clock:   clock,
		logger:  logger,
	}
}

// OpenRound creates a new open round for the user. The persistence
// backend allocates the round identifier.
func (m *Manager) OpenRound(ctx context.Context, userID model.UserID) (model.RoundID, error) {
	if _, err := m.storage.GetUser(ctx, userID); err != nil {
		return 0, err
	}

	roundID, err := m.storage.CreateRound(ctx, userID, m.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("create round: %w", err)
	}

	m.logger.Info("round opened",
		slog.Int64("round_id", int64(roundID)),
		slog.Int64("user_id", int64(userID)),
	)
	return roundID, nil
}

// RecordAnswer durably records an answer submission against the round.
// No score is computed here; scoring is deferred to CloseRound.
// Submitting twice for the same question, or against a round that has
// already been closed, is accepted: the contract is deliberately
// permissive and stricter guards belong to the backend if anywhere.
func (m *Manager) RecordAnswer(ctx context.Context, roundID model.RoundID, questionID model.QuestionID, choiceID model.ChoiceID, timeSpentSec int) error {
	if err := validate.NonNegative("time spent", timeSpentSec); err != nil {
		return err
	}

	if _, err := m.storage.GetRound(ctx, roundID); err != nil {
		return err
	}

	answer := &model.AnswerSubmission{
		RoundID:      roundID,
		QuestionID:   questionID,
		ChoiceID:     choiceID,
		TimeSpentSec: timeSpentSec,
	}
	if err := m.storage.RecordAnswer(ctx, answer); err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

// CloseRound transitions the round to its terminal state: it scores the
// recorded answers, fixes the round's result fields, and applies the
// earned XP to the owning user. A second close fails with
// ErrRoundAlreadyClosed; the first result stays untouched.
//
// The round is persisted as closed before XP is applied. If the XP
// write then fails the error is surfaced rather than rolled back; each
// storage operation is its own durable unit.
func (m *Manager) CloseRound(ctx context.Context, roundID model.RoundID) (*model.RoundResult, error) {
	round, err := m.storage.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.IsClosed() {
		return nil, model.ErrRoundAlreadyClosed
	}

	answers, err := m.storage.GetAnswersForRound(ctx, roundID)
	if err != nil {
		return nil, err
	}

	questions, err := m.questionsForAnswers(ctx, answers)
	if err != nil {
		return nil, err
	}

	result := m.scoring.AggregateRound(questions, answers)

	round.CompletedAt = m.clock.Now()
	round.Score = result.Score
	round.XPEarned = result.XPEarned
	round.DurationSec = result.TotalTimeSec

	if err := m.storage.SaveRound(ctx, round); err != nil {
		return nil, fmt.Errorf("close round: %w", err)
	}

	if _, err := m.ledger.AddXP(ctx, round.UserID, result.XPEarned); err != nil {
		// The round is closed but the XP write failed; report it
		return nil, fmt.Errorf("apply xp for round %d: %w", roundID, err)
	}

	m.logger.Info("round closed",
		slog.Int64("round_id", int64(roundID)),
		slog.Int64("user_id", int64(round.UserID)),
		slog.Int("score", result.Score),
		slog.Int("correct", result.CorrectCount),
	)
	return result, nil
}

// questionsForAnswers loads the distinct questions referenced by the
// answers. A question deleted since the answer was recorded simply
// scores zero.
func (m *Manager) questionsForAnswers(ctx context.Context, answers []*model.AnswerSubmission) (map[model.QuestionID]*model.Question, error) {
	questions := make(map[model.QuestionID]*model.Question)
	for _, answer := range answers {
		if _, seen := questions[answer.QuestionID]; seen {
			continue
		}
		question, err := m.storage.GetQuestion(ctx, answer.QuestionID)
		if err != nil {
			if errors.Is(err, model.ErrQuestionNotFound) {
				continue
			}
			return nil, err
		}
		questions[answer.QuestionID] = question
	}
	return questions, nil
}

// DeleteRound removes a round and its recorded answers. XP already
// applied to the user is not reversed: deleting history does not
// retroactively undo leveling.
func (m *Manager) DeleteRound(ctx context.Context, roundID model.RoundID) error {
	if err := m.storage.DeleteRound(ctx, roundID); err != nil {
		return err
	}
	m.logger.Info("round deleted", slog.Int64("round_id", int64(roundID)))
	return nil
}

// Interface for dependency injection
type ManagerInterface interface {
	OpenRound(ctx context.Context, userID model.UserID) (model.RoundID, error)
	RecordAnswer(ctx context.Context, roundID model.RoundID, questionID model.QuestionID, choiceID model.ChoiceID, timeSpentSec int) error
	CloseRound(ctx context.Context, roundID model.RoundID) (*model.RoundResult, error)
	DeleteRound(ctx context.Context, roundID model.RoundID) error
}

var _ ManagerInterface = (*Manager)(nil)
