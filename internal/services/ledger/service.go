package ledger

import (
	"context"
	"log/slog"

	"github.com/codequest-game/codequest/internal/model"
	"github.com/codequest-game/codequest/internal/storage"
	"github.com/codequest-game/codequest/internal/validate"
)

// Service maintains the XP/level invariant for users. Level is always
// derived from XP and written together with it; the two are never
// persisted out of step.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new LedgerService
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// AddXP adds a non-negative XP delta to the user and recomputes their
// level in the same write. Returns the updated user.
func (s *Service) AddXP(ctx context.Context, userID model.UserID, delta int) (*model.User, error) {
	if err := validate.NonNegative("xp delta", delta); err != nil {
		return nil, err
	}

	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	previousLevel := user.Level
	user.ApplyXP(delta)

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	if user.Level > previousLevel {
		s.logger.Info("user leveled up",
			slog.Int64("user_id", int64(userID)),
			slog.Int("level", user.Level),
			slog.Int("xp", user.XP),
		)
	}

	return user, nil
}

// ResetXP zeroes a user's XP and level, for administrative maintenance.
// This is a distinct operation rather than a negative AddXP delta.
func (s *Service) ResetXP(ctx context.Context, userID model.UserID) (*model.User, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.ResetXP()

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user xp reset", slog.Int64("user_id", int64(userID)))
	return user, nil
}

// XPToNextLevel returns how much XP the user needs to reach the next
// level. Pure derived query.
func (s *Service) XPToNextLevel(user *model.User) int {
	return user.XPToNextLevel()
}

// Interface for dependency injection
type ServiceInterface interface {
	AddXP(ctx context.Context, userID model.UserID, delta int) (*model.User, error)
	ResetXP(ctx context.Context, userID model.UserID) (*model.User, error)
	XPToNextLevel(user *model.User) int
}

var _ ServiceInterface = (*Service)(nil)
