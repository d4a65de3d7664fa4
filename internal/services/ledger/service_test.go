package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/codequest-game/codequest/internal/model"
	"github.com/codequest-game/codequest/internal/storage/memory"
	"github.com/codequest-game/codequest/internal/testutil"
	"github.com/codequest-game/codequest/internal/validate"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
	userID  model.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()

	id, err := s.storage.CreateUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.userID = id
}

// AddXP tests

func (s *ServiceSuite) TestAddXPAccumulates() {
	user, err := s.service.AddXP(s.ctx, s.userID, 30)
	s.Require().NoError(err)
	s.Equal(30, user.XP)
	s.Equal(1, user.Level)

	user, err = s.service.AddXP(s.ctx, s.userID, 40)
	s.Require().NoError(err)
	s.Equal(70, user.XP)
	s.Equal(1, user.Level)
}

func (s *ServiceSuite) TestAddXPCrossesLevelBoundary() {
	_, err := s.service.AddXP(s.ctx, s.userID, 95)
	s.Require().NoError(err)

	user, err := s.service.AddXP(s.ctx, s.userID, 10)
	s.Require().NoError(err)
	s.Equal(105, user.XP)
	s.Equal(2, user.Level)
}

func (s *ServiceSuite) TestAddXPExactBoundary() {
	user, err := s.service.AddXP(s.ctx, s.userID, 100)
	s.Require().NoError(err)
	s.Equal(100, user.XP)
	s.Equal(2, user.Level)
}

func (s *ServiceSuite) TestAddXPZeroDelta() {
	user, err := s.service.AddXP(s.ctx, s.userID, 0)
	s.Require().NoError(err)
	s.Equal(0, user.XP)
	s.Equal(1, user.Level)
}

func (s *ServiceSuite) TestAddXPNegativeDeltaRejected() {
	_, err := s.service.AddXP(s.ctx, s.userID, -10)
	s.Error(err)

	var verr *validate.Error
	s.True(errors.As(err, &verr))
}

func (s *ServiceSuite) TestAddXPUnknownUser() {
	_, err := s.service.AddXP(s.ctx, 9999, 10)
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ServiceSuite) TestAddXPPersistsLevelWithXP() {
	_, err := s.service.AddXP(s.ctx, s.userID, 250)
	s.Require().NoError(err)

	stored, err := s.storage.GetUser(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(250, stored.XP)
	s.Equal(3, stored.Level)
	s.Equal(model.LevelForXP(stored.XP), stored.Level)
}

// ResetXP tests

func (s *ServiceSuite) TestResetXP() {
	_, err := s.service.AddXP(s.ctx, s.userID, 500)
	s.Require().NoError(err)

	user, err := s.service.ResetXP(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(0, user.XP)
	s.Equal(1, user.Level)

	stored, err := s.storage.GetUser(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(0, stored.XP)
	s.Equal(1, stored.Level)
}

func (s *ServiceSuite) TestResetXPUnknownUser() {
	_, err := s.service.ResetXP(s.ctx, 9999)
	s.ErrorIs(err, model.ErrUserNotFound)
}

// XPToNextLevel tests

func (s *ServiceSuite) TestXPToNextLevel() {
	user := &model.User{XP: 0, Level: 1}
	s.Equal(100, s.service.XPToNextLevel(user))

	user = &model.User{XP: 95, Level: 1}
	s.Equal(5, s.service.XPToNextLevel(user))

	user = &model.User{XP: 105, Level: 2}
	s.Equal(95, s.service.XPToNextLevel(user))
}
