package factory

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type FactorySuite struct {
	suite.Suite
}

func TestFactorySuite(t *testing.T) {
	suite.Run(t, new(FactorySuite))
}

func (s *FactorySuite) TestNewDefaultsToMemory() {
	app, err := New(Config{})
	s.Require().NoError(err)
	s.NotNil(app.Storage)
	s.NotNil(app.GameService)
	s.NotNil(app.Locator)
}

func (s *FactorySuite) TestNewMemoryStorage() {
	app, err := New(Config{StorageType: StorageTypeMemory})
	s.Require().NoError(err)
	s.NotNil(app.Storage)
}

func (s *FactorySuite) TestNewRedisRequiresConfig() {
	_, err := New(Config{StorageType: StorageTypeRedis})
	s.Error(err)
}

func (s *FactorySuite) TestNewPostgresRequiresDSN() {
	_, err := New(Config{StorageType: StorageTypePostgres})
	s.Error(err)
}

func (s *FactorySuite) TestNewInvalidStorageType() {
	_, err := New(Config{StorageType: "cassandra"})
	s.Error(err)
}
