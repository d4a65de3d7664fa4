package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/codequest-game/codequest/internal/model"
	"github.com/codequest-game/codequest/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// It stores copies, so a closed round held by a caller cannot be
// mutated behind the store's back.
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	questions     map[model.QuestionID]*model.Question
	rounds        map[model.RoundID]*model.Round
	answers       map[model.RoundID][]*model.AnswerSubmission

	nextUserID     int64
	nextQuestionID int64
	nextChoiceID   int64
	nextRoundID    int64
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		questions:     make(map[model.QuestionID]*model.Question),
		rounds:        make(map[model.RoundID]*model.Round),
		answers:       make(map[model.RoundID][]*model.AnswerSubmission),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Ping always succeeds for the in-memory store
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, username string) (model.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usernameKey(username)
	if _, exists := s.usernameIndex[key]; exists {
		return 0, model.ErrDuplicateUsername
	}

	s.nextUserID++
	id := model.UserID(s.nextUserID)
	s.users[id] = &model.User{
		ID:        id,
		Username:  username,
		XP:        0,
		Level:     1,
		CreatedAt: time.Now(),
	}
	s.usernameIndex[key] = id
	return id, nil
}

func (s *Storage) UserExists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.usernameIndex[usernameKey(username)]
	return ok, nil
}

func (s *Storage) GetUserID(ctx context.Context, username string) (model.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[usernameKey(username)]
	if !ok {
		return 0, model.ErrUserNotFound
	}
	return id, nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	if existing.Username != user.Username {
		delete(s.usernameIndex, usernameKey(existing.Username))
		s.usernameIndex[usernameKey(user.Username)] = user.ID
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *Storage) UpdateUsername(ctx context.Context, id model.UserID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	key := usernameKey(username)
	if owner, exists := s.usernameIndex[key]; exists && owner != id {
		return model.ErrDuplicateUsername
	}
	delete(s.usernameIndex, usernameKey(user.Username))
	user.Username = username
	s.usernameIndex[key] = id
	return nil
}

func (s *Storage) DeleteUserComplete(ctx context.Context, id model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	delete(s.usernameIndex, usernameKey(user.Username))
	delete(s.users, id)
	for roundID, round := range s.rounds {
		if round.UserID == id {
			delete(s.rounds, roundID)
			delete(s.answers, roundID)
		}
	}
	return nil
}

// Question operations

func (s *Storage) GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[id]
	if !ok {
		return nil, model.ErrQuestionNotFound
	}
	return copyQuestion(question), nil
}

func (s *Storage) GetQuestionsByDifficulty(ctx context.Context, difficulty, count int) ([]*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Map iteration order stands in for random selection; the contract
	// makes no ordering guarantee.
	result := make([]*model.Question, 0, count)
	for _, question := range s.questions {
		if question.Difficulty != difficulty {
			continue
		}
		result = append(result, copyQuestion(question))
		if len(result) == count {
			break
		}
	}
	return result, nil
}

func (s *Storage) SaveQuestion(ctx context.Context, question *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if question.ID == 0 {
		s.nextQuestionID++
		question.ID = model.QuestionID(s.nextQuestionID)
	}
	for i := range question.Choices {
		if question.Choices[i].ID == 0 {
			s.nextChoiceID++
			question.Choices[i].ID = model.ChoiceID(s.nextChoiceID)
		}
	}
	s.questions[question.ID] = copyQuestion(question)
	return nil
}

func (s *Storage) DeleteQuestion(ctx context.Context, id model.QuestionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return model.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return nil
}

// Round operations

func (s *Storage) CreateRound(ctx context.Context, userID model.UserID, startedAt time.Time) (model.RoundID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return 0, model.ErrUserNotFound
	}

	s.nextRoundID++
	id := model.RoundID(s.nextRoundID)
	s.rounds[id] = &model.Round{
		ID:        id,
		UserID:    userID,
		StartedAt: startedAt,
	}
	return id, nil
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	round, ok := s.rounds[id]
	if !ok {
		return nil, model.ErrRoundNotFound
	}
	copied := *round
	return &copied, nil
}

func (s *Storage) SaveRound(ctx context.Context, round *model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rounds[round.ID]; !ok {
		return model.ErrRoundNotFound
	}
	copied := *round
	s.rounds[round.ID] = &copied
	return nil
}

func (s *Storage) RecordAnswer(ctx context.Context, answer *model.AnswerSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rounds[answer.RoundID]; !ok {
		return model.ErrRoundNotFound
	}
	copied := *answer
	s.answers[answer.RoundID] = append(s.answers[answer.RoundID], &copied)
	return nil
}

func (s *Storage) GetAnswersForRound(ctx context.Context, roundID model.RoundID) ([]*model.AnswerSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.rounds[roundID]; !ok {
		return nil, model.ErrRoundNotFound
	}
	stored := s.answers[roundID]
	result := make([]*model.AnswerSubmission, 0, len(stored))
	for _, answer := range stored {
		copied := *answer
		result = append(result, &copied)
	}
	return result, nil
}

func (s *Storage) DeleteRound(ctx context.Context, id model.RoundID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rounds[id]; !ok {
		return model.ErrRoundNotFound
	}
	delete(s.rounds, id)
	delete(s.answers, id)
	return nil
}

// Ranking

func (s *Storage) GetTopRanking(ctx context.Context, limit int) ([]*model.RankingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*model.RankingEntry, 0, len(s.users))
	for id, user := range s.users {
		entry := &model.RankingEntry{
			Username: user.Username,
			XP:       user.XP,
			Level:    user.Level,
		}
		totalScore := 0
		for _, round := range s.rounds {
			if round.UserID != id || !round.IsClosed() {
				continue
			}
			entry.RoundsPlayed++
			totalScore += round.Score
			if round.CompletedAt.After(entry.LastRoundAt) {
				entry.LastRoundAt = round.CompletedAt
			}
		}
		if entry.RoundsPlayed > 0 {
			entry.AvgScore = float64(totalScore) / float64(entry.RoundsPlayed)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		return entries[i].Username < entries[j].Username
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// usernameKey makes username lookups case-insensitive, matching the
// uniqueness rule the SQL backend enforces with its collation.
func usernameKey(username string) string {
	return strings.ToLower(username)
}

func copyQuestion(q *model.Question) *model.Question {
	copied := *q
	copied.Choices = make([]model.Choice, len(q.Choices))
	copy(copied.Choices, q.Choices)
	return &copied
}
