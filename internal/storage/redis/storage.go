package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codequest-game/codequest/internal/model"
	"github.com/codequest-game/codequest/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Ping verifies the Redis connection is alive
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, username string) (model.UserID, error) {
	// Claim the username index first; SETNX makes this the uniqueness check
	claimed, err := s.client.SetNX(ctx, usernameIndexKey(username), "", 0).Result()
	if err != nil {
		return 0, err
	}
	if !claimed {
		return 0, model.ErrDuplicateUsername
	}

	seq, err := s.client.Incr(ctx, userSeqKey()).Result()
	if err != nil {
		return 0, err
	}
	id := model.UserID(seq)

	user := &model.User{
		ID:        id,
		Username:  username,
		XP:        0,
		Level:     1,
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(user)
	if err != nil {
		return 0, err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(id), data, 0)
	pipe.Set(ctx, usernameIndexKey(username), strconv.FormatInt(int64(id), 10), 0)
	pipe.SAdd(ctx, usersIndexKey(), int64(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Storage) UserExists(ctx context.Context, username string) (bool, error) {
	exists, err := s.client.Exists(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) GetUserID(ctx context.Context, username string) (model.UserID, error) {
	idStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, model.ErrUserNotFound
		}
		return 0, err
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, model.ErrUserNotFound
	}
	return model.UserID(id), nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	existing, err := s.GetUser(ctx, user.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Single pipeline keeps XP/level and the username index in step
	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	if existing.Username != user.Username {
		pipe.Del(ctx, usernameIndexKey(existing.Username))
		pipe.Set(ctx, usernameIndexKey(user.Username), strconv.FormatInt(int64(user.ID), 10), 0)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) UpdateUsername(ctx context.Context, id model.UserID, username string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	ownerStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err == nil && ownerStr != strconv.FormatInt(int64(id), 10) {
		return model.ErrDuplicateUsername
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	oldUsername := user.Username
	user.Username = username
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, usernameIndexKey(oldUsername))
	pipe.Set(ctx, userKey(id), data, 0)
	pipe.Set(ctx, usernameIndexKey(username), strconv.FormatInt(int64(id), 10), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) DeleteUserComplete(ctx context.Context, id model.UserID) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	roundIDs, err := s.client.SMembers(ctx, roundsForUserIndexKey(id)).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for _, idStr := range roundIDs {
		roundID, convErr := strconv.ParseInt(idStr, 10, 64)
		if convErr != nil {
			continue
		}
		pipe.Del(ctx, roundKey(model.RoundID(roundID)))
		pipe.Del(ctx, answersKey(model.RoundID(roundID)))
	}
	pipe.Del(ctx, roundsForUserIndexKey(id))
	pipe.Del(ctx, usernameIndexKey(user.Username))
	pipe.Del(ctx, userKey(id))
	pipe.SRem(ctx, usersIndexKey(), int64(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Question operations

func (s *Storage) GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error) {
	data, err := s.client.Get(ctx, questionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrQuestionNotFound
		}
		return nil, err
	}

	var question model.Question
	if err := json.Unmarshal(data, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *Storage) GetQuestionsByDifficulty(ctx context.Context, difficulty, count int) ([]*model.Question, error) {
	// SRANDMEMBER gives the unordered random pick the contract allows
	ids, err := s.client.SRandMemberN(ctx, questionsByDifficultyKey(difficulty), int64(count)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Question{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, idStr := range ids {
		id, convErr := strconv.ParseInt(idStr, 10, 64)
		if convErr != nil {
			continue
		}
		keys = append(keys, questionKey(model.QuestionID(id)))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	questions := make([]*model.Question, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Question was deleted; stale index entry
		}
		var question model.Question
		if err := json.Unmarshal([]byte(val.(string)), &question); err != nil {
			continue // Skip invalid data
		}
		questions = append(questions, &question)
	}
	return questions, nil
}

func (s *Storage) SaveQuestion(ctx context.Context, question *model.Question) error {
	if question.ID == 0 {
		seq, err := s.client.Incr(ctx, questionSeqKey()).Result()
		if err != nil {
			return err
		}
		question.ID = model.QuestionID(seq)
	}
	for i := range question.Choices {
		if question.Choices[i].ID == 0 {
			seq, err := s.client.Incr(ctx, choiceSeqKey()).Result()
			if err != nil {
				return err
			}
			question.Choices[i].ID = model.ChoiceID(seq)
		}
	}

	data, err := json.Marshal(question)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, questionKey(question.ID), data, 0)
	pipe.SAdd(ctx, questionsByDifficultyKey(question.Difficulty), int64(question.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) DeleteQuestion(ctx context.Context, id model.QuestionID) error {
	question, err := s.GetQuestion(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, questionKey(id))
	pipe.SRem(ctx, questionsByDifficultyKey(question.Difficulty), int64(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Round operations

func (s *Storage) CreateRound(ctx context.Context, userID model.UserID, startedAt time.Time) (model.RoundID, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return 0, err
	}

	seq, err := s.client.Incr(ctx, roundSeqKey()).Result()
	if err != nil {
		return 0, err
	}
	id := model.RoundID(seq)

	round := &model.Round{
		ID:        id,
		UserID:    userID,
		StartedAt: startedAt,
	}
	data, err := json.Marshal(round)
	if err != nil {
		return 0, err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, roundKey(id), data, 0)
	pipe.SAdd(ctx, roundsForUserIndexKey(userID), int64(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	data, err := s.client.Get(ctx, roundKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoundNotFound
		}
		return nil, err
	}

	var round model.Round
	if err := json.Unmarshal(data, &round); err != nil {
		return nil, err
	}
	return &round, nil
}

func (s *Storage) SaveRound(ctx context.Context, round *model.Round) error {
	exists, err := s.client.Exists(ctx, roundKey(round.ID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrRoundNotFound
	}

	data, err := json.Marshal(round)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, roundKey(round.ID), data, 0).Err()
}

func (s *Storage) RecordAnswer(ctx context.Context, answer *model.AnswerSubmission) error {
	exists, err := s.client.Exists(ctx, roundKey(answer.RoundID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrRoundNotFound
	}

	data, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, answersKey(answer.RoundID), data).Err()
}

func (s *Storage) GetAnswersForRound(ctx context.Context, roundID model.RoundID) ([]*model.AnswerSubmission, error) {
	exists, err := s.client.Exists(ctx, roundKey(roundID)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrRoundNotFound
	}

	values, err := s.client.LRange(ctx, answersKey(roundID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	answers := make([]*model.AnswerSubmission, 0, len(values))
	for _, val := range values {
		var answer model.AnswerSubmission
		if err := json.Unmarshal([]byte(val), &answer); err != nil {
			continue // Skip invalid data
		}
		answers = append(answers, &answer)
	}
	return answers, nil
}

func (s *Storage) DeleteRound(ctx context.Context, id model.RoundID) error {
	round, err := s.GetRound(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, roundKey(id))
	pipe.Del(ctx, answersKey(id))
	pipe.SRem(ctx, roundsForUserIndexKey(round.UserID), int64(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Ranking

func (s *Storage) GetTopRanking(ctx context.Context, limit int) ([]*model.RankingEntry, error) {
	userIDs, err := s.client.SMembers(ctx, usersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*model.RankingEntry, 0, len(userIDs))
	for _, idStr := range userIDs {
		id, convErr := strconv.ParseInt(idStr, 10, 64)
		if convErr != nil {
			continue
		}
		user, err := s.GetUser(ctx, model.UserID(id))
		if err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				continue // Stale index entry
			}
			return nil, err
		}

		entry := &model.RankingEntry{
			Username: user.Username,
			XP:       user.XP,
			Level:    user.Level,
		}

		roundIDs, err := s.client.SMembers(ctx, roundsForUserIndexKey(user.ID)).Result()
		if err != nil {
			return nil, err
		}
		totalScore := 0
		for _, roundIDStr := range roundIDs {
			roundID, convErr := strconv.ParseInt(roundIDStr, 10, 64)
			if convErr != nil {
				continue
			}
			round, err := s.GetRound(ctx, model.RoundID(roundID))
			if err != nil {
				continue
			}
			if !round.IsClosed() {
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
