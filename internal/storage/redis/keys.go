package redis

import (
	"fmt"
	"strings"

	"github.com/codequest-game/codequest/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "codequest"

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%d", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index.
// Usernames are indexed lowercase so uniqueness is case-insensitive.
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, strings.ToLower(username))
}

// usersIndexKey returns the Redis key for the SET of all user IDs
func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}

// questionKey returns the Redis key for a Question
func questionKey(id model.QuestionID) string {
	return fmt.Sprintf("%s:question:%d", keyPrefix, id)
}

// questionsByDifficultyKey returns the Redis key for the SET of question
// IDs at a difficulty tier
func questionsByDifficultyKey(difficulty int) string {
	return fmt.Sprintf("%s:idx:questions_by_difficulty:%d", keyPrefix, difficulty)
}

// roundKey returns the Redis key for a Round
func roundKey(id model.RoundID) string {
	return fmt.Sprintf("%s:round:%d", keyPrefix, id)
}

// roundsForUserIndexKey returns the Redis key for the SET of round IDs
// belonging to a user
func roundsForUserIndexKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:rounds_for_user:%d", keyPrefix, userID)
}

// answersKey returns the Redis key for the LIST of answers in a round
func answersKey(roundID model.RoundID) string {
	return fmt.Sprintf("%s:answers:%d", keyPrefix, roundID)
}

// Sequence keys for ID allocation via INCR

func userSeqKey() string {
	return fmt.Sprintf("%s:seq:user", keyPrefix)
}

func questionSeqKey() string {
	return fmt.Sprintf("%s:seq:question", keyPrefix)
}

func choiceSeqKey() string {
	return fmt.Sprintf("%s:seq:choice", keyPrefix)
}

func roundSeqKey() string {
	return fmt.Sprintf("%s:seq:round", keyPrefix)
}
