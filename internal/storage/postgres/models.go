package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/codequest-game/codequest/internal/model"
)

// Row types mapping the relational schema onto the domain model.
// Level is stored denormalized alongside XP; SaveUser always writes
// both in one statement so they cannot drift.

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Username  string    `bun:"username,notnull"`
	XP        int       `bun:"xp,notnull"`
	Level     int       `bun:"level,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func (r *userRow) toModel() *model.User {
	return &model.User{
		ID:        model.UserID(r.ID),
		Username:  r.Username,
		XP:        r.XP,
		Level:     r.Level,
		CreatedAt: r.CreatedAt,
	}
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID         int64  `bun:"id,pk,autoincrement"`
	Text       string `bun:"text,notnull"`
	Difficulty int    `bun:"difficulty,notnull"`
}

type choiceRow struct {
	bun.BaseModel `bun:"table:choices,alias:c"`

	ID         int64  `bun:"id,pk,autoincrement"`
	QuestionID int64  `bun:"question_id,notnull"`
	Text       string `bun:"text,notnull"`
	IsCorrect  bool   `bun:"is_correct,notnull"`
}

type roundRow struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	ID          int64      `bun:"id,pk,autoincrement"`
	UserID      int64      `bun:"user_id,notnull"`
	StartedAt   time.Time  `bun:"started_at,notnull"`
	CompletedAt *time.Time `bun:"completed_at"`
	Score       int        `bun:"score,notnull"`
	XPEarned    int        `bun:"xp_earned,notnull"`
	DurationSec int        `bun:"duration_sec,notnull"`
}

func (r *roundRow) toModel() *model.Round {
	round := &model.Round{
		ID:          model.RoundID(r.ID),
		UserID:      model.UserID(r.UserID),
		StartedAt:   r.StartedAt,
		Score:       r.Score,
		XPEarned:    r.XPEarned,
		DurationSec: r.DurationSec,
	}
	if r.CompletedAt != nil {
		round.CompletedAt = *r.CompletedAt
	}
	return round
}

func roundRowFromModel(round *model.Round) *roundRow {
	row := &roundRow{
		ID:          int64(round.ID),
		UserID:      int64(round.UserID),
		StartedAt:   round.StartedAt,
		Score:       round.Score,
		XPEarned:    round.XPEarned,
		DurationSec: round.DurationSec,
	}
	if round.IsClosed() {
		completedAt := round.CompletedAt
		row.CompletedAt = &completedAt
	}
	return row
}

type answerRow struct {
	bun.BaseModel `bun:"table:answers,alias:a"`

	ID           int64 `bun:"id,pk,autoincrement"`
	RoundID      int64 `bun:"round_id,notnull"`
	QuestionID   int64 `bun:"question_id,notnull"`
	ChoiceID     int64 `bun:"choice_id,notnull"`
	TimeSpentSec int   `bun:"time_spent_sec,notnull"`
}

func (r *answerRow) toModel() *model.AnswerSubmission {
	return &model.AnswerSubmission{
		RoundID:      model.RoundID(r.RoundID),
		QuestionID:   model.QuestionID(r.QuestionID),
		ChoiceID:     model.ChoiceID(r.ChoiceID),
		TimeSpentSec: r.TimeSpentSec,
	}
}
