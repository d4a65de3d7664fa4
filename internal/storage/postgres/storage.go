package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/codequest-game/codequest/internal/model"
	"github.com/codequest-game/codequest/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface,
// built on bun. The top-ranking query mirrors the stored-procedure
// report the original SQL Server schema exposed.
type Storage struct {
	db *bun.DB
}

// New creates a new Postgres storage instance from a connection DSN
func New(dsn string) (*Storage, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// NewWithDB creates a Postgres storage with an existing bun.DB (for testing)
func NewWithDB(db *bun.DB) *Storage {
	return &Storage{db: db}
}

// DB exposes the underlying bun.DB for the migration command
func (s *Storage) DB() *bun.DB {
	return s.db
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Ping verifies the database connection is alive
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}

// isForeignKeyViolation reports whether err is a Postgres foreign key
// violation (SQLSTATE 23503)
func isForeignKeyViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23503"
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, username string) (model.UserID, error) {
	row := &userRow{
		Username:  username,
		XP:        0,
		Level:     1,
		CreatedAt: time.Now(),
	}

	_, err := s.db.NewInsert().
		Model(row).
		Returning("id").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, model.ErrDuplicateUsername
		}
		return 0, err
	}
	return model.UserID(row.ID), nil
}

func (s *Storage) UserExists(ctx context.Context, username string) (bool, error) {
	return s.db.NewSelect().
		Model((*userRow)(nil)).
		Where("lower(username) = lower(?)", username).
		Exists(ctx)
}

func (s *Storage) GetUserID(ctx context.Context, username string) (model.UserID, error) {
	var id int64
	err := s.db.NewSelect().
		Model((*userRow)(nil)).
		Column("id").
		Where("lower(username) = lower(?)", username).
		Scan(ctx, &id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrUserNotFound
		}
		return 0, err
	}
	return model.UserID(id), nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	row := new(userRow)
	err := s.db.NewSelect().
		Model(row).
		Where("u.id = ?", int64(id)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	// XP and level land in one UPDATE so the invariant holds row-wide
	res, err := s.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("username = ?", user.Username).
		Set("xp = ?", user.XP).
		Set("level = ?", user.Level).
		Where("id = ?", int64(user.ID)).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateUsername
		}
		return err
	}
	return requireAffected(res, model.ErrUserNotFound)
}

func (s *Storage) UpdateUsername(ctx context.Context, id model.UserID, username string) error {
	res, err := s.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("username = ?", username).
		Where("id = ?", int64(id)).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateUsername
		}
		return err
	}
	return requireAffected(res, model.ErrUserNotFound)
}

func (s *Storage) DeleteUserComplete(ctx context.Context, id model.UserID) error {
	// ON DELETE CASCADE removes the user's rounds and answers
	res, err := s.db.NewDelete().
		Model((*userRow)(nil)).
		Where("id = ?", int64(id)).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, model.ErrUserNotFound)
}

// Question operations

func (s *Storage) GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error) {
	row := new(questionRow)
	err := s.db.NewSelect().
		Model(row).
		Where("q.id = ?", int64(id)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrQuestionNotFound
		}
		return nil, err
	}

	questions, err := s.attachChoices(ctx, []*questionRow{row})
	if err != nil {
		return nil, err
	}
	return questions[0], nil
}

func (s *Storage) GetQuestionsByDifficulty(ctx context.Context, difficulty, count int) ([]*model.Question, error) {
	var rows []*questionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("q.difficulty = ?", difficulty).
		OrderExpr("random()").
		Limit(count).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return s.attachChoices(ctx, rows)
}

// attachChoices loads the choices for a batch of question rows
func (s *Storage) attachChoices(ctx context.Context, rows []*questionRow) ([]*model.Question, error) {
	if len(rows) == 0 {
		return []*model.Question{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var choiceRows []*choiceRow
	err := s.db.NewSelect().
		Model(&choiceRows).
		Where("c.question_id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[int64][]model.Choice, len(rows))
	for _, cr := range choiceRows {
		byQuestion[cr.QuestionID] = append(byQuestion[cr.QuestionID], model.Choice{
			ID:        model.ChoiceID(cr.ID),
			Text:      cr.Text,
			IsCorrect: cr.IsCorrect,
		})
	}

	questions := make([]*model.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, &model.Question{
			ID:         model.QuestionID(row.ID),
			Text:       row.Text,
			Difficulty: row.Difficulty,
			Choices:    byQuestion[row.ID],
		})
	}
	return questions, nil
}

func (s *Storage) SaveQuestion(ctx context.Context, question *model.Question) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := &questionRow{
			ID:         int64(question.ID),
			Text:       question.Text,
			Difficulty: question.Difficulty,
		}

		if row.ID == 0 {
			if _, err := tx.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
				return err
			}
			question.ID = model.QuestionID(row.ID)
		} else {
			if _, err := tx.NewUpdate().
				Model(row).
				WherePK().
				Exec(ctx); err != nil {
				return err
			}
			// Replace the choice set wholesale on update
			if _, err := tx.NewDelete().
				Model((*choiceRow)(nil)).
				Where("question_id = ?", row.ID).
				Exec(ctx); err != nil {
				return err
			}
		}

		for i := range question.Choices {
			cr := &choiceRow{
				QuestionID: row.ID,
				Text:       question.Choices[i].Text,
				IsCorrect:  question.Choices[i].IsCorrect,
			}
			if _, err := tx.NewInsert().Model(cr).Returning("id").Exec(ctx); err != nil {
				return err
			}
			question.Choices[i].ID = model.ChoiceID(cr.ID)
		}
		return nil
	})
}

func (s *Storage) DeleteQuestion(ctx context.Context, id model.QuestionID) error {
	res, err := s.db.NewDelete().
		Model((*questionRow)(nil)).
		Where("id = ?", int64(id)).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, model.ErrQuestionNotFound)
}

// Round operations

func (s *Storage) CreateRound(ctx context.Context, userID model.UserID, startedAt time.Time) (model.RoundID, error) {
	row := &roundRow{
		UserID:    int64(userID),
		StartedAt: startedAt,
	}
	_, err := s.db.NewInsert().
		Model(row).
		Returning("id").
		Exec(ctx)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, model.ErrUserNotFound
		}
		return 0, err
	}
	return model.RoundID(row.ID), nil
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	row := new(roundRow)
	err := s.db.NewSelect().
		Model(row).
		Where("r.id = ?", int64(id)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrRoundNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) SaveRound(ctx context.Context, round *model.Round) error {
	row := roundRowFromModel(round)
	res, err := s.db.NewUpdate().
		Model(row).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, model.ErrRoundNotFound)
}

func (s *Storage) RecordAnswer(ctx context.Context, answer *model.AnswerSubmission) error {
	row := &answerRow{
		RoundID:      int64(answer.RoundID),
		QuestionID:   int64(answer.QuestionID),
		ChoiceID:     int64(answer.ChoiceID),
		TimeSpentSec: answer.TimeSpentSec,
	}
	_, err := s.db.NewInsert().Model(row).Exec(ctx)
	if isForeignKeyViolation(err) {
		return model.ErrRoundNotFound
	}
	return err
}

func (s *Storage) GetAnswersForRound(ctx context.Context, roundID model.RoundID) ([]*model.AnswerSubmission, error) {
	var rows []*answerRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("a.round_id = ?", int64(roundID)).
		Order("a.id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	answers := make([]*model.AnswerSubmission, 0, len(rows))
	for _, row := range rows {
		answers = append(answers, row.toModel())
	}
	return answers, nil
}

func (s *Storage) DeleteRound(ctx context.Context, id model.RoundID) error {
	// ON DELETE CASCADE removes the round's answers
	res, err := s.db.NewDelete().
		Model((*roundRow)(nil)).
		Where("id = ?", int64(id)).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, model.ErrRoundNotFound)
}

// Ranking

func (s *Storage) GetTopRanking(ctx context.Context, limit int) ([]*model.RankingEntry, error) {
	var rows []struct {
		Username     string     `bun:"username"`
		XP           int        `bun:"xp"`
		Level        int        `bun:"level"`
		RoundsPlayed int        `bun:"rounds_played"`
		AvgScore     float64    `bun:"avg_score"`
		LastRoundAt  *time.Time `bun:"last_round_at"`
	}

	err := s.db.NewRaw(`
		SELECT u.username, u.xp, u.level,
		       COUNT(r.id) AS rounds_played,
		       COALESCE(AVG(r.score), 0) AS avg_score,
		       MAX(r.completed_at) AS last_round_at
		FROM users u
		LEFT JOIN rounds r ON r.user_id = u.id AND r.completed_at IS NOT NULL
		GROUP BY u.id, u.username, u.xp, u.level
		ORDER BY u.xp DESC, u.username ASC
		LIMIT ?`, limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.RankingEntry, 0, len(rows))
	for _, row := range rows {
		entry := &model.RankingEntry{
			Username:     row.Username,
			XP:           row.XP,
			Level:        row.Level,
			RoundsPlayed: row.RoundsPlayed,
			AvgScore:     row.AvgScore,
		}
		if row.LastRoundAt != nil {
			entry.LastRoundAt = *row.LastRoundAt
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// requireAffected maps a zero-row write onto the given not-found error
func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
