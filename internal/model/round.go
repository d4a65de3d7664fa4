package model

import "time"

// RoundID uniquely identifies a play session
type RoundID int64

// Round represents one play session from open to close.
// A round is open until CompletedAt is set; it closes exactly once and
// its score fields are fixed from then on. There is no abandoned state:
// a round that is never closed simply stays open.
type Round struct {
	ID          RoundID
	UserID      UserID
	StartedAt   time.Time
	CompletedAt time.Time // zero while the round is open
	Score       int
	XPEarned    int
	DurationSec int
}

// IsClosed reports whether the round has been completed
func (r *Round) IsClosed() bool {
	return !r.CompletedAt.IsZero()
}

// AnswerSubmission records one answer given during an open round.
// Duplicate submissions for the same question are accepted; dedup is
// left to the persistence backend if it wants stricter semantics.
type AnswerSubmission struct {
	RoundID      RoundID
	QuestionID   QuestionID
	ChoiceID     ChoiceID
	TimeSpentSec int
}

// RoundResult is the immutable summary produced when a round closes
type RoundResult struct {
	Score        int
	XPEarned     int
	CorrectCount int
	TotalTimeSec int
}
