package model

import (
	"time"

	"github.com/google/uuid"

	"club-loyalty/internal/domain"
)

type SessionStatus string

const (
	SessionStatusActive   SessionStatus = "active"
	SessionStatusFinished SessionStatus = "finished"
)

// Session is one timed interval of terminal usage. It transitions
// active -> finished exactly once and is never reopened.
type Session struct {
	ID             string
	CardID         string
	ComputerNumber int
	StartedAt      time.Time
	EndedAt        *time.Time
	Minutes        int
	PointsEarned   int
	Status         SessionStatus
}

func NewSession(id, cardID string, computerNumber int, startedAt time.Time) (*Session, error) {
	if cardID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if computerNumber <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if id == "" {
		id = uuid.NewString()
	}
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	return &Session{
		ID:             id,
		CardID:         cardID,
		ComputerNumber: computerNumber,
		StartedAt:      startedAt,
		Status:         SessionStatusActive,
	}, nil
}

// Finish applies the terminal transition. It validates the time range and
// computes the whole-minute duration; the caller supplies the points.
func (s *Session) Finish(endedAt time.Time, pointsEarned int) error {
	if s.Status == SessionStatusFinished {
		return domain.ErrInvalidState
	}
	if endedAt.Before(s.StartedAt) {
		return domain.ErrInvalidTimeRange
	}
	minutes := int(endedAt.Sub(s.StartedAt) / time.Minute)
	s.EndedAt = &endedAt
	s.Minutes = minutes
	s.PointsEarned = pointsEarned
	s.Status = SessionStatusFinished
	return nil
}

// DurationMinutes reports the whole minutes between start and the given end.
func (s *Session) DurationMinutes(endedAt time.Time) (int, error) {
	if endedAt.Before(s.StartedAt) {
		return 0, domain.ErrInvalidTimeRange
	}
	return int(endedAt.Sub(s.StartedAt) / time.Minute), nil
}
