package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
)

// ErrSurveyNotFound is returned when a user has no completed survey yet.
// Callers fall back to the default energy profile.
var ErrSurveyNotFound = errors.New("storage: survey not found")

// The three event sources are independent, read-only collaborators.
// Each has its own row shape; normalization happens in the service layer.

type CalendarEntryRepository interface {
	ListCalendarEntries(ctx context.Context, userID string, from, to time.Time) ([]internal.CalendarEntry, error)
}

type ActionItemRepository interface {
	ListActionItems(ctx context.Context, userID string) ([]internal.ActionItem, error)
}

type CommitmentRepository interface {
	// ListScheduledCommitments returns only commitments with a scheduled date.
	ListScheduledCommitments(ctx context.Context, userID string) ([]internal.Commitment, error)
}

type SurveyRepository interface {
	LatestCompletedSurvey(ctx context.Context, userID string) (*internal.Survey, error)
	SaveSurvey(ctx context.Context, survey *internal.Survey) error
}
