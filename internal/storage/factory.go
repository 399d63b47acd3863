package storage

import (
	"fmt"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/config"
)

// Repositories bundles the three event sources and the survey store.
// Both backends implement all four with one storage value.
type Repositories struct {
	Calendar    CalendarEntryRepository
	Actions     ActionItemRepository
	Commitments CommitmentRepository
	Surveys     SurveyRepository

	closer func() error
}

func (r *Repositories) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

func NewRepositories(cfg *config.Config, logger internal.Logger) (*Repositories, error) {
	switch cfg.DBType {
	case "file":
		s, err := NewFileStorage(cfg.FileCalendar, cfg.FileActions, cfg.FileCommitments, cfg.FileSurveys, logger)
		if err != nil {
			return nil, err
		}
		return &Repositories{Calendar: s, Actions: s, Commitments: s, Surveys: s, closer: s.Close}, nil
	case "postgres":
		s, err := NewPostgresStorage(cfg.DBDSN, logger)
		if err != nil {
			return nil, err
		}
		return &Repositories{Calendar: s, Actions: s, Commitments: s, Surveys: s, closer: func() error {
			s.Close()
			return nil
		}}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.DBType)
	}
}
