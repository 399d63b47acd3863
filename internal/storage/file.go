package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
)

// FileStorage serves the three event sources and the survey store from
// JSON files. The event sources are read-only; only surveys are written
// back, via a debounced save worker.
type FileStorage struct {
	calendar    map[string][]internal.CalendarEntry // userID -> entries
	actions     map[string][]internal.ActionItem
	commitments map[string][]internal.Commitment
	surveys     map[string][]*internal.Survey // userID -> surveys (newest first)
	mu          sync.RWMutex

	calendarFile    string
	actionsFile     string
	commitmentsFile string
	surveysFile     string

	saveSurveysChan  chan struct{}
	shutdownChan     chan struct{}
	shutdownOnce     sync.Once
	saveSurveysDelay time.Duration
	logger           internal.Logger
}

func NewFileStorage(calendarFile, actionsFile, commitmentsFile, surveysFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		calendar:         make(map[string][]internal.CalendarEntry),
		actions:          make(map[string][]internal.ActionItem),
		commitments:      make(map[string][]internal.Commitment),
		surveys:          make(map[string][]*internal.Survey),
		calendarFile:     calendarFile,
		actionsFile:      actionsFile,
		commitmentsFile:  commitmentsFile,
		surveysFile:      surveysFile,
		saveSurveysChan:  make(chan struct{}, 1),
		shutdownChan:     make(chan struct{}),
		saveSurveysDelay: 500 * time.Millisecond,
		logger:           logger,
	}

	if err := s.loadCalendar(); err != nil {
		logger.Errorf("storage: failed to load calendar events: %v", err)
		return nil, err
	}
	if err := s.loadActions(); err != nil {
		logger.Errorf("storage: failed to load daily actions: %v", err)
		return nil, err
	}
	if err := s.loadCommitments(); err != nil {
		logger.Errorf("storage: failed to load extracted actions: %v", err)
		return nil, err
	}
	if err := s.loadSurveys(); err != nil {
		logger.Errorf("storage: failed to load surveys: %v", err)
		return nil, err
	}

	go s.saveSurveysWorker()

	return s, nil
}

func decodeJSONFile(path string, out interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func (s *FileStorage) loadCalendar() error {
	var entries []internal.CalendarEntry
	if err := decodeJSONFile(s.calendarFile, &entries); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.calendar[e.UserID] = append(s.calendar[e.UserID], e)
	}
	return nil
}

func (s *FileStorage) loadActions() error {
	var items []internal.ActionItem
	if err := decodeJSONFile(s.actionsFile, &items); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range items {
		s.actions[a.UserID] = append(s.actions[a.UserID], a)
	}
	return nil
}

func (s *FileStorage) loadCommitments() error {
	var commitments []internal.Commitment
	if err := decodeJSONFile(s.commitmentsFile, &commitments); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range commitments {
		if c.ScheduledDate == "" {
			continue // unscheduled commitments never reach the engine
		}
		s.commitments[c.UserID] = append(s.commitments[c.UserID], c)
	}
	return nil
}

func (s *FileStorage) loadSurveys() error {
	var surveys []*internal.Survey
	if err := decodeJSONFile(s.surveysFile, &surveys); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sv := range surveys {
		s.surveys[sv.UserID] = append(s.surveys[sv.UserID], sv)
	}
	// Newest first per user
	for userID := range s.surveys {
		sort.Slice(s.surveys[userID], func(i, j int) bool {
			return s.surveys[userID][i].CreatedAt.After(s.surveys[userID][j].CreatedAt)
		})
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveSurveys() error {
	s.mu.RLock()
	var surveys []*internal.Survey
	for _, userSurveys := range s.surveys {
		surveys = append(surveys, userSurveys...)
	}
	s.mu.RUnlock()
	if surveys == nil {
		surveys = make([]*internal.Survey, 0)
	}
	return atomicWriteFileJSON(s.surveysFile, surveys)
}

func (s *FileStorage) saveSurveysWorker() {
	timer := time.NewTimer(s.saveSurveysDelay)
	defer timer.Stop()

	for {
		select {
		case <-s.saveSurveysChan:
			timer.Reset(s.saveSurveysDelay)
		case <-timer.C:
			if err := s.saveSurveys(); err != nil {
				s.logger.Errorf("storage: error saving surveys: %v", err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStorage) Close() error {
	s.shutdownOnce.Do(func() { close(s.shutdownChan) })
	return s.saveSurveys()
}

// --- CalendarEntryRepository ---
func (s *FileStorage) ListCalendarEntries(ctx context.Context, userID string, from, to time.Time) ([]internal.CalendarEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fromDate := from.Format("2006-01-02")
	toDate := to.Format("2006-01-02")
	var entries []internal.CalendarEntry
	for _, e := range s.calendar[userID] {
		if e.Date >= fromDate && e.Date < toDate {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// --- ActionItemRepository ---
func (s *FileStorage) ListActionItems(ctx context.Context, userID string) ([]internal.ActionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]internal.ActionItem, len(s.actions[userID]))
	copy(items, s.actions[userID])
	return items, nil
}

// --- CommitmentRepository ---
func (s *FileStorage) ListScheduledCommitments(ctx context.Context, userID string) ([]internal.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	commitments := make([]internal.Commitment, len(s.commitments[userID]))
	copy(commitments, s.commitments[userID])
	return commitments, nil
}

// --- SurveyRepository ---
func (s *FileStorage) LatestCompletedSurvey(ctx context.Context, userID string) (*internal.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sv := range s.surveys[userID] {
		if sv.Status == "completed" {
			return sv, nil
		}
	}
	return nil, ErrSurveyNotFound
}

func (s *FileStorage) SaveSurvey(ctx context.Context, survey *internal.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	surveys := s.surveys[survey.UserID]
	inserted := false
	for i, existing := range surveys {
		if existing.CreatedAt.Before(survey.CreatedAt) {
			surveys = append(surveys[:i], append([]*internal.Survey{survey}, surveys[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		surveys = append(surveys, survey)
	}
	s.surveys[survey.UserID] = surveys

	select {
	case s.saveSurveysChan <- struct{}{}:
	default:
	}
	return nil
}

// --- Compile-time assertions ---
var _ CalendarEntryRepository = (*FileStorage)(nil)
var _ ActionItemRepository = (*FileStorage)(nil)
var _ CommitmentRepository = (*FileStorage)(nil)
var _ SurveyRepository = (*FileStorage)(nil)
