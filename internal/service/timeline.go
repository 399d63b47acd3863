package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/storage"
)

const (
	defaultCalendarDuration   = 60 * time.Minute
	defaultActionDuration     = 30 * time.Minute
	defaultCommitmentDuration = 30 * time.Minute

	// Per-source default time of day when the row carries no time.
	defaultActionStart     = "09:00"
	defaultCommitmentStart = "10:00"
)

// Calendar entries carry an explicit type; unknown values map to personal.
var calendarKindTable = map[string]internal.EventKind{
	"appointment": internal.KindAppointment,
	"medical":     internal.KindAppointment,
	"doctor":      internal.KindAppointment,
	"therapy":     internal.KindTherapy,
	"counseling":  internal.KindTherapy,
	"medication":  internal.KindMedication,
	"rest":        internal.KindRest,
	"break":       internal.KindRest,
	"personal":    internal.KindPersonal,
	"emergency":   internal.KindEmergency,
}

// Action items classify by action_type.
var actionKindTable = map[string]internal.EventKind{
	"appointment": internal.KindAppointment,
	"therapy":     internal.KindTherapy,
	"exercise":    internal.KindTherapy,
	"medication":  internal.KindMedication,
	"rest":        internal.KindRest,
	"self_care":   internal.KindRest,
	"personal":    internal.KindPersonal,
	"daily_win":   internal.KindPersonal,
}

// Extracted commitments classify by category first, then action_type.
var commitmentKindTable = map[string]internal.EventKind{
	"medical":    internal.KindAppointment,
	"health":     internal.KindAppointment,
	"therapy":    internal.KindTherapy,
	"medication": internal.KindMedication,
	"rest":       internal.KindRest,
	"personal":   internal.KindPersonal,
	"family":     internal.KindPersonal,
	"urgent":     internal.KindEmergency,
}

var statusTable = map[string]internal.EventStatus{
	"completed": internal.StatusCompleted,
	"done":      internal.StatusCompleted,
	"missed":    internal.StatusMissed,
	"skipped":   internal.StatusMissed,
	"cancelled": internal.StatusMissed,
}

// TimelineService merges the three event sources into one normalized,
// deterministically ordered timeline per request.
type TimelineService struct {
	calendar    storage.CalendarEntryRepository
	actions     storage.ActionItemRepository
	commitments storage.CommitmentRepository
	logger      internal.Logger
	now         func() time.Time
}

func NewTimelineService(calendar storage.CalendarEntryRepository, actions storage.ActionItemRepository, commitments storage.CommitmentRepository, logger internal.Logger) *TimelineService {
	return &TimelineService{
		calendar:    calendar,
		actions:     actions,
		commitments: commitments,
		logger:      logger,
		now:         time.Now,
	}
}

// BuildTimeline reads the three sources concurrently and merges their rows
// into one sorted timeline. A failing source does not abort the build: its
// failure is logged and surfaced as a timeline warning, and the remaining
// sources still contribute.
func (s *TimelineService) BuildTimeline(ctx context.Context, userID string, window *internal.Window) (*internal.Timeline, error) {
	if window != nil && !window.End.IsZero() && window.End.Before(window.Start) {
		return nil, internal.ErrInvalidWindow
	}

	now := s.now()

	// Calendar queries are range-bound; default to a generous range when
	// the caller gave no window.
	from := now.AddDate(0, -1, 0)
	to := now.AddDate(0, 1, 0)
	if window != nil {
		if !window.Start.IsZero() {
			from = window.Start
		}
		if !window.End.IsZero() {
			to = window.End
		}
	}

	var (
		wg          sync.WaitGroup
		entries     []internal.CalendarEntry
		items       []internal.ActionItem
		commitments []internal.Commitment
		errCalendar error
		errActions  error
		errCommits  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		entries, errCalendar = s.calendar.ListCalendarEntries(ctx, userID, from, to)
	}()
	go func() {
		defer wg.Done()
		items, errActions = s.actions.ListActionItems(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		commitments, errCommits = s.commitments.ListScheduledCommitments(ctx, userID)
	}()
	wg.Wait()

	timeline := &internal.Timeline{UserID: userID, Built: now}

	collect := func(source string, err error) {
		srcErr := &internal.SourceError{Source: source, Err: err}
		s.logger.Errorf("timeline: %v", srcErr)
		timeline.Warnings = append(timeline.Warnings, srcErr.Error())
	}
	if errCalendar != nil {
		collect("calendar", errCalendar)
	}
	if errActions != nil {
		collect("actions", errActions)
	}
	if errCommits != nil {
		collect("commitments", errCommits)
	}

	var events []internal.Event
	for _, e := range entries {
		ev, ok := s.mapCalendarEntry(e, now)
		if ok {
			events = append(events, ev)
		}
	}
	for _, a := range items {
		ev, ok := s.mapActionItem(a, now)
		if ok {
			events = append(events, ev)
		}
	}
	for _, c := range commitments {
		ev, ok := s.mapCommitment(c, now)
		if ok {
			events = append(events, ev)
		}
	}

	// Deterministic order: start time ascending, ties broken by id.
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartTime.Before(events[j].StartTime)
	})

	// Drop duplicate ids, keeping the first occurrence.
	seen := make(map[string]bool, len(events))
	result := events[:0]
	for _, ev := range events {
		if seen[ev.ID] {
			continue
		}
		seen[ev.ID] = true
		if window != nil {
			if !window.Start.IsZero() && ev.StartTime.Before(window.Start) {
				continue
			}
			if !window.End.IsZero() && !ev.StartTime.Before(window.End) {
				continue
			}
		}
		result = append(result, ev)
	}
	timeline.Events = result

	return timeline, nil
}

// parseDayTime combines a YYYY-MM-DD date and an HH:MM time of day in the
// local zone.
func parseDayTime(date, clock string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
}

func resolveStatus(raw string, start, now time.Time) internal.EventStatus {
	if s, ok := statusTable[raw]; ok {
		return s
	}
	if start.Before(now) {
		return internal.StatusCompleted
	}
	return internal.StatusUpcoming
}

func (s *TimelineService) mapCalendarEntry(e internal.CalendarEntry, now time.Time) (internal.Event, bool) {
	start, err := parseDayTime(e.Date, e.Time)
	if err != nil {
		s.logger.Warnf("timeline: dropping calendar entry %s: bad date/time %q %q", e.ID, e.Date, e.Time)
		return internal.Event{}, false
	}

	kind, ok := calendarKindTable[e.Type]
	if !ok {
		kind = calendarKindTable[e.Category]
	}
	if kind == "" {
		kind = internal.KindPersonal
	}

	return internal.Event{
		ID:         "calendar:" + e.ID,
		Title:      e.Title,
		StartTime:  start,
		EndTime:    start.Add(defaultCalendarDuration),
		Kind:       kind,
		Status:     resolveStatus("", start, now),
		SourceNote: "calendar entry",
	}, true
}

func (s *TimelineService) mapActionItem(a internal.ActionItem, now time.Time) (internal.Event, bool) {
	clock := defaultActionStart
	if a.StartTime != nil && *a.StartTime != "" {
		clock = *a.StartTime
	}
	start, err := parseDayTime(a.Date, clock)
	if err != nil {
		s.logger.Warnf("timeline: dropping action item %s: bad date/time %q %q", a.ID, a.Date, clock)
		return internal.Event{}, false
	}

	duration := defaultActionDuration
	if a.DurationMinutes != nil && *a.DurationMinutes > 0 {
		duration = time.Duration(*a.DurationMinutes) * time.Minute
	}

	kind, ok := actionKindTable[a.ActionType]
	if !ok {
		kind = actionKindTable[a.FocusArea]
	}
	if kind == "" {
		kind = internal.KindPersonal
	}

	note := "action item"
	if a.FocusArea != "" {
		note = fmt.Sprintf("action item (%s)", a.FocusArea)
	}

	return internal.Event{
		ID:         "action:" + a.ID,
		Title:      a.Title,
		StartTime:  start,
		EndTime:    start.Add(duration),
		Kind:       kind,
		Status:     resolveStatus(a.Status, start, now),
		SourceNote: note,
	}, true
}

func (s *TimelineService) mapCommitment(c internal.Commitment, now time.Time) (internal.Event, bool) {
	clock := defaultCommitmentStart
	if c.ScheduledTime != nil && *c.ScheduledTime != "" {
		clock = *c.ScheduledTime
	}
	start, err := parseDayTime(c.ScheduledDate, clock)
	if err != nil {
		s.logger.Warnf("timeline: dropping commitment %s: bad date/time %q %q", c.ID, c.ScheduledDate, clock)
		return internal.Event{}, false
	}

	kind, ok := commitmentKindTable[c.Category]
	if !ok {
		kind = commitmentKindTable[c.ActionType]
	}
	if kind == "" {
		kind = internal.KindPersonal
	}

	return internal.Event{
		ID:         "commitment:" + c.ID,
		Title:      c.ActionText,
		StartTime:  start,
		EndTime:    start.Add(defaultCommitmentDuration),
		Kind:       kind,
		Status:     resolveStatus(c.Status, start, now),
		SourceNote: "extracted from conversation",
	}, true
}
