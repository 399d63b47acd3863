package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/reasoner"
)

var validate = validator.New()

const (
	conflictBuffer      = 15 * time.Minute
	fallbackConfidence  = 60
	defaultLookaheadDay = 7
	maxLookaheadDays    = 14
	maxCalendarLines    = 20
	recentHistoryDays   = 7
)

// ClampLookahead bounds a requested lookahead to [1, 14] days; zero or
// negative values take the default of 7.
func ClampLookahead(days int) int {
	if days < 1 {
		return defaultLookaheadDay
	}
	if days > maxLookaheadDays {
		return maxLookaheadDays
	}
	return days
}

// LookaheadWindow is the half-open suggestion window [start of today,
// today+days) after clamping. Candidates must land inside it.
func LookaheadWindow(now time.Time, days int) internal.Window {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return internal.Window{Start: start, End: start.AddDate(0, 0, ClampLookahead(days))}
}

// ContextWindow widens the lookahead window with a week of history.
// Timelines built for Suggest should use it so the recent-energy summary
// sent to the reasoner has completed and missed events to count.
func ContextWindow(now time.Time, days int) internal.Window {
	w := LookaheadWindow(now, days)
	w.Start = w.Start.AddDate(0, 0, -recentHistoryDays)
	return w
}

// TaskRequest is one scheduling request: the pending task plus the
// lookahead horizon.
type TaskRequest struct {
	Text            string `json:"text" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gte=1,lte=480"`
	LookaheadDays   int    `json:"lookahead_days" validate:"omitempty,gte=1,lte=14"`
}

func ValidateTaskRequest(req *TaskRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrInvalidTask, err)
	}
	return nil
}

// SuggestService ranks candidate time slots for a pending task. The
// reasoner proposes; this service validates, computes conflict levels and
// falls back to a deterministic peak-hour policy when the reasoner is
// unavailable or returns nothing usable.
type SuggestService struct {
	reasoner reasoner.Client
	logger   internal.Logger
	now      func() time.Time
}

func NewSuggestService(client reasoner.Client, logger internal.Logger) *SuggestService {
	return &SuggestService{
		reasoner: client,
		logger:   logger,
		now:      time.Now,
	}
}

// Suggest returns ranked slot candidates for the task. The second return
// reports whether the deterministic fallback produced them. The only hard
// failures are ErrInvalidTask and ErrNoSlotAvailable.
func (s *SuggestService) Suggest(ctx context.Context, task *TaskRequest, timeline *internal.Timeline, profile internal.EnergyProfile) ([]internal.SuggestionCandidate, bool, error) {
	if err := ValidateTaskRequest(task); err != nil {
		return nil, false, err
	}

	lookahead := ClampLookahead(task.LookaheadDays)
	window := LookaheadWindow(s.now(), lookahead)
	windowStart, windowEnd := window.Start, window.End

	candidates := s.askReasoner(ctx, task, timeline, profile, lookahead, windowStart, windowEnd)

	duration := time.Duration(task.DurationMinutes) * time.Minute
	var valid []internal.SuggestionCandidate
	for _, c := range candidates {
		slot, ok := validateCandidate(c, windowStart, windowEnd)
		if !ok {
			s.logger.Warnf("suggest: dropping candidate %q %q: out of window or malformed", c.Date, c.Time)
			continue
		}
		valid = append(valid, internal.SuggestionCandidate{
			Date:          c.Date,
			Time:          c.Time,
			Confidence:    c.Confidence,
			Reason:        c.Reason,
			ConflictLevel: conflictLevel(slot, duration, timeline),
		})
	}

	if len(valid) > 0 {
		sortCandidates(valid)
		return valid, false, nil
	}

	fallback := s.fallbackSlot(s.now(), windowEnd, duration, timeline, profile)
	if fallback == nil {
		return nil, true, internal.ErrNoSlotAvailable
	}
	return []internal.SuggestionCandidate{*fallback}, true, nil
}

func (s *SuggestService) askReasoner(ctx context.Context, task *TaskRequest, timeline *internal.Timeline, profile internal.EnergyProfile, lookahead int, windowStart, windowEnd time.Time) []reasoner.Candidate {
	req := &reasoner.Request{
		TaskText:        task.Text,
		DurationMinutes: task.DurationMinutes,
		LookaheadDays:   lookahead,
		CalendarSummary: renderCalendarSummary(timeline, windowStart, windowEnd),
		EnergySummary:   renderEnergySummary(timeline, s.now()),
		ProfileContext:  renderProfileContext(profile),
	}

	candidates, err := s.reasoner.SuggestSlots(ctx, req)
	if err != nil {
		// Unavailability is never surfaced; the fallback path covers it.
		s.logger.Warnf("suggest: reasoner unavailable, using fallback: %v", err)
		return nil
	}
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	return candidates
}

// validateCandidate enforces the local trust boundary: malformed
// dates/times, out-of-range confidence and out-of-window dates are
// dropped, never corrected.
func validateCandidate(c reasoner.Candidate, windowStart, windowEnd time.Time) (time.Time, bool) {
	if c.Confidence < 0 || c.Confidence > 100 {
		return time.Time{}, false
	}
	slot, err := time.ParseInLocation("2006-01-02 15:04", c.Date+" "+c.Time, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	if slot.Before(windowStart) || !slot.Before(windowEnd) {
		return time.Time{}, false
	}
	return slot, true
}

// conflictLevel compares the slot's span against every timeline event:
// major when the task itself overlaps an event, minor when only the
// trailing buffer does.
func conflictLevel(slot time.Time, duration time.Duration, timeline *internal.Timeline) internal.ConflictLevel {
	if timeline == nil {
		return internal.ConflictNone
	}
	coreEnd := slot.Add(duration)
	bufferedEnd := coreEnd.Add(conflictBuffer)

	level := internal.ConflictNone
	for _, ev := range timeline.Events {
		if slot.Before(ev.EndTime) && ev.StartTime.Before(coreEnd) {
			return internal.ConflictMajor
		}
		if slot.Before(ev.EndTime) && ev.StartTime.Before(bufferedEnd) {
			level = internal.ConflictMinor
		}
	}
	return level
}

func sortCandidates(candidates []internal.SuggestionCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		if candidates[i].Date != candidates[j].Date {
			return candidates[i].Date < candidates[j].Date
		}
		return candidates[i].Time < candidates[j].Time
	})
}

// fallbackSlot scans the lookahead window day by day for the first future
// peak-hour slot with no conflict, honoring the profile's daily item cap.
func (s *SuggestService) fallbackSlot(now, windowEnd time.Time, duration time.Duration, timeline *internal.Timeline, profile internal.EnergyProfile) *internal.SuggestionCandidate {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for ; day.Before(windowEnd); day = day.AddDate(0, 0, 1) {
		if eventsOnDay(timeline, day) >= profile.MaxDailyItems {
			continue
		}
		for _, peak := range profile.PeakHours {
			slot, err := time.ParseInLocation("2006-01-02 15:04", day.Format("2006-01-02")+" "+peak, time.Local)
			if err != nil {
				continue
			}
			if slot.Before(now) || !slot.Before(windowEnd) {
				continue
			}
			if conflictLevel(slot, duration, timeline) != internal.ConflictNone {
				continue
			}
			return &internal.SuggestionCandidate{
				Date:          slot.Format("2006-01-02"),
				Time:          slot.Format("15:04"),
				Confidence:    fallbackConfidence,
				Reason:        profile.DisplayReason,
				ConflictLevel: internal.ConflictNone,
			}
		}
	}
	return nil
}

func eventsOnDay(timeline *internal.Timeline, day time.Time) int {
	if timeline == nil {
		return 0
	}
	next := day.AddDate(0, 0, 1)
	count := 0
	for _, ev := range timeline.Events {
		if !ev.StartTime.Before(day) && ev.StartTime.Before(next) && ev.Status != internal.StatusMissed {
			count++
		}
	}
	return count
}

func renderCalendarSummary(timeline *internal.Timeline, windowStart, windowEnd time.Time) string {
	if timeline == nil {
		return ""
	}
	var lines []string
	for _, ev := range timeline.Events {
		if ev.StartTime.Before(windowStart) || !ev.StartTime.Before(windowEnd) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s-%s %s [%s]",
			ev.StartTime.Format("2006-01-02"),
			ev.StartTime.Format("15:04"),
			ev.EndTime.Format("15:04"),
			ev.Title, ev.Kind))
		if len(lines) >= maxCalendarLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// renderEnergySummary reports how the user has been keeping up recently,
// from the statuses of the past week's events.
func renderEnergySummary(timeline *internal.Timeline, now time.Time) string {
	if timeline == nil {
		return ""
	}
	cutoff := now.AddDate(0, 0, -recentHistoryDays)
	completed, missed := 0, 0
	for _, ev := range timeline.Events {
		if ev.StartTime.Before(cutoff) || ev.StartTime.After(now) {
			continue
		}
		switch ev.Status {
		case internal.StatusCompleted:
			completed++
		case internal.StatusMissed:
			missed++
		}
	}
	return fmt.Sprintf("past 7 days: %d completed, %d missed", completed, missed)
}

func renderProfileContext(profile internal.EnergyProfile) string {
	return fmt.Sprintf("peak hours %s; %s; at most %d items per day",
		strings.Join(profile.PeakHours, ", "), profile.DisplayReason, profile.MaxDailyItems)
}

// IsNoSlot reports whether err is the terminal no-slot failure, the only
// suggestion error the surrounding application shows to users.
func IsNoSlot(err error) bool {
	return errors.Is(err, internal.ErrNoSlotAvailable)
}
