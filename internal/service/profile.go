package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/storage"
)

// The energy-peak question has shipped under several keys over time.
// Checked in priority order; first present answer wins.
var peakKeyAliases = []string{
	"energy_peak_time",
	"peak_energy_time",
	"energy_peak",
	"best_time_of_day",
}

type peakEntry struct {
	hours  []string
	reason string
}

// Canonical peak-answer table. Unrecognized values fall back to the
// default (morning) entry.
var peakTable = map[string]peakEntry{
	"early_morning": {
		hours:  []string{"06:00", "07:00", "08:00"},
		reason: "You said your energy is strongest early in the morning, so we schedule demanding items first thing.",
	},
	"morning": {
		hours:  []string{"07:00", "08:00", "09:00", "10:00"},
		reason: "You told us mornings are your best hours, so we place important items before midday.",
	},
	"afternoon": {
		hours:  []string{"13:00", "14:00", "15:00", "16:00"},
		reason: "You told us your energy picks up after lunch, so we aim for early-afternoon slots.",
	},
	"evening": {
		hours:  []string{"17:00", "18:00", "19:00", "20:00"},
		reason: "You said evenings work best for you, so we keep mornings light and schedule later in the day.",
	},
	"varies": {
		hours:  []string{"09:00", "13:00", "17:00"},
		reason: "Your energy varies day to day, so we spread options across the morning, afternoon and evening.",
	},
}

const defaultPeakValue = "morning"

// DeriveProfile maps raw survey answers onto a fully-populated
// EnergyProfile. It is pure and total: any input, including an empty or
// nil map, yields the same deterministic, complete profile.
func DeriveProfile(answers map[string]string) internal.EnergyProfile {
	peakValue := defaultPeakValue
	for _, key := range peakKeyAliases {
		if v, ok := answers[key]; ok && strings.TrimSpace(v) != "" {
			peakValue = normalizeAnswer(v)
			break
		}
	}

	peak, ok := peakTable[peakValue]
	if !ok {
		peak = peakTable[defaultPeakValue]
	}

	return internal.EnergyProfile{
		PeakHours:      append([]string(nil), peak.hours...),
		DisplayReason:  peak.reason,
		OverwhelmStyle: deriveOverwhelmStyle(answers),
		SupportStyle:   deriveSupportStyle(answers),
		MaxDailyItems:  deriveMaxDailyItems(answers),
	}
}

func normalizeAnswer(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.ReplaceAll(v, " ", "_")
}

// Frequent overwhelm calls for gentle pacing; otherwise be direct.
func deriveOverwhelmStyle(answers map[string]string) internal.OverwhelmStyle {
	v := normalizeAnswer(answers["overwhelm_frequency"])
	if v == "" {
		v = normalizeAnswer(answers["mood_fatigue"])
	}
	switch v {
	case "often", "always", "frequently", "daily", "most_days":
		return internal.OverwhelmGentle
	}
	return internal.OverwhelmDirect
}

// Attention difficulty wins over planning difficulty; encouragement is
// the default.
func deriveSupportStyle(answers map[string]string) internal.SupportStyle {
	switch normalizeAnswer(answers["attention_difficulty"]) {
	case "often", "always", "yes", "severe":
		return internal.SupportReminders
	}
	switch normalizeAnswer(answers["planning_ability"]) {
	case "poor", "struggling", "difficult":
		return internal.SupportPractical
	}
	return internal.SupportEncouragement
}

// Daily item cap clamps to {2, 3, 5} keyed off rhythm consistency.
func deriveMaxDailyItems(answers map[string]string) int {
	switch normalizeAnswer(answers["routine_consistency"]) {
	case "very_consistent", "consistent":
		return 5
	case "inconsistent", "unpredictable":
		return 2
	}
	return 3
}

// ProfileService derives and caches per-user energy profiles. The cache
// is keyed by user ID; submitting a new survey invalidates then
// recomputes, never patches in place.
type ProfileService struct {
	surveys storage.SurveyRepository
	cache   *cache.Cache
	logger  internal.Logger
}

func NewProfileService(surveys storage.SurveyRepository, ttl time.Duration, logger internal.Logger) *ProfileService {
	return &ProfileService{
		surveys: surveys,
		cache:   cache.New(ttl, 10*time.Minute),
		logger:  logger,
	}
}

// Profile returns the user's energy profile, deriving it from the latest
// completed survey on a cache miss. A user with no survey gets the
// default profile.
func (s *ProfileService) Profile(ctx context.Context, userID string) (internal.EnergyProfile, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return cached.(internal.EnergyProfile), nil
	}

	survey, err := s.surveys.LatestCompletedSurvey(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrSurveyNotFound) {
			return internal.EnergyProfile{}, err
		}
		survey = nil
	}

	var answers map[string]string
	if survey != nil {
		answers = survey.Answers
	}
	profile := DeriveProfile(answers)
	s.cache.Set(userID, profile, cache.DefaultExpiration)
	return profile, nil
}

// SubmitSurvey persists a completed survey and refreshes the cached
// profile (invalidate, then recompute from the new answers).
func (s *ProfileService) SubmitSurvey(ctx context.Context, userID string, answers map[string]string) (*internal.Survey, error) {
	survey := &internal.Survey{
		ID:        uuid.NewString(),
		UserID:    userID,
		Answers:   answers,
		Status:    "completed",
		CreatedAt: time.Now(),
	}
	if err := s.surveys.SaveSurvey(ctx, survey); err != nil {
		return nil, err
	}

	s.Invalidate(userID)
	profile := DeriveProfile(answers)
	s.cache.Set(userID, profile, cache.DefaultExpiration)

	s.logger.Infof("profile refreshed for user %s after survey %s", userID, survey.ID)
	return survey, nil
}

// Invalidate drops the cached profile so the next read re-derives it.
func (s *ProfileService) Invalidate(userID string) {
	s.cache.Delete(userID)
}
