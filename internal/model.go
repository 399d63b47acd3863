package internal

import "time"

type User struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
}

// EventKind is the canonical event category every source type maps onto.
type EventKind string

const (
	KindAppointment EventKind = "appointment"
	KindTherapy     EventKind = "therapy"
	KindMedication  EventKind = "medication"
	KindRest        EventKind = "rest"
	KindPersonal    EventKind = "personal"
	KindEmergency   EventKind = "emergency"
)

type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusCompleted EventStatus = "completed"
	StatusMissed    EventStatus = "missed"
)

// Event is one normalized calendar entry. IDs are source-qualified
// ("calendar:<id>", "action:<id>", "commitment:<id>") so entries from
// different sources never collide.
type Event struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	StartTime  time.Time   `json:"start_time"`
	EndTime    time.Time   `json:"end_time"`
	Kind       EventKind   `json:"kind"`
	Status     EventStatus `json:"status"`
	SourceNote string      `json:"source_note,omitempty"`
}

// Timeline is the merged, ascending-ordered event view for one user.
// It is rebuilt on every aggregation request and never persisted.
type Timeline struct {
	UserID   string    `json:"user_id"`
	Events   []Event   `json:"events"`
	Warnings []string  `json:"warnings,omitempty"`
	Built    time.Time `json:"built"`
}

// Window clips a timeline to [Start, End). A zero End means unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

type OverwhelmStyle string

const (
	OverwhelmGentle OverwhelmStyle = "gentle"
	OverwhelmDirect OverwhelmStyle = "direct"
)

type SupportStyle string

const (
	SupportReminders     SupportStyle = "reminders"
	SupportEncouragement SupportStyle = "encouragement"
	SupportPractical     SupportStyle = "practical"
)

// EnergyProfile is a user's derived scheduling-preference summary.
// Every field is always populated; missing survey data resolves to the
// default profile, never to partial state.
type EnergyProfile struct {
	PeakHours      []string       `json:"peak_hours"`
	DisplayReason  string         `json:"display_reason"`
	OverwhelmStyle OverwhelmStyle `json:"overwhelm_style"`
	SupportStyle   SupportStyle   `json:"support_style"`
	MaxDailyItems  int            `json:"max_daily_items"`
}

type ConflictLevel string

const (
	ConflictNone  ConflictLevel = "none"
	ConflictMinor ConflictLevel = "minor"
	ConflictMajor ConflictLevel = "major"
)

// SuggestionCandidate is one ranked slot proposal. ConflictLevel is always
// computed locally against the timeline, never taken from the reasoner.
type SuggestionCandidate struct {
	Date          string        `json:"date"` // YYYY-MM-DD
	Time          string        `json:"time"` // HH:MM
	Confidence    int           `json:"confidence"`
	Reason        string        `json:"reason"`
	ConflictLevel ConflictLevel `json:"conflict_level"`
}

// --- Source collaborator row shapes ---

// CalendarEntry is a row from the scheduled-calendar source.
type CalendarEntry struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
}

// ActionItem is a row from the user-authored task/action source.
type ActionItem struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Date            string  `json:"date"`
	StartTime       *string `json:"start_time,omitempty"` // HH:MM
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	Status          string  `json:"status"`
	ActionType      string  `json:"action_type"`
	FocusArea       string  `json:"focus_area,omitempty"`
}

// Commitment is a row extracted from a recorded conversation. Only rows
// with a scheduled date reach this subsystem.
type Commitment struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	ActionText    string  `json:"action_text"`
	ScheduledDate string  `json:"scheduled_date"`
	ScheduledTime *string `json:"scheduled_time,omitempty"`
	Status        string  `json:"status"`
	ActionType    string  `json:"action_type"`
	Category      string  `json:"category"`
}

// Survey is one completed preference questionnaire. Answers is a flat
// question-key to answer-string mapping.
type Survey struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Answers   map[string]string `json:"answers"`
	Status    string            `json:"status"` // completed, draft
	CreatedAt time.Time         `json:"created_at"`
}
