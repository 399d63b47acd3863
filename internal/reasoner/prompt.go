package reasoner

import (
	"fmt"
	"strings"
)

// buildPrompt renders the request as the line-oriented input the service
// instructions expect.
func buildPrompt(req *Request) string {
	var b strings.Builder

	b.WriteString("task: ")
	b.WriteString(req.TaskText)
	b.WriteString("\n")

	fmt.Fprintf(&b, "estimated_duration_minutes: %d\n", req.DurationMinutes)
	fmt.Fprintf(&b, "lookahead_days: %d\n", req.LookaheadDays)

	if req.CalendarSummary != "" {
		b.WriteString("calendar:\n")
		b.WriteString(req.CalendarSummary)
		b.WriteString("\n")
	}

	if req.EnergySummary != "" {
		b.WriteString("recent_energy:\n")
		b.WriteString(req.EnergySummary)
		b.WriteString("\n")
	}

	if req.ProfileContext != "" {
		b.WriteString("energy_profile: ")
		b.WriteString(req.ProfileContext)
		b.WriteString("\n")
	}

	return b.String()
}

const slotInstructions = `You propose time slots for one pending task.

You MUST:
- output ONLY a valid JSON array, nothing else,
- return at most 3 objects of the form {"date": "YYYY-MM-DD", "time": "HH:MM", "reason": string, "confidence": integer 0-100},
- keep every date within the stated lookahead window,
- prefer the user's peak energy hours and avoid times adjacent to existing calendar entries.

You MUST NOT:
- claim a slot is conflict-free (conflicts are checked by the caller),
- output text outside the JSON array,
- invent calendar entries or preferences not present in the input.`
