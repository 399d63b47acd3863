package reasoner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
)

func TestParseCandidates_PlainArray(t *testing.T) {
	raw := []byte(`[{"date":"2026-09-01","time":"09:00","reason":"quiet morning","confidence":85}]`)
	candidates := ParseCandidates(raw)
	require.Len(t, candidates, 1)
	assert.Equal(t, "2026-09-01", candidates[0].Date)
	assert.Equal(t, 85, candidates[0].Confidence)
}

func TestParseCandidates_SkipsMalformedEntries(t *testing.T) {
	raw := []byte(`[{"date":"2026-09-01","time":"09:00","reason":"ok","confidence":85},"not an object",{"date":"2026-09-02","time":"14:00","reason":"ok too","confidence":"high"}]`)
	candidates := ParseCandidates(raw)
	// The string entry and the non-numeric confidence are discarded.
	require.Len(t, candidates, 1)
	assert.Equal(t, "2026-09-01", candidates[0].Date)
}

func TestParseCandidates_OutputEnvelopeAndProse(t *testing.T) {
	raw := []byte(`{"output":"Here are the slots: [{\"date\":\"2026-09-01\",\"time\":\"09:00\",\"reason\":\"peak hours\",\"confidence\":70}] hope that helps"}`)
	candidates := ParseCandidates(raw)
	require.Len(t, candidates, 1)
	assert.Equal(t, "peak hours", candidates[0].Reason)
}

func TestParseCandidates_NoArray(t *testing.T) {
	assert.Empty(t, ParseCandidates([]byte(`I cannot help with that.`)))
	assert.Empty(t, ParseCandidates([]byte(``)))
}

func TestHTTPClient_SuggestSlots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"date":"2026-09-01","time":"09:00","reason":"free slot","confidence":80}]`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key", 2*time.Second, internal.NopLogger{})
	candidates, err := client.SuggestSlots(context.Background(), &Request{
		TaskText:        "call nurse",
		DurationMinutes: 15,
		LookaheadDays:   3,
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "free slot", candidates[0].Reason)
}

func TestHTTPClient_NonOKStatusIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key", 2*time.Second, internal.NopLogger{})
	_, err := client.SuggestSlots(context.Background(), &Request{TaskText: "x", DurationMinutes: 15, LookaheadDays: 1})
	assert.ErrorIs(t, err, internal.ErrReasonerUnavailable)
}

func TestHTTPClient_UnreachableIsUnavailable(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:1", "test-key", 500*time.Millisecond, internal.NopLogger{})
	_, err := client.SuggestSlots(context.Background(), &Request{TaskText: "x", DurationMinutes: 15, LookaheadDays: 1})
	assert.ErrorIs(t, err, internal.ErrReasonerUnavailable)
}

func TestDisabledClient(t *testing.T) {
	_, err := Disabled{}.SuggestSlots(context.Background(), &Request{})
	assert.ErrorIs(t, err, internal.ErrReasonerUnavailable)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(&Request{
		TaskText:        "pick up prescription",
		DurationMinutes: 20,
		LookaheadDays:   2,
		CalendarSummary: "2026-09-01 09:00-10:00 Physio [therapy]",
		EnergySummary:   "past 7 days: 4 completed, 1 missed",
		ProfileContext:  "peak hours 09:00, 10:00",
	})
	assert.Contains(t, prompt, "task: pick up prescription")
	assert.Contains(t, prompt, "estimated_duration_minutes: 20")
	assert.Contains(t, prompt, "lookahead_days: 2")
	assert.Contains(t, prompt, "calendar:\n2026-09-01 09:00-10:00 Physio [therapy]")
	assert.Contains(t, prompt, "recent_energy:")
	assert.Contains(t, prompt, "energy_profile: peak hours")
}
