package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/auth"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/config"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/reasoner"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/service"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/storage"
)

type testApp struct {
	logger      internal.Logger
	timelines   *service.TimelineService
	profiles    *service.ProfileService
	suggestions *service.SuggestService
}

func (a *testApp) Logger() internal.Logger              { return a.logger }
func (a *testApp) Timelines() *service.TimelineService  { return a.timelines }
func (a *testApp) Profiles() *service.ProfileService    { return a.profiles }
func (a *testApp) Suggestions() *service.SuggestService { return a.suggestions }

type fixedReasoner struct {
	candidates []reasoner.Candidate
	err        error
}

func (f fixedReasoner) SuggestSlots(ctx context.Context, req *reasoner.Request) ([]reasoner.Candidate, error) {
	return f.candidates, f.err
}

// recordingReasoner captures the last request it was asked about and then
// reports itself unavailable so the fallback path still answers.
type recordingReasoner struct {
	last *reasoner.Request
}

func (r *recordingReasoner) SuggestSlots(ctx context.Context, req *reasoner.Request) ([]reasoner.Candidate, error) {
	r.last = req
	return nil, internal.ErrReasonerUnavailable
}

func setupRouter(t *testing.T, client reasoner.Client) *gin.Engine {
	return setupRouterWithActions(t, client, `[]`)
}

func setupRouterWithActions(t *testing.T, client reasoner.Client, actionsJSON string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	calendarFile := filepath.Join(dir, "calendar_events.json")
	os.WriteFile(calendarFile, []byte(fmt.Sprintf(`[
		{"id":"c1","user_id":"u1","title":"Physio","date":"%s","time":"10:00","type":"therapy"}
	]`, tomorrow)), 0644)

	actionsFile := filepath.Join(dir, "daily_actions.json")
	os.WriteFile(actionsFile, []byte(actionsJSON), 0644)
	commitmentsFile := filepath.Join(dir, "extracted_actions.json")
	os.WriteFile(commitmentsFile, []byte(`[]`), 0644)

	logger := internal.NopLogger{}
	store, err := storage.NewFileStorage(calendarFile, actionsFile, commitmentsFile, filepath.Join(dir, "surveys.json"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	app := &testApp{
		logger:      logger,
		timelines:   service.NewTimelineService(store, store, store, logger),
		profiles:    service.NewProfileService(store, time.Minute, logger),
		suggestions: service.NewSuggestService(client, logger),
	}

	cfg := &config.Config{Env: "development", AuthToken: "MOCK-TOKEN"}
	provider := auth.NewLocalAuthProvider(cfg.AuthToken, logger)
	return NewRouter(app, provider, cfg)
}

func doRequest(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RequiresAuth(t *testing.T) {
	r := setupRouter(t, fixedReasoner{})
	rec := doRequest(r, "GET", "/timeline", "", "")
	assert.Equal(t, 401, rec.Code)

	rec = doRequest(r, "GET", "/timeline", "WRONG-TOKEN", "")
	assert.Equal(t, 401, rec.Code)

	rec = doRequest(r, "GET", "/health", "", "")
	assert.Equal(t, 200, rec.Code)
}

func TestGetTimeline(t *testing.T) {
	r := setupRouter(t, fixedReasoner{})
	rec := doRequest(r, "GET", "/timeline", "MOCK-TOKEN", "")
	require.Equal(t, 200, rec.Code)

	var body struct {
		Data internal.Timeline `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Events, 1)
	assert.Equal(t, "calendar:c1", body.Data.Events[0].ID)
	assert.Equal(t, internal.StatusUpcoming, body.Data.Events[0].Status)
}

func TestGetTimeline_InvalidWindow(t *testing.T) {
	r := setupRouter(t, fixedReasoner{})
	rec := doRequest(r, "GET", "/timeline?from=2026-09-02T00:00:00Z&to=2026-09-01T00:00:00Z", "MOCK-TOKEN", "")
	assert.Equal(t, 400, rec.Code)
}

func TestProfileSurveyFlow(t *testing.T) {
	r := setupRouter(t, fixedReasoner{})

	// Default profile before any survey.
	rec := doRequest(r, "GET", "/profile", "MOCK-TOKEN", "")
	require.Equal(t, 200, rec.Code)
	var before struct {
		Data internal.EnergyProfile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &before))
	assert.Equal(t, []string{"07:00", "08:00", "09:00", "10:00"}, before.Data.PeakHours)

	// Submitting a survey refreshes the profile immediately.
	rec = doRequest(r, "POST", "/profile/survey", "MOCK-TOKEN", `{"answers":{"energy_peak":"evening"}}`)
	require.Equal(t, 200, rec.Code)

	rec = doRequest(r, "GET", "/profile", "MOCK-TOKEN", "")
	require.Equal(t, 200, rec.Code)
	var after struct {
		Data internal.EnergyProfile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Equal(t, []string{"17:00", "18:00", "19:00", "20:00"}, after.Data.PeakHours)
}

func TestPostSuggestions_FallbackWhenReasonerDown(t *testing.T) {
	r := setupRouter(t, fixedReasoner{err: internal.ErrReasonerUnavailable})

	rec := doRequest(r, "POST", "/suggestions", "MOCK-TOKEN", `{"text":"write one page","duration_minutes":30,"lookahead_days":3}`)
	require.Equal(t, 200, rec.Code)

	var body struct {
		Data []internal.SuggestionCandidate `json:"data"`
		Meta map[string]any                 `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data)
	assert.Equal(t, true, body.Meta["fallback"])
	assert.Equal(t, 60, body.Data[0].Confidence)
	assert.Equal(t, internal.ConflictNone, body.Data[0].ConflictLevel)
}

func TestPostSuggestions_ReasonerSeesRecentEnergy(t *testing.T) {
	twoDaysAgo := time.Now().AddDate(0, 0, -2).Format("2006-01-02")
	rsn := &recordingReasoner{}
	r := setupRouterWithActions(t, rsn, fmt.Sprintf(`[
		{"id":"a1","user_id":"u1","title":"Morning walk","date":"%s","start_time":"09:00","status":"done","action_type":"exercise"}
	]`, twoDaysAgo))

	rec := doRequest(r, "POST", "/suggestions", "MOCK-TOKEN", `{"text":"write one page","duration_minutes":30,"lookahead_days":3}`)
	require.Equal(t, 200, rec.Code)

	require.NotNil(t, rsn.last)
	assert.Contains(t, rsn.last.EnergySummary, "1 completed")
}

func TestPostSuggestions_InvalidTask(t *testing.T) {
	r := setupRouter(t, fixedReasoner{})
	rec := doRequest(r, "POST", "/suggestions", "MOCK-TOKEN", `{"text":"","duration_minutes":30}`)
	assert.Equal(t, 400, rec.Code)
}

func TestPostSuggestions_UsesReasonerCandidates(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	r := setupRouter(t, fixedReasoner{candidates: []reasoner.Candidate{
		{Date: tomorrow, Time: "15:00", Reason: "afternoon energy", Confidence: 82},
	}})

	rec := doRequest(r, "POST", "/suggestions", "MOCK-TOKEN", `{"text":"write one page","duration_minutes":30,"lookahead_days":3}`)
	require.Equal(t, 200, rec.Code)

	var body struct {
		Data []internal.SuggestionCandidate `json:"data"`
		Meta map[string]any                 `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, false, body.Meta["fallback"])
	assert.Equal(t, 82, body.Data[0].Confidence)
	assert.Equal(t, "afternoon energy", body.Data[0].Reason)
}
