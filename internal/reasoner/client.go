// Package reasoner wraps the external natural-language reasoning service
// that proposes candidate time slots. Its output is untrusted: callers
// re-validate dates, confidence bounds and conflicts locally.
package reasoner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
)

// Candidate is one raw slot proposal as returned by the service.
type Candidate struct {
	Date       string `json:"date"` // YYYY-MM-DD
	Time       string `json:"time"` // HH:MM
	Reason     string `json:"reason"`
	Confidence int    `json:"confidence"`
}

// Request carries everything the service needs to propose slots.
type Request struct {
	TaskText        string
	DurationMinutes int
	LookaheadDays   int
	CalendarSummary string
	EnergySummary   string
	ProfileContext  string
}

type Client interface {
	SuggestSlots(ctx context.Context, req *Request) ([]Candidate, error)
}

type HTTPClient struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
	logger     internal.Logger
}

func NewHTTPClient(url, apiKey string, timeout time.Duration, logger internal.Logger) *HTTPClient {
	return &HTTPClient{
		URL:        url,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *HTTPClient) SuggestSlots(ctx context.Context, req *Request) ([]Candidate, error) {
	body := map[string]interface{}{
		"instructions": slotInstructions,
		"input":        buildPrompt(req),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.URL, bytes.NewBuffer(payload))
	if err != nil {
		c.logger.Errorf("reasoner: failed to create request: %v", err)
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		c.logger.Warnf("reasoner: call failed: %v", err)
		return nil, fmt.Errorf("%w: %v", internal.ErrReasonerUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Warnf("reasoner: service returned %d", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", internal.ErrReasonerUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internal.ErrReasonerUnavailable, err)
	}
	return ParseCandidates(raw), nil
}

// ParseCandidates extracts the candidate array from a raw response body.
// Malformed entries are discarded, not corrected; a body with no parseable
// array yields an empty slice. The caller decides whether to fall back.
func ParseCandidates(raw []byte) []Candidate {
	arr := extractArray(raw)
	if arr == nil {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(arr, &entries); err != nil {
		return nil
	}

	var candidates []Candidate
	for _, entry := range entries {
		var c Candidate
		if err := json.Unmarshal(entry, &c); err != nil {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// extractArray finds the first top-level JSON array in the body. The service
// sometimes wraps its answer in prose or in an {"output": "..."} envelope.
func extractArray(raw []byte) []byte {
	// Unwrap {"output": "..."} envelopes first.
	var envelope struct {
		Output string `json:"output"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Output != "" {
		raw = []byte(envelope.Output)
	}

	start := bytes.IndexByte(raw, '[')
	end := bytes.LastIndexByte(raw, ']')
	if start < 0 || end <= start {
		return nil
	}
	return raw[start : end+1]
}

var errNoURL = errors.New("reasoner: no service URL configured")

// Disabled is a Client with no backing service. Every call reports the
// service unavailable so the caller takes the deterministic fallback.
type Disabled struct{}

func (Disabled) SuggestSlots(ctx context.Context, req *Request) ([]Candidate, error) {
	return nil, fmt.Errorf("%w: %v", internal.ErrReasonerUnavailable, errNoURL)
}
