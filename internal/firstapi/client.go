// Package firstapi fetches competition schedules from the FIRST Inspires
// event APIs (FRC v3.0 and FTC v2.0) and applies in-memory filtering over
// the returned season lists.
package firstapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/robostack/teamhub/internal/model"
)

// Filter is the optional filter payload accepted by both integrations. All
// fields are optional; zero values mean "no filter". Dates are ISO dates
// compared as inclusive bounds.
type Filter struct {
	Season     int    `json:"season,omitempty"`
	Search     string `json:"search,omitempty"`
	EventType  string `json:"eventType,omitempty"`
	District   string `json:"district,omitempty"`
	Region     string `json:"region,omitempty"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	TeamNumber int    `json:"teamNumber,omitempty"`
}

// CompetitionSource is the read-only schedule feed consumed by the calendar
// aggregation. Implementations are best-effort: callers treat an error as a
// warning, never as fatal.
type CompetitionSource interface {
	SeasonEvents(ctx context.Context, season int) ([]model.CompetitionEvent, error)
}

type client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	token      string
}

func newClient(baseURL, username, token string) client {
	return client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		username:   username,
		token:      token,
	}
}

func (c client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(c.username + ":" + c.token))
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("If-Modified-Since", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("FIRST API request failed: %d %s: %s", resp.StatusCode, resp.Status, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// seasonOrCurrent defaults the season to the current year when unset.
func seasonOrCurrent(season int) int {
	if season > 0 {
		return season
	}
	return time.Now().Year()
}

// parseAPIDate handles the date shapes the upstream APIs emit; returns nil
// when the value is absent or unparseable.
func parseAPIDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
