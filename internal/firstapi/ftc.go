package firstapi

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/robostack/teamhub/internal/model"
)

const defaultFTCBaseURL = "http://ftc-api.firstinspires.org"

// FTCEvent mirrors the FTC v2.0 API event record. Dates may be absent for
// some events, which is why sorting falls back to the event code.
type FTCEvent struct {
	EventID      string `json:"eventId"`
	Code         string `json:"code"`
	DivisionCode string `json:"divisionCode,omitempty"`
	Name         string `json:"name"`
	Remote       bool   `json:"remote,omitempty"`
	Hybrid       bool   `json:"hybrid,omitempty"`
	Type         string `json:"type"`
	TypeName     string `json:"typeName,omitempty"`
	RegionCode   string `json:"regionCode,omitempty"`
	LeagueCode   string `json:"leagueCode,omitempty"`
	DistrictCode string `json:"districtCode,omitempty"`
	Venue        string `json:"venue,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	StateProv    string `json:"stateprov,omitempty"`
	Country      string `json:"country,omitempty"`
	Website      string `json:"website,omitempty"`
	DateStart    string `json:"dateStart,omitempty"`
	DateEnd      string `json:"dateEnd,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
}

type FTCClient struct {
	client
}

func NewFTCClient(username, token string) *FTCClient {
	return &FTCClient{client: newClient(defaultFTCBaseURL, username, token)}
}

// NewFTCClientWithBaseURL is used by tests to point the client at a stub.
func NewFTCClientWithBaseURL(baseURL, username, token string) *FTCClient {
	return &FTCClient{client: newClient(baseURL, username, token)}
}

// Events fetches the season's FTC event list and applies the filter chain.
// Sorted ascending by start date, falling back to event code when dates are
// absent.
func (c *FTCClient) Events(ctx context.Context, f Filter) ([]FTCEvent, error) {
	season := seasonOrCurrent(f.Season)

	apiURL := fmt.Sprintf("%s/v2.0/%d/events", c.baseURL, season)
	if f.TeamNumber > 0 {
		query := url.Values{}
		query.Set("teamNumber", strconv.Itoa(f.TeamNumber))
		apiURL += "?" + query.Encode()
	}

	var payload struct {
		Events []FTCEvent `json:"events"`
	}
	if err := c.getJSON(ctx, apiURL, &payload); err != nil {
		return nil, err
	}

	events := FilterFTCEvents(payload.Events, f)

	sort.SliceStable(events, func(i, j int) bool {
		return ftcSortKey(events[i]) < ftcSortKey(events[j])
	})

	return events, nil
}

func ftcSortKey(ev FTCEvent) string {
	if ev.DateStart != "" {
		return ev.DateStart
	}
	return ev.Code
}

// FilterFTCEvents applies the in-memory filter chain to an event list.
func FilterFTCEvents(events []FTCEvent, f Filter) []FTCEvent {
	filtered := make([]FTCEvent, 0, len(events))
	search := strings.ToLower(f.Search)

	for _, ev := range events {
		if search != "" && !ftcMatchesSearch(ev, search) {
			continue
		}
		if f.EventType != "" && ev.Type != f.EventType && ev.TypeName != f.EventType {
			continue
		}
		if f.Region != "" && ev.RegionCode != f.Region {
			continue
		}
		if f.StartDate != "" && ev.DateStart != "" && ev.DateStart < f.StartDate {
			continue
		}
		if f.EndDate != "" && ev.DateEnd != "" && ev.DateEnd > f.EndDate {
			continue
		}
		filtered = append(filtered, ev)
	}

	return filtered
}

func ftcMatchesSearch(ev FTCEvent, search string) bool {
	return strings.Contains(strings.ToLower(ev.Name), search) ||
		strings.Contains(strings.ToLower(ev.Address), search) ||
		strings.Contains(strings.ToLower(ev.Code), search) ||
		strings.Contains(strings.ToLower(ev.RegionCode), search) ||
		strings.Contains(strings.ToLower(ev.City), search) ||
		strings.Contains(strings.ToLower(ev.Venue), search)
}

// SeasonEvents implements CompetitionSource for the calendar aggregation.
func (c *FTCClient) SeasonEvents(ctx context.Context, season int) ([]model.CompetitionEvent, error) {
	events, err := c.Events(ctx, Filter{Season: season})
	if err != nil {
		return nil, err
	}

	normalized := make([]model.CompetitionEvent, 0, len(events))
	for _, ev := range events {
		normalized = append(normalized, model.CompetitionEvent{
			Code:         ev.Code,
			Name:         ev.Name,
			Type:         ev.Type,
			DistrictCode: ev.RegionCode,
			Address:      ev.Address,
			Website:      ev.Website,
			DateStart:    parseAPIDate(ev.DateStart),
			DateEnd:      parseAPIDate(ev.DateEnd),
		})
	}
	return normalized, nil
}
