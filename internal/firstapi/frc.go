package firstapi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/robostack/teamhub/internal/model"
)

const defaultFRCBaseURL = "https://frc-api.firstinspires.org"

// FRCEvent mirrors the FRC v3.0 API event record.
type FRCEvent struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	DistrictCode string `json:"districtCode,omitempty"`
	DateStart    string `json:"dateStart"`
	DateEnd      string `json:"dateEnd"`
	Address      string `json:"address,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
	Website      string `json:"website,omitempty"`
}

type FRCClient struct {
	client
}

func NewFRCClient(username, token string) *FRCClient {
	return &FRCClient{client: newClient(defaultFRCBaseURL, username, token)}
}

// NewFRCClientWithBaseURL is used by tests to point the client at a stub.
func NewFRCClientWithBaseURL(baseURL, username, token string) *FRCClient {
	return &FRCClient{client: newClient(baseURL, username, token)}
}

// Events fetches the season's event list and applies the filter chain:
// case-insensitive substring search, exact type and district matches, and
// inclusive date-range bounds. Results are sorted ascending by start date.
func (c *FRCClient) Events(ctx context.Context, f Filter) ([]FRCEvent, error) {
	season := seasonOrCurrent(f.Season)

	var payload struct {
		Events []FRCEvent `json:"Events"`
	}
	url := fmt.Sprintf("%s/v3.0/%d/events", c.baseURL, season)
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	events := FilterFRCEvents(payload.Events, f)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].DateStart < events[j].DateStart
	})

	return events, nil
}

// FilterFRCEvents applies the in-memory filter chain to an event list.
func FilterFRCEvents(events []FRCEvent, f Filter) []FRCEvent {
	filtered := make([]FRCEvent, 0, len(events))
	search := strings.ToLower(f.Search)

	for _, ev := range events {
		if search != "" && !frcMatchesSearch(ev, search) {
			continue
		}
		if f.EventType != "" && ev.Type != f.EventType {
			continue
		}
		if f.District != "" && ev.DistrictCode != f.District {
			continue
		}
		if f.StartDate != "" && ev.DateStart < f.StartDate {
			continue
		}
		if f.EndDate != "" && ev.DateEnd > f.EndDate {
			continue
		}
		filtered = append(filtered, ev)
	}

	return filtered
}

func frcMatchesSearch(ev FRCEvent, search string) bool {
	return strings.Contains(strings.ToLower(ev.Name), search) ||
		strings.Contains(strings.ToLower(ev.Address), search) ||
		strings.Contains(strings.ToLower(ev.Code), search) ||
		strings.Contains(strings.ToLower(ev.DistrictCode), search)
}

// SeasonEvents implements CompetitionSource for the calendar aggregation.
func (c *FRCClient) SeasonEvents(ctx context.Context, season int) ([]model.CompetitionEvent, error) {
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
			DistrictCode: ev.DistrictCode,
			Address:      ev.Address,
			Website:      ev.Website,
			DateStart:    parseAPIDate(ev.DateStart),
			DateEnd:      parseAPIDate(ev.DateEnd),
		})
	}
	return normalized, nil
}
