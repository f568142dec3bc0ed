package firstapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var ftcFixtures = []FTCEvent{
	{Code: "USCALA1", Name: "LA League Meet 1", Type: "1", TypeName: "League Meet", RegionCode: "USCA", DateStart: "2026-01-10T00:00:00", DateEnd: "2026-01-10T00:00:00", City: "Los Angeles"},
	{Code: "USNYCH1", Name: "NYC Championship", Type: "4", TypeName: "Championship", RegionCode: "USNY", DateStart: "2026-02-21T00:00:00", DateEnd: "2026-02-22T00:00:00", City: "New York"},
	{Code: "ZZTBD", Name: "Dateless Scrimmage", Type: "0", TypeName: "Scrimmage", RegionCode: "USCA"},
}

func TestFilterFTCEvents(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{
			name:     "no filter keeps everything",
			filter:   Filter{},
			expected: []string{"USCALA1", "USNYCH1", "ZZTBD"},
		},
		{
			name:     "event type matches code or display name",
			filter:   Filter{EventType: "Championship"},
			expected: []string{"USNYCH1"},
		},
		{
			name:     "region is an exact match",
			filter:   Filter{Region: "USCA"},
			expected: []string{"USCALA1", "ZZTBD"},
		},
		{
			name:     "search matches city",
			filter:   Filter{Search: "new york"},
			expected: []string{"USNYCH1"},
		},
		{
			name:     "date bounds skip events without dates",
			filter:   Filter{StartDate: "2026-02-01T00:00:00"},
			expected: []string{"USNYCH1", "ZZTBD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterFTCEvents(ftcFixtures, tt.filter)
			codes := make([]string, 0, len(got))
			for _, ev := range got {
				codes = append(codes, ev.Code)
			}
			assert.Equal(t, tt.expected, codes)
		})
	}
}

func TestFTCClient_Events(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2.0/2026/events", r.URL.Path)
		assert.Equal(t, "8044", r.URL.Query().Get("teamNumber"))
		_ = json.NewEncoder(w).Encode(map[string]any{"events": ftcFixtures})
	}))
	defer srv.Close()

	client := NewFTCClientWithBaseURL(srv.URL, "user", "token")
	events, err := client.Events(context.Background(), Filter{Season: 2026, TeamNumber: 8044})

	assert.NoError(t, err)
	// Dated events sort by start date; dateless ones fall back to code.
	assert.Equal(t, "USCALA1", events[0].Code)
	assert.Equal(t, "USNYCH1", events[1].Code)
	assert.Equal(t, "ZZTBD", events[2].Code)
}

func TestFTCClient_SeasonEventsNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"events": ftcFixtures})
	}))
	defer srv.Close()

	client := NewFTCClientWithBaseURL(srv.URL, "user", "token")
	comps, err := client.SeasonEvents(context.Background(), 2026)

	assert.NoError(t, err)
	assert.Len(t, comps, 3)
	assert.Equal(t, "USCA", comps[0].DistrictCode)
	assert.Nil(t, comps[2].DateStart)
}
