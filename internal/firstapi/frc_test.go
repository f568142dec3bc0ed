package firstapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var frcFixtures = []FRCEvent{
	{Code: "CASD", Name: "San Diego Regional", Type: "Regional", DateStart: "2026-03-12T00:00:00", DateEnd: "2026-03-15T00:00:00", Address: "San Diego, CA"},
	{Code: "NYRO", Name: "Finger Lakes Regional", Type: "Regional", DateStart: "2026-03-19T00:00:00", DateEnd: "2026-03-22T00:00:00", Address: "Rochester, NY"},
	{Code: "MIKET", Name: "Kettering District", Type: "DistrictEvent", DistrictCode: "FIM", DateStart: "2026-03-05T00:00:00", DateEnd: "2026-03-07T00:00:00", Address: "Flint, MI"},
}

func TestFilterFRCEvents(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{
			name:     "no filter keeps everything",
			filter:   Filter{},
			expected: []string{"CASD", "NYRO", "MIKET"},
		},
		{
			name:     "search is case-insensitive substring",
			filter:   Filter{Search: "regional"},
			expected: []string{"CASD", "NYRO"},
		},
		{
			name:     "search matches address",
			filter:   Filter{Search: "flint"},
			expected: []string{"MIKET"},
		},
		{
			name:     "event type is an exact match",
			filter:   Filter{EventType: "DistrictEvent"},
			expected: []string{"MIKET"},
		},
		{
			name:     "district code is an exact match",
			filter:   Filter{District: "FIM"},
			expected: []string{"MIKET"},
		},
		{
			name:     "start date bound is inclusive",
			filter:   Filter{StartDate: "2026-03-12T00:00:00"},
			expected: []string{"CASD", "NYRO"},
		},
		{
			name:     "end date bound is inclusive",
			filter:   Filter{EndDate: "2026-03-15T00:00:00"},
			expected: []string{"CASD", "MIKET"},
		},
		{
			name:     "filters compose",
			filter:   Filter{Search: "regional", StartDate: "2026-03-15T00:00:00"},
			expected: []string{"NYRO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterFRCEvents(frcFixtures, tt.filter)
			codes := make([]string, 0, len(got))
			for _, ev := range got {
				codes = append(codes, ev.Code)
			}
			assert.Equal(t, tt.expected, codes)
		})
	}
}

func TestFRCClient_Events(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3.0/2026/events", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"Events": frcFixtures})
	}))
	defer srv.Close()

	client := NewFRCClientWithBaseURL(srv.URL, "user", "token")
	events, err := client.Events(context.Background(), Filter{Season: 2026})

	assert.NoError(t, err)
	// Sorted ascending by start date.
	assert.Equal(t, []string{"MIKET", "CASD", "NYRO"}, []string{events[0].Code, events[1].Code, events[2].Code})
}

func TestFRCClient_EventsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewFRCClientWithBaseURL(srv.URL, "user", "token")
	_, err := client.Events(context.Background(), Filter{Season: 2026})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFRCClient_SeasonEventsNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"Events": frcFixtures[:1]})
	}))
	defer srv.Close()

	client := NewFRCClientWithBaseURL(srv.URL, "user", "token")
	comps, err := client.SeasonEvents(context.Background(), 2026)

	assert.NoError(t, err)
	assert.Len(t, comps, 1)
	assert.Equal(t, "CASD", comps[0].Code)
	assert.NotNil(t, comps[0].DateStart)
	assert.Equal(t, 2026, comps[0].DateStart.Year())
}
