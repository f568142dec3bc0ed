package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestHub_BroadcastDeliversToTeam(t *testing.T) {
	h := NewHub(zap.NewNop())

	c := &Client{hub: h, send: make(chan []byte, 1), teamID: "team1", userID: "u1"}
	other := &Client{hub: h, send: make(chan []byte, 1), teamID: "team2", userID: "u2"}
	h.add(c)
	h.add(other)

	h.broadcast(Change{Entity: "event", TeamID: "team1", Action: ActionCreated})

	assert.Len(t, c.send, 1)
	assert.Len(t, other.send, 0)
	assert.JSONEq(t, `{"entity":"event","team_id":"team1","action":"created"}`, string(<-c.send))
}

func TestHub_SlowConsumerDropReleasesTeam(t *testing.T) {
	h := NewHub(zap.NewNop())

	// No buffer and no reader: the fan-out cannot deliver.
	stuck := &Client{hub: h, send: make(chan []byte), teamID: "team1", userID: "u1"}
	h.add(stuck)

	h.broadcast(Change{Entity: "task", TeamID: "team1", Action: ActionUpdated})

	_, open := <-stuck.send
	assert.False(t, open)
	_, ok := h.teams["team1"]
	assert.False(t, ok)
}

func TestHub_UnregisterLastClientReleasesTeam(t *testing.T) {
	h := NewHub(zap.NewNop())

	c := &Client{hub: h, send: make(chan []byte, 1), teamID: "team1", userID: "u1"}
	h.add(c)
	h.remove(c)

	_, ok := h.teams["team1"]
	assert.False(t, ok)
}
