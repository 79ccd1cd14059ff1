package livestore

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type sentEvent struct {
	Event string
	Data  json.RawMessage
}

// fakeConn records every outbound event as the JSON a client would see
type fakeConn struct {
	id   string
	fail bool

	mu     sync.Mutex
	events []sentEvent
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(event string, payload any) error {
	if c.fail {
		return errors.New("send buffer full")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, sentEvent{Event: event, Data: data})
	return nil
}

func (c *fakeConn) Events() []sentEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentEvent(nil), c.events...)
}

func (c *fakeConn) Named(event string) []sentEvent {
	var out []sentEvent
	for _, e := range c.Events() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (c *fakeConn) Names() []string {
	var names []string
	for _, e := range c.Events() {
		names = append(names, e.Event)
	}
	return names
}

func decodeEvent[T any](t *testing.T, e sentEvent) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(e.Data, &out))
	return out
}
