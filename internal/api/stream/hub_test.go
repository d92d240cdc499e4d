package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/testutil"
)

var registry = model.ContractAddress{Index: 0}

func battleEvent(seq int) model.Event {
	return model.Event{
		TxID:      "tx-1",
		Contract:  registry,
		Seq:       seq,
		Type:      model.EventBattleResult,
		Payload:   json.RawMessage(`{"player":"alice","isWin":true}`),
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		eventName string
		data      string
		expected  string
	}{
		{"single line", "tx:0", "BattleResult", `{"a":1}`, "id: tx:0\nevent: BattleResult\ndata: {\"a\":1}\n\n"},
		{"no id", "", "connected", "ok", "event: connected\ndata: ok\n\n"},
		{"multi line", "", "e", "one\ntwo", "event: e\ndata: one\ndata: two\n\n"},
		{"crlf", "", "e", "one\r\ntwo\r\n", "event: e\ndata: one\ndata: two\n\n"},
		{"empty", "", "ping", "", "event: ping\ndata: \n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatMessage(tt.id, tt.eventName, tt.data)))
		})
	}
}

func TestFormatEvent(t *testing.T) {
	msg, err := FormatEvent(battleEvent(3))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(msg), "\n\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id: tx-1:3", lines[0])
	assert.Equal(t, "event: BattleResult", lines[1])

	var decoded model.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[2], "data: ")), &decoded))
	assert.Equal(t, battleEvent(3).Payload, decoded.Payload)
	assert.Equal(t, 3, decoded.Seq)
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	hub := NewHub(registry, testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	c1, c2 := NewClient("c1"), NewClient("c2")
	hub.Register(c1)
	hub.Register(c2)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.BroadcastEvent(battleEvent(0)))
	want, err := FormatEvent(battleEvent(0))
	require.NoError(t, err)

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			assert.Equal(t, string(want), string(msg))
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive the event", c.id)
		}
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub(registry, testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	c := NewClient("c1")
	hub.Register(c)
	hub.Unregister(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.send
	assert.False(t, open)
}

func TestRegisterAfterCloseDoesNotBlock(t *testing.T) {
	hub := NewHub(registry, testutil.NopLogger())
	go hub.Run()
	hub.Close()

	c := NewClient("late")
	done := make(chan struct{})
	go func() {
		hub.Register(c)
		hub.Unregister(c)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("register blocked on a closed hub")
	}
}

func TestManagerPublishRoutesByContract(t *testing.T) {
	m := NewHubManager(testutil.NopLogger())
	defer m.Close()

	hub := m.GetOrCreateHub(registry)
	assert.Same(t, hub, m.GetOrCreateHub(registry))
	assert.Nil(t, m.GetHub(model.ContractAddress{Index: 9}))

	c := NewClient("c1")
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	other := battleEvent(0)
	other.Contract = model.ContractAddress{Index: 9}
	m.Publish([]model.Event{other, battleEvent(1)})

	select {
	case msg := <-c.send:
		assert.Contains(t, string(msg), "id: tx-1:1\n")
	case <-time.After(time.Second):
		t.Fatal("event was not published")
	}
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message %q", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestManagerCleanupEmptyHubs(t *testing.T) {
	m := NewHubManager(testutil.NopLogger())
	defer m.Close()

	empty := model.ContractAddress{Index: 1}
	m.GetOrCreateHub(empty)
	active := m.GetOrCreateHub(registry)
	active.Register(NewClient("c1"))
	require.Eventually(t, func() bool { return active.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	m.CleanupEmptyHubs()
	assert.Nil(t, m.GetHub(empty))
	assert.NotNil(t, m.GetHub(registry))
}

func TestServeWritesBacklogThenLiveEvents(t *testing.T) {
	m := NewHubManager(testutil.NopLogger())
	defer m.Close()
	hub := m.GetOrCreateHub(registry)

	backlog, err := FormatEvent(battleEvent(0))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Serve(w, r, hub, "test", [][]byte{backlog})
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	m.Publish([]model.Event{battleEvent(1)})

	var got strings.Builder
	buf := make([]byte, 4096)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !strings.Contains(got.String(), "id: tx-1:1\n") {
		n, err := resp.Body.Read(buf)
		got.Write(buf[:n])
		if err != nil {
			break
		}
	}

	out := got.String()
	connected := strings.Index(out, "event: connected")
	first := strings.Index(out, "id: tx-1:0\n")
	second := strings.Index(out, "id: tx-1:1\n")
	require.True(t, connected >= 0 && first > connected && second > first, "unexpected stream %q", out)
}
