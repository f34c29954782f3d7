package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAPI(t *testing.T) {
	start := time.Date(2026, 5, 4, 15, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	ev := toAPI(Event{
		Summary:   "AI interview",
		Start:     start,
		End:       start.Add(45 * time.Minute),
		Attendees: []string{"cand@example.com", "", "hm@acme.test"},
	})

	assert.Equal(t, "AI interview", ev.Summary)
	assert.Equal(t, "2026-05-04T10:00:00Z", ev.Start.DateTime)
	assert.Equal(t, "2026-05-04T10:45:00Z", ev.End.DateTime)
	assert.Equal(t, "UTC", ev.Start.TimeZone)
	require.Len(t, ev.Attendees, 2)
	assert.Equal(t, "hm@acme.test", ev.Attendees[1].Email)
}

func TestClientEventCalls(t *testing.T) {
	type call struct {
		method, path, sendUpdates string
		summary                   string
	}
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Summary string `json:"summary"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{r.Method, r.URL.Path, r.URL.Query().Get("sendUpdates"), body.Summary})

		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`{"id": "evt-1"}`))
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c, err := NewClient(ctx, Config{Endpoint: srv.URL + "/", SendUpdates: "none"})
	require.NoError(t, err)

	start := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	id, err := c.CreateEvent(ctx, Event{Summary: "Interview", Start: start, End: start.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "evt-1", id)

	require.NoError(t, c.UpdateEvent(ctx, id, Event{Summary: "Moved", Start: start.Add(time.Hour), End: start.Add(2 * time.Hour)}))
	require.NoError(t, c.DeleteEvent(ctx, id))

	require.Len(t, calls, 3)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.True(t, strings.HasSuffix(calls[0].path, "/calendars/primary/events"))
	assert.Equal(t, http.MethodPatch, calls[1].method)
	assert.Equal(t, "Moved", calls[1].summary)
	assert.True(t, strings.HasSuffix(calls[2].path, "/calendars/primary/events/evt-1"))
	for _, c := range calls {
		assert.Equal(t, "none", c.sendUpdates)
	}
}

func TestClientWrapsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 404}}`, http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{Endpoint: srv.URL + "/"})
	require.NoError(t, err)

	err = c.DeleteEvent(context.Background(), "gone")
	assert.ErrorContains(t, err, "calendar: delete event gone")
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.Error(t, err)
}
