package eventstore

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/oklog/ulid/v2"
	"github.com/quhixcal/quhixcal/internal/utils"
	"github.com/quhixcal/quhixcal/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientImpl_ListEvents(t *testing.T) {
	t.Run("should decode events and send a request id", func(t *testing.T) {
		// given
		var requestId string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestId = r.Header.Get(RequestIdHeader)
			assert.Equal(t, "/events", r.URL.Path)
			assert.Empty(t, r.URL.RawQuery)
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `[
				{"id":"1","title":"Standup","date":"2024-06-03","recurrence":"daily"},
				{"id":"2","title":"Dentist","date":"2024-06-05","recurrence":null}
			]`)
		}))
		defer server.Close()
		client := NewClient(server.URL+"/", time.Second)

		// when
		events, err := client.ListEvents(ctx, Range{})

		// then
		require.NoError(t, err)
		assert.Equal(t, []event.Event{
			{ID: "1", Title: "Standup", Date: "2024-06-03", Recurrence: event.RecurrenceDaily},
			{ID: "2", Title: "Dentist", Date: "2024-06-05", Recurrence: event.RecurrenceNone},
		}, events)
		_, err = ulid.ParseStrict(requestId)
		assert.NoError(t, err)
	})

	t.Run("should ask for a range", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2024-06-01", r.URL.Query().Get("from"))
			assert.Equal(t, "2024-06-30", r.URL.Query().Get("to"))
			_, _ = io.WriteString(w, `[]`)
		}))
		defer server.Close()
		client := NewClient(server.URL, time.Second)

		_, err := client.ListEvents(ctx, MonthRange(2024, time.June))

		require.NoError(t, err)
	})

	t.Run("should return an empty collection as success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `[]`)
		}))
		defer server.Close()
		client := NewClient(server.URL, time.Second)

		events, err := client.ListEvents(ctx, Range{})

		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})

	t.Run("should turn a non 2xx answer into a StatusError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		}))
		defer server.Close()
		client := NewClient(server.URL, time.Second)

		_, err := client.ListEvents(ctx, Range{})

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
		assert.Equal(t, "database unavailable", statusErr.Body)
	})

	t.Run("should fail on an undecodable body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `<html>maintenance</html>`)
		}))
		defer server.Close()
		client := NewClient(server.URL, time.Second)

		_, err := client.ListEvents(ctx, Range{})

		require.Error(t, err)
		var statusErr *StatusError
		assert.False(t, errors.As(err, &statusErr))
	})

	t.Run("should fail on a null body instead of reporting no events", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `null`)
		}))
		defer server.Close()
		client := NewClient(server.URL, time.Second)

		events, err := client.ListEvents(ctx, Range{})

		assert.Error(t, err)
		assert.Nil(t, events)
	})

	t.Run("should report an empty array as no events", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `[]`)
		}))
		defer server.Close()
		client := NewClient(server.URL, time.Second)

		events, err := client.ListEvents(ctx, Range{})

		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})

	t.Run("should fail when the service is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()
		client := NewClient(url, time.Second)

		_, err := client.ListEvents(ctx, Range{})

		assert.Error(t, err)
		assert.Equal(t, "Could not load events (the server is unreachable). Your calendar shows the last known state.",
			UserMessage(&FetchError{Err: err}))
	})
}

func TestClientImpl_CreateEvent(t *testing.T) {
	t.Run("should post the event with a null recurrence and ignore the answer", func(t *testing.T) {
		// given
		var body map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NotEmpty(t, r.Header.Get(RequestIdHeader))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `not even json`)
		}))
		defer server.Close()
		client := NewClient(server.URL, time.Second)

		// when
		err := client.CreateEvent(ctx, event.Event{ID: "ignored", Title: "Dentist", Date: "2024-06-05", Recurrence: event.RecurrenceNone})

		// then
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"title": "Dentist", "date": "2024-06-05", "recurrence": nil}, body)
	})

	t.Run("should send the recurrence label", func(t *testing.T) {
		var dto event.EventDTO
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&dto))
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()
		client := NewClient(server.URL, time.Second)

		err := client.CreateEvent(ctx, event.Event{Title: "Standup", Date: "2024-06-03", Recurrence: event.RecurrenceWeekly})

		require.NoError(t, err)
		require.NotNil(t, dto.Recurrence)
		assert.Equal(t, "weekly", *dto.Recurrence)
	})

	t.Run("should return a StatusError for a rejected event", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"Invalid event","details":"title is required"}`)
		}))
		defer server.Close()
		client := NewClient(server.URL, time.Second)

		err := client.CreateEvent(ctx, event.Event{Title: "Standup", Date: "2024-06-03"})

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
		assert.Contains(t, statusErr.Body, "title is required")
	})
}

// The store against the real event handlers, end to end over HTTP.
func TestStore_WithEventService(t *testing.T) {
	// given
	repo := &event.StubEventRepository{}
	service := event.NewEventService(repo, utils.SystemClock{}, 0)
	handler := event.NewEventHandler(service)
	r := mux.NewRouter()
	r.HandleFunc("/events", handler.GetEvents).Methods("GET")
	r.HandleFunc("/events", handler.CreateEvent).Methods("POST")
	server := httptest.NewServer(r)
	defer server.Close()
	store := NewStore(NewClient(server.URL, time.Second), nil)

	t.Run("should start with an empty calendar", func(t *testing.T) {
		require.NoError(t, store.LoadAll(ctx))
		assert.Empty(t, store.Events())
	})

	t.Run("should show a created event after the reload", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, event.Event{Title: "Standup", Date: "2024-06-03", Recurrence: event.RecurrenceDaily}))
		require.NoError(t, store.Create(ctx, event.Event{Title: "Dentist", Date: "2024-06-01"}))

		events := store.Events()
		require.Len(t, events, 2)
		assert.Equal(t, "Dentist", events[0].Title)
		assert.Equal(t, event.RecurrenceNone, events[0].Recurrence)
		assert.Equal(t, "Standup", events[1].Title)
		assert.NotEmpty(t, events[1].ID)
	})

	t.Run("should load expanded occurrences for a range", func(t *testing.T) {
		store.SetRange(Range{From: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)})
		defer store.SetRange(Range{})

		require.NoError(t, store.LoadAll(ctx))

		assert.Len(t, store.Events(), 4)
	})

	t.Run("should surface a title the service finds too long as a create error", func(t *testing.T) {
		long := make([]byte, event.MaxTitleLength+1)
		for i := range long {
			long[i] = 'x'
		}

		err := store.Create(ctx, event.Event{Title: string(long), Date: "2024-06-03"})

		var createErr *CreateError
		require.ErrorAs(t, err, &createErr)
		assert.Len(t, store.Events(), 2)
	})
}
