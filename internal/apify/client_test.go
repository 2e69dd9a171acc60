package apify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		Token:        "test-token",
		BaseURL:      server.URL,
		ActorID:      "actor-1",
		PollInterval: time.Millisecond,
		RunTimeout:   5 * time.Second,
	})
}

func TestRunActorPollsToSuccess(t *testing.T) {
	var polls int

	mux := http.NewServeMux()
	mux.HandleFunc("POST /acts/actor-1/runs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))

		var input RunInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, []string{"alice"}, input.Profiles)

		require.NoError(t, json.NewEncoder(w).Encode(runEnvelope{
			Data: Run{ID: "run-1", Status: "RUNNING"},
		}))
	})
	mux.HandleFunc("GET /actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		status := "RUNNING"
		if polls >= 3 {
			status = StatusSucceeded
		}
		require.NoError(t, json.NewEncoder(w).Encode(runEnvelope{
			Data: Run{ID: "run-1", Status: status, DefaultDatasetID: "ds-1"},
		}))
	})
	mux.HandleFunc("GET /datasets/ds-1/items", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([]Item{
			{ID: "item-1", WebVideoURL: "https://www.tiktok.com/@alice/video/1"},
		}))
	})

	client := newTestClient(t, mux)

	items, err := client.RunActor(context.Background(), RunInput{Profiles: []string{"alice"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "item-1", items[0].ID)
	assert.GreaterOrEqual(t, polls, 3)
}

func TestRunActorFailedRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /acts/actor-1/runs", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(runEnvelope{
			Data: Run{ID: "run-1", Status: "RUNNING"},
		}))
	})
	mux.HandleFunc("GET /actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(runEnvelope{
			Data: Run{ID: "run-1", Status: StatusFailed},
		}))
	})

	client := newTestClient(t, mux)

	_, err := client.RunActor(context.Background(), RunInput{Hashtags: []string{"dance"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), StatusFailed)
}

func TestRunActorTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /acts/actor-1/runs", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(runEnvelope{
			Data: Run{ID: "run-1", Status: "RUNNING"},
		}))
	})
	mux.HandleFunc("GET /actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(runEnvelope{
			Data: Run{ID: "run-1", Status: "RUNNING"},
		}))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		Token:        "test-token",
		BaseURL:      server.URL,
		ActorID:      "actor-1",
		PollInterval: time.Millisecond,
		RunTimeout:   50 * time.Millisecond,
	})

	_, err := client.RunActor(context.Background(), RunInput{Profiles: []string{"alice"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunActorStartFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"user-not-authenticated"}}`, http.StatusUnauthorized)
	}))

	_, err := client.RunActor(context.Background(), RunInput{Profiles: []string{"alice"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
