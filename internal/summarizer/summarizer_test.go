package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/domain"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/metrics"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/retry"
)

type fakeStatusStore struct {
	mu      sync.Mutex
	updates []domain.Status
}

func (f *fakeStatusStore) UpdateStatus(_ context.Context, _, _ string, to domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, to)
	return nil
}

func (f *fakeStatusStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func TestClientProcess(t *testing.T) {
	var gotAuth string
	var gotBody processRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/process", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, ServiceKey: "svc-key"}, srv.Client())
	err := client.Process(context.Background(), "link-1", "body text")
	require.NoError(t, err)

	assert.Equal(t, "Bearer svc-key", gotAuth)
	assert.Equal(t, "link-1", gotBody.LinkID)
	assert.Equal(t, "body text", gotBody.PageContent)
}

func TestClientProcess_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"engine unavailable"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, ServiceKey: "svc-key"}, srv.Client())
	err := client.Process(context.Background(), "link-1", "body text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine unavailable")
}

func TestConfigConfigured(t *testing.T) {
	assert.False(t, Config{}.Configured())
	assert.False(t, Config{BaseURL: "http://x"}.Configured())
	assert.False(t, Config{ServiceKey: "k"}.Configured())
	assert.True(t, Config{BaseURL: "http://x", ServiceKey: "k"}.Configured())
}

func newTestDispatcher(t *testing.T, client *Client, store StatusStore, queueSize int) *Dispatcher {
	t.Helper()
	retryCfg := retry.Config{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1,
	}
	d := NewDispatcher(client, store, logger.NewNop(), metrics.NewNop(), DispatcherOptions{
		QueueSize:  queueSize,
		JobTimeout: 5 * time.Second,
		Retry:      &retryCfg,
	})
	return d
}

func TestDispatcher_SuccessfulJob(t *testing.T) {
	var calls int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	store := &fakeStatusStore{}
	d := newTestDispatcher(t, NewClient(Config{BaseURL: srv.URL, ServiceKey: "k"}, srv.Client()), store, 4)
	d.Start()

	require.True(t, d.Enqueue(Job{LinkID: "link-1", UserID: "user-1", PageContent: "text"}))
	d.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Zero(t, store.count(), "successful dispatch must not touch the record")
}

func TestDispatcher_FailedJobMarksRecordFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := &fakeStatusStore{}
	d := newTestDispatcher(t, NewClient(Config{BaseURL: srv.URL, ServiceKey: "k"}, srv.Client()), store, 4)
	d.Start()

	require.True(t, d.Enqueue(Job{LinkID: "link-1", UserID: "user-1", PageContent: "text"}))
	d.Stop()

	require.Equal(t, 1, store.count())
	assert.Equal(t, domain.StatusFailed, store.updates[0])
}

func TestDispatcher_FullQueueDropsAndFails(t *testing.T) {
	store := &fakeStatusStore{}
	// Worker never started, so the queue cannot drain.
	d := newTestDispatcher(t, NewClient(Config{BaseURL: "http://127.0.0.1:0", ServiceKey: "k"}, nil), store, 1)

	require.True(t, d.Enqueue(Job{LinkID: "link-1", UserID: "user-1"}))
	require.False(t, d.Enqueue(Job{LinkID: "link-2", UserID: "user-1"}))

	require.Equal(t, 1, store.count())
	assert.Equal(t, domain.StatusFailed, store.updates[0])
}
