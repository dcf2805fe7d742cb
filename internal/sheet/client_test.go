package sheet_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/ladder/internal/fixture"
	"github.com/five82/ladder/internal/progress"
	"github.com/five82/ladder/internal/reconcile"
	"github.com/five82/ladder/internal/sheet"
)

func newFixtureClient(t *testing.T) (*fixture.Server, *sheet.Client) {
	t.Helper()
	seed, err := fixture.DefaultSeed()
	require.NoError(t, err)
	srv := fixture.NewServer(seed, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := sheet.NewClient(ts.URL)
	require.NoError(t, err)
	return srv, client
}

func TestNewClientNormalisesBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "http://" + sheet.DefaultAPIURL},
		{in: "localhost:9000", want: "http://localhost:9000"},
		{in: " https://sheet.example.com/some/path?x=1 ", want: "https://sheet.example.com"},
	}
	for _, tt := range tests {
		c, err := sheet.NewClient(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, c.BaseURL(), tt.in)
	}
}

func TestClientAgainstFixture(t *testing.T) {
	ctx := context.Background()
	srv, client := newFixtureClient(t)

	topics, err := client.FetchAllTopics(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 3)

	topic, err := client.FetchTopic(ctx, "linked-lists")
	require.NoError(t, err)
	assert.Equal(t, "Linked Lists", topic.Title)

	records, err := client.FetchProgress(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.NoError(t, client.PostProgress(ctx, "three-sum", true))
	assert.Len(t, srv.Progress(), 3)

	st, err := client.FetchProgressStats(ctx)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 3, st.Completed)
	assert.Equal(t, 8, st.Total)
}

func TestFetchTopicNotFound(t *testing.T) {
	_, client := newFixtureClient(t)

	_, err := client.FetchTopic(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sheet.ErrNotFound))
	assert.True(t, errors.Is(err, sheet.ErrServer))

	var statusErr *sheet.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Message, "missing")
}

func TestPostProgressInjectedFailure(t *testing.T) {
	srv, client := newFixtureClient(t)
	srv.FailNext(1)

	err := client.PostProgress(context.Background(), "two-sum", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sheet.ErrServer))
	assert.False(t, errors.Is(err, sheet.ErrNotFound))
}

func TestPostProgressRequiresID(t *testing.T) {
	_, client := newFixtureClient(t)
	assert.Error(t, client.PostProgress(context.Background(), " ", true))
}

func TestFetchProgressStatsMissingEndpoint(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(ts.Close)

	client, err := sheet.NewClient(ts.URL)
	require.NoError(t, err)

	st, err := client.FetchProgressStats(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestRequestHeadersAndBody(t *testing.T) {
	var got sheet.ProgressUpdate
	var headers http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	client, err := sheet.NewClient(ts.URL, sheet.WithUserAgent("ladder/test"))
	require.NoError(t, err)
	require.NoError(t, client.PostProgress(context.Background(), "p1", true))

	assert.Equal(t, sheet.ProgressUpdate{ProblemID: "p1", Completed: true}, got)
	assert.Equal(t, "application/json", headers.Get("Accept"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "ladder/test", headers.Get("User-Agent"))
}

func TestNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client, err := sheet.NewClient(url, sheet.WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = client.FetchAllTopics(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sheet.ErrNetwork))
	assert.False(t, errors.Is(err, sheet.ErrServer))
}

func TestDecodeErrorIsServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(ts.Close)

	client, err := sheet.NewClient(ts.URL)
	require.NoError(t, err)

	_, err = client.FetchProgress(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sheet.ErrServer))
	assert.True(t, strings.Contains(err.Error(), "decode response"))
}

func TestNonSuccessStatusesFail(t *testing.T) {
	for _, status := range []int{http.StatusAccepted, http.StatusMultipleChoices, http.StatusNotModified} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			t.Cleanup(ts.Close)

			client, err := sheet.NewClient(ts.URL)
			require.NoError(t, err)

			err = client.PostProgress(context.Background(), "two-sum", true)
			require.Error(t, err)
			assert.True(t, errors.Is(err, sheet.ErrServer))

			var statusErr *sheet.StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, status, statusErr.StatusCode)
		})
	}
}

func TestToggleRollsBackOnRedirectStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMultipleChoices)
	}))
	t.Cleanup(ts.Close)

	client, err := sheet.NewClient(ts.URL)
	require.NoError(t, err)

	store := &progress.Store{}
	ctrl, err := reconcile.New(store, client)
	require.NoError(t, err)

	notified := false
	ctrl.Subscribe(func(reconcile.Change) { notified = true })

	got, err := ctrl.Toggle(context.Background(), "two-sum")
	require.Error(t, err)
	assert.True(t, errors.Is(err, reconcile.ErrUpdateFailed))
	assert.True(t, errors.Is(err, sheet.ErrServer))
	assert.False(t, got)
	assert.False(t, store.IsCompleted("two-sum"))
	assert.Zero(t, store.Len())
	assert.False(t, notified)
}

func TestFetchTopicEscapesID(t *testing.T) {
	var rawPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		_ = json.NewEncoder(w).Encode(sheet.Topic{ID: "x"})
	}))
	t.Cleanup(ts.Close)

	client, err := sheet.NewClient(ts.URL)
	require.NoError(t, err)

	_, err = client.FetchTopic(context.Background(), "c++/stl?x")
	require.NoError(t, err)
	assert.Equal(t, "/api/topics/c++%2Fstl%3Fx", rawPath)
}

func TestFetchTopicWithSlashAgainstFixture(t *testing.T) {
	seed := fixture.Seed{Topics: []sheet.Topic{{ID: "c++/stl", Title: "STL"}}}
	ts := httptest.NewServer(fixture.NewServer(seed, nil).Handler())
	t.Cleanup(ts.Close)

	client, err := sheet.NewClient(ts.URL)
	require.NoError(t, err)

	topic, err := client.FetchTopic(context.Background(), "c++/stl")
	require.NoError(t, err)
	assert.Equal(t, "STL", topic.Title)
}
