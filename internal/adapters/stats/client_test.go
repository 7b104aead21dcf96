package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssuer struct {
	subject string
	roles   []string
}

func (f *fakeIssuer) Issue(subject string, roles []string, _ time.Duration) (string, error) {
	f.subject = subject
	f.roles = roles
	return "service-token", nil
}

func TestClient_CountViews(t *testing.T) {
	var gotQuery map[string][]string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stats", r.URL.Path)
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []domain.ViewStats{
				{App: "main", URI: "/events/1", Hits: 30},
				{App: "main", URI: "/events/3", Hits: 12},
				{App: "main", URI: "/events", Hits: 99},
				{App: "main", URI: "/events/not-a-number", Hits: 1},
			},
			"error": nil,
		})
	}))
	defer srv.Close()

	issuer := &fakeIssuer{}
	c, err := NewClient(srv.Client(), []string{srv.URL + "/"}, "main", issuer)
	require.NoError(t, err)

	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := c.CountViews(context.Background(), []int64{1, 2, 3}, start, end, true)
	require.NoError(t, err)

	assert.Equal(t, map[int64]int64{1: 30, 3: 12}, got)
	assert.Equal(t, []string{"/events/1", "/events/2", "/events/3"}, gotQuery["uris"])
	assert.Equal(t, []string{"2000-01-01 00:00:00"}, gotQuery["start"])
	assert.Equal(t, []string{"2100-01-01 00:00:00"}, gotQuery["end"])
	assert.Equal(t, []string{"true"}, gotQuery["unique"])
	assert.Equal(t, "Bearer service-token", gotAuth)
	assert.Equal(t, []string{domain.RoleService}, issuer.roles)
}

func TestClient_CountViewsNoIDs(t *testing.T) {
	c, err := NewClient(nil, []string{"http://127.0.0.1:0"}, "main", nil)
	require.NoError(t, err)
	got, err := c.CountViews(context.Background(), nil, time.Now(), time.Now(), true)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_CountViewsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(srv.Client(), []string{srv.URL}, "main", nil)
	require.NoError(t, err)
	_, err = c.CountViews(context.Background(), []int64{1}, time.Now(), time.Now(), true)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "502"))
}

func TestClient_RecordHit(t *testing.T) {
	var got domain.Hit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/hit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := NewClient(srv.Client(), []string{srv.URL}, "ewm-main-service", nil)
	require.NoError(t, err)

	at := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, c.RecordHit(context.Background(), &domain.Hit{URI: EventURI(7), IP: "10.0.0.1", Timestamp: at}))
	assert.Equal(t, "ewm-main-service", got.App)
	assert.Equal(t, "/events/7", got.URI)
	assert.Equal(t, "10.0.0.1", got.IP)
	assert.True(t, at.Equal(got.Timestamp))
}

func TestClient_CanceledContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	c, err := NewClient(srv.Client(), []string{srv.URL}, "main", nil)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.CountViews(ctx, []int64{1}, time.Now(), time.Now(), true)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(nil, nil, "main", nil)
	require.Error(t, err)
}
