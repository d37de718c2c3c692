package carbon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/carbon-intensity/latest", r.URL.Path)
		assert.Equal(t, "IT", r.URL.Query().Get("zone"))
		assert.Equal(t, "test-key", r.Header.Get("auth-token"))
		w.Write([]byte(`{"zone": "IT", "carbonIntensity": 312.5, "updatedAt": "2026-08-27T10:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	in, err := c.Latest(context.Background(), "IT")
	require.NoError(t, err)
	assert.Equal(t, "IT", in.Zone)
	assert.InDelta(t, 312.5, in.Value, 0.001)
	assert.Equal(t, 2026, in.UpdatedAt.Year())
}

func TestLatestZoneDefaulting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"carbonIntensity": 280}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	in, err := c.Latest(context.Background(), "IT-NO")
	require.NoError(t, err)
	assert.Equal(t, "IT-NO", in.Zone)
}

func TestLatestNon200Aborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := c.Latest(context.Background(), "IT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
}

func TestLatestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.Latest(context.Background(), "IT")
	require.Error(t, err)
}
