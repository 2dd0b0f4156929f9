package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

func newTestClient(t *testing.T, serverURL string, opts ...func(*Config)) *Client {
	t.Helper()
	cfg := Config{BaseURL: serverURL, Timeout: 2 * time.Second, RetryCount: -1, RequestsPerSecond: 1000}
	for _, opt := range opts {
		opt(&cfg)
	}
	client, err := New(cfg)
	require.NoError(t, err)
	return client
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New(Config{BaseURL: "/not/absolute"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetJSON_AppliesBearerAuth(t *testing.T) {
	var gotAuth, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(c *Config) { c.UserAgent = "FabreXLens/test" })

	var out map[string]string
	err := client.GetJSON(context.Background(), "/ping", nil, domain.BearerAuth("tok-1"), &out)

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "FabreXLens/test", gotUA)
	assert.Equal(t, "yes", out["ok"])
}

func TestGetJSON_AppliesBasicAuth(t *testing.T) {
	var user, pass string
	var okAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, okAuth = r.BasicAuth()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var out struct{}
	err := client.GetJSON(context.Background(), "/ping", nil, domain.BasicAuth("admin", "secret"), &out)

	require.NoError(t, err)
	require.True(t, okAuth)
	assert.Equal(t, "admin", user)
	assert.Equal(t, "secret", pass)
}

func TestGetJSON_ResolvesAgainstBasePath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/fabrexfleet")

	var out struct{}
	err := client.GetJSON(context.Background(), "/fabrics", nil, domain.AuthContext{}, &out)

	require.NoError(t, err)
	assert.Equal(t, "/fabrexfleet/fabrics", gotPath)
}

func TestGetJSON_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.GetJSON(context.Background(), "/fabrics", nil, domain.AuthContext{}, &struct{}{})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetJSON_RemoteRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "conflict detected", http.StatusConflict)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.GetJSON(context.Background(), "/fabrics", nil, domain.AuthContext{}, &struct{}{})

	require.ErrorIs(t, err, domain.ErrRemoteRejected)
	var remote *domain.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusConflict, remote.StatusCode)
	assert.Equal(t, "conflict detected", remote.Message)
}

func TestGetJSON_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items": [`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.GetJSON(context.Background(), "/fabrics", nil, domain.AuthContext{}, &struct{}{})

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGetJSON_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(c *Config) { c.Timeout = 50 * time.Millisecond })

	err := client.GetJSON(context.Background(), "/slow", nil, domain.AuthContext{}, &struct{}{})

	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestGetJSON_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	server.Close() // nothing listening any more

	client := newTestClient(t, server.URL)

	err := client.GetJSON(context.Background(), "/fabrics", nil, domain.AuthContext{}, &struct{}{})

	assert.ErrorIs(t, err, domain.ErrUnreachable)
}

func TestGetJSON_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			// Simulate a slow first response to trip the client timeout.
			time.Sleep(200 * time.Millisecond)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(c *Config) {
		c.Timeout = 80 * time.Millisecond
		c.RetryCount = 2
	})

	var out struct {
		OK bool `json:"ok"`
	}
	err := client.GetJSON(context.Background(), "/flaky", nil, domain.AuthContext{}, &out)

	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetJSON_DoesNotRetryRemoteRejection(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(c *Config) { c.RetryCount = 3 })

	err := client.GetJSON(context.Background(), "/fabrics", nil, domain.AuthContext{}, &struct{}{})

	assert.ErrorIs(t, err, domain.ErrRemoteRejected)
	assert.Equal(t, int32(1), calls.Load(), "remote rejections are not transient")
}

func TestPostJSON_NeverRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(c *Config) {
		c.Timeout = 50 * time.Millisecond
		c.RetryCount = 3
	})

	err := client.PostJSON(context.Background(), "/mutate", domain.AuthContext{}, map[string]string{"a": "b"}, &struct{}{})

	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, int32(1), calls.Load(), "writes must not be retried")
}

func TestPostJSON_SendsBody(t *testing.T) {
	var gotBody map[string]string
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"requestId":"req-1","status":"accepted"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var out domain.ReassignmentResult
	err := client.PostJSON(context.Background(), "/reassign", domain.AuthContext{},
		map[string]string{"targetSupernodeId": "sn-42"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "sn-42", gotBody["targetSupernodeId"])
	assert.Equal(t, "req-1", out.RequestID)
}

func TestPostJSONWithHeaders_SurfacesHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Auth-Token", "session-token")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"Id":"session-1"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var out struct {
		ID string `json:"Id"`
	}
	headers, err := client.PostJSONWithHeaders(context.Background(), "/Sessions", domain.AuthContext{}, map[string]string{}, &out)

	require.NoError(t, err)
	assert.Equal(t, "session-token", headers.Get("X-Auth-Token"))
	assert.Equal(t, "session-1", out.ID)
}

func TestPageQuery(t *testing.T) {
	assert.Nil(t, PageQuery(domain.Pagination{}))

	q := PageQuery(domain.Pagination{Limit: 50, Cursor: "next-cursor"})
	assert.Equal(t, url.Values{"limit": {"50"}, "cursor": {"next-cursor"}}, q)
}
