package solr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	tr, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8983/solr", tr.baseURL.String())
	assert.Equal(t, DefaultTimeout, tr.client.Timeout)
	assert.Nil(t, tr.limiter)
}

func TestNew_InvalidBaseURL(t *testing.T) {
	tests := []string{"ftp://solr", "http://", "::bad"}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := New(Config{BaseURL: raw})
			assert.Error(t, err)
		})
	}
}

func TestTransport_Read(t *testing.T) {
	var gotPath, gotQuery, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("wt")
		gotRequestID = r.Header.Get(RequestIDHeader)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"name":"films"}`))
	}))
	defer srv.Close()

	tr, err := New(Config{BaseURL: srv.URL + "/solr/"})
	require.NoError(t, err)

	resp, err := tr.Read(context.Background(), "films", "/name")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, `{"name":"films"}`, string(resp.Body))
	assert.Equal(t, "/solr/films/schema/name", gotPath)
	assert.Equal(t, "json", gotQuery)
	assert.NotEmpty(t, gotRequestID)
}

func TestTransport_Update(t *testing.T) {
	var gotBody, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/solr/films/schema", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		_, _ = w.Write([]byte(`{"responseHeader":{"status":0}}`))
	}))
	defer srv.Close()

	tr, err := New(Config{BaseURL: srv.URL + "/solr"})
	require.NoError(t, err)

	payload := `{"add-field":{"name":"title","type":"string"}}`
	resp, err := tr.Update(context.Background(), "films", []byte(payload))
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, payload, gotBody)
	assert.Equal(t, "application/json", gotContentType)
}

func TestTransport_NonOKStatusIsNotAnError(t *testing.T) {
	body := `{"error":{"msg":"error processing commands","code":400}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	tr, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := tr.Update(context.Background(), "films", []byte(`{}`))
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, body, string(resp.Body))
}

func TestTransport_BasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "solr" || pass != "SolrRocks" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr, err := New(Config{BaseURL: srv.URL, Username: "solr", Password: "SolrRocks"})
	require.NoError(t, err)
	resp, err := tr.Read(context.Background(), "films", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	anon, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	resp, err = anon.Read(context.Background(), "films", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTransport_BearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr, err := New(Config{BaseURL: srv.URL, Token: "abc123", Username: "ignored"})
	require.NoError(t, err)
	_, err = tr.Read(context.Background(), "films", "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestTransport_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	tr, err := New(Config{BaseURL: url})
	require.NoError(t, err)
	_, err = tr.Read(context.Background(), "films", "")
	assert.Error(t, err)
}

func TestTransport_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tr.Read(ctx, "films", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransport_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	tr, err := New(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	require.NoError(t, err)
	_, err = tr.Read(context.Background(), "films", "")
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestTransport_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr, err := New(Config{BaseURL: srv.URL, RequestsPerSecond: 20})
	require.NoError(t, err)
	require.NotNil(t, tr.limiter)

	start := time.Now()
	for range 3 {
		_, err := tr.Read(context.Background(), "films", "")
		require.NoError(t, err)
	}
	// Burst of one: the second and third requests each wait ~50ms.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestTransport_EscapesCollection(t *testing.T) {
	var gotRawPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = tr.Read(context.Background(), "my films", "")
	require.NoError(t, err)
	assert.Equal(t, "/my%20films/schema", gotRawPath)
}

func TestTransport_Close(t *testing.T) {
	tr, err := New(Config{})
	require.NoError(t, err)
	assert.NoError(t, tr.Close())
}
