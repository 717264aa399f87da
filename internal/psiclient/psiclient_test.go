package psiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/pagepulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestURL(t *testing.T) {
	c := New("https://psi.example.com/v5/runPagespeed", "secret")
	raw, err := c.RequestURL("https://example.com/a?b=1", schema.DesktopStrategy)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "https://example.com/a?b=1", q.Get("url"))
	assert.Equal(t, "desktop", q.Get("strategy"))
	assert.Equal(t, "secret", q.Get("key"))
	assert.Equal(t, Categories, q["category"])
}

func TestRequestURLWithoutKey(t *testing.T) {
	c := New("https://psi.example.com/v5/runPagespeed", "")
	raw, err := c.RequestURL("https://example.com/", schema.MobileStrategy)
	require.NoError(t, err)
	assert.NotContains(t, raw, "key=")
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mobile", r.URL.Query().Get("strategy"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"https://example.com/","lighthouseResult":{"categories":{"performance":{"score":0.9}}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	resp, err := c.Fetch(context.Background(), "https://example.com/", schema.MobileStrategy)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", resp.Doc["id"])
	assert.Contains(t, string(resp.Raw), "lighthouseResult")
}

func TestFetchNon2xx(t *testing.T) {
	long := strings.Repeat("x", 5000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(long))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k").Fetch(context.Background(), "https://example.com/", schema.MobileStrategy)
	require.ErrorIs(t, err, schema.ErrProviderError)

	var ae *schema.AuditError
	require.ErrorAs(t, err, &ae)
	assert.Len(t, ae.Detail, schema.ProviderBodySnippetLen)
	assert.Contains(t, ae.Message, "500")
}

func TestFetchBadResponse(t *testing.T) {
	for _, body := range []string{"<html>oops</html>", "null", "[1,2]", `{"a":1} trailing`} {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "k").Fetch(context.Background(), "https://example.com/", schema.MobileStrategy)
			assert.ErrorIs(t, err, schema.ErrProviderBadResponse)
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k", WithTimeout(50*time.Millisecond))
	_, err := c.Fetch(context.Background(), "https://example.com/", schema.MobileStrategy)
	assert.ErrorIs(t, err, schema.ErrProviderTimeout)
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := New(endpoint, "k").Fetch(context.Background(), "https://example.com/", schema.MobileStrategy)
	assert.ErrorIs(t, err, schema.ErrProviderError)
}
