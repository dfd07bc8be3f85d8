package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "momentumrank", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, []string{"a", "b"}, r.URL.Query()["s"])
		_, _ = w.Write([]byte(`{"rank":3}`))
	}))
	defer srv.Close()

	c := NewClient(WithHeader("User-Agent", "momentumrank"))
	var out struct {
		Rank int `json:"rank"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		URL:         srv.URL,
		QueryParams: url.Values{"s": {"a", "b"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Rank)
}

func TestSendAndParseStatusError(t *testing.T) {
	codes := []int{http.StatusNotFound, http.StatusTooManyRequests, http.StatusBadGateway}
	temporary := []bool{false, true, true}

	for i, code := range codes {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", code)
		}))

		err := NewClient().SendAndParse(context.Background(), &RequestOptions{URL: srv.URL}, nil)
		srv.Close()

		var se *StatusError
		require.True(t, errors.As(err, &se), code)
		assert.Equal(t, code, se.Code)
		assert.Contains(t, se.Body, "nope")
		assert.Equal(t, temporary[i], se.Temporary(), code)
	}
}

func TestSendAndParseBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rank":`))
	}))
	defer srv.Close()

	var out map[string]int
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{URL: srv.URL}, &out)
	assert.ErrorContains(t, err, "decode json")
}
