package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

func TestFetchLatestSnapshot_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "nav.example.com", r.Header.Get("X-RapidAPI-Host"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"Scheme_Code": 119551, "Net_Asset_Value": 250.3333, "Date": "01-Apr-2024", "Mutual_Fund_Family": "Aditya Birla Sun Life Mutual Fund"},
			{"Scheme_Code": 100027, "Net_Asset_Value": "N.A.", "Date": "01-Apr-2024"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), Config{Host: "nav.example.com", BaseURL: srv.URL, APIKey: "key-123"})

	records, err := client.FetchLatestSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	code, ok := records[0].SchemeCode()
	assert.True(t, ok)
	assert.Equal(t, int64(119551), code)
	// UseNumber keeps the feed's exact digits
	assert.Equal(t, "250.3333", records[0].Text(domain.FieldNetAssetValue))
	assert.Equal(t, "N.A.", records[1].Text(domain.FieldNetAssetValue))
}

func TestFetchLatestSnapshot_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"quota exceeded"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), Config{Host: "nav.example.com", BaseURL: srv.URL})

	records, err := client.FetchLatestSnapshot(context.Background())
	assert.Nil(t, records)
	assert.True(t, errors.Is(err, domain.ErrFeedUnavailable))

	var feedErr *domain.FeedUnavailableError
	require.True(t, errors.As(err, &feedErr))
	assert.Equal(t, http.StatusTooManyRequests, feedErr.StatusCode)
	assert.Equal(t, `{"message":"quota exceeded"}`, feedErr.Body)
}

func TestFetchLatestSnapshot_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(nil, Config{Host: "nav.example.com", BaseURL: url, Timeout: time.Second})

	_, err := client.FetchLatestSnapshot(context.Background())
	require.Error(t, err)

	var feedErr *domain.FeedUnavailableError
	require.True(t, errors.As(err, &feedErr))
	assert.Equal(t, 0, feedErr.StatusCode)
	assert.Error(t, feedErr.Err)
}

func TestFetchLatestSnapshot_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.Client(), Config{Host: "nav.example.com", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	_, err := client.FetchLatestSnapshot(context.Background())
	assert.True(t, errors.Is(err, domain.ErrFeedUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFetchLatestSnapshot_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), Config{Host: "nav.example.com", BaseURL: srv.URL})

	_, err := client.FetchLatestSnapshot(context.Background())
	assert.True(t, errors.Is(err, domain.ErrFeedUnavailable))
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	client := NewClient(nil, Config{Host: "nav.example.com"})
	assert.Equal(t, "https://nav.example.com", client.baseURL)
	assert.Equal(t, DefaultTimeout, client.cfg.Timeout)
}
