package transcript

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studydesk/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "watch url", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "watch url with extra params", url: "https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", want: "dQw4w9WgXcQ"},
		{name: "short link", url: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "short link with query", url: "https://youtu.be/dQw4w9WgXcQ?si=abc", want: "dQw4w9WgXcQ"},
		{name: "embed", url: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "shorts", url: "https://www.youtube.com/shorts/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "mobile", url: "https://m.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "not youtube", url: "https://example.com/watch?v=dQw4w9WgXcQ", wantErr: true},
		{name: "no id", url: "https://www.youtube.com/feed/subscriptions", wantErr: true},
		{name: "garbage", url: "not a url at all %%%", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchTranscript(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			w.Write([]byte(`<html>..."captionTracks":[{"baseUrl":"` + srv.URL + `\/timedtext?v=abc&lang=en","name":...}]...</html>`))
		case "/timedtext":
			w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?><transcript><text start="0" dur="2.5">Hello &amp;amp; welcome</text><text start="2.5" dur="3">to the lecture</text></transcript>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	fetcher := NewFetcher(5*time.Second, zap.NewNop())
	fetcher.baseURL = srv.URL

	text, err := fetcher.FetchTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Hello & welcome to the lecture", text)
}

func TestFetchTranscriptNoCaptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>no caption config here</html>`))
	}))
	defer srv.Close()

	fetcher := NewFetcher(5*time.Second, zap.NewNop())
	fetcher.baseURL = srv.URL

	_, err := fetcher.FetchTranscript(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeContentUnavailable, domainErr.Code)
}

func TestFetchTranscriptUnreachablePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fetcher := NewFetcher(5*time.Second, zap.NewNop())
	fetcher.baseURL = srv.URL

	_, err := fetcher.FetchTranscript(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeContentUnavailable, domainErr.Code)
}

func TestFetchTranscriptBadLink(t *testing.T) {
	fetcher := NewFetcher(5*time.Second, zap.NewNop())

	_, err := fetcher.FetchTranscript(context.Background(), "https://example.com/lecture.mp4")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}
