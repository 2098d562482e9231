// Package transcript resolves pasted YouTube links to caption text so the
// lecture can be analyzed like any uploaded file.
package transcript

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"studydesk/internal/domain"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://www.youtube.com"

// Caption track URLs are embedded in the watch page's player config as
// escaped JSON.
var captionTrackRe = regexp.MustCompile(`"captionTracks":\[\{"baseUrl":"((?:[^"\\]|\\.)*)"`)

// Fetcher retrieves YouTube caption tracks over plain HTTPS
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		logger:     logger,
	}
}

// FetchTranscript implements domain.TranscriptFetcher. Every failure mode
// (bad link, unreachable page, video without captions) maps to a
// content-unavailable error.
func (f *Fetcher) FetchTranscript(ctx context.Context, rawURL string) (string, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return "", domain.NewInvalidInputError(fmt.Sprintf("Not a recognizable YouTube link: %s", rawURL))
	}

	watchURL := f.baseURL + "/watch?v=" + url.QueryEscape(videoID)
	page, err := f.get(ctx, watchURL)
	if err != nil {
		return "", domain.NewContentUnavailableError(rawURL, err)
	}

	m := captionTrackRe.FindStringSubmatch(page)
	if m == nil {
		f.logger.Warn("No caption tracks found for video", zap.String("video_id", videoID))
		return "", domain.NewContentUnavailableError(rawURL, fmt.Errorf("video %s has no captions", videoID))
	}
	trackURL := unescapeTrackURL(m[1])

	body, err := f.get(ctx, trackURL)
	if err != nil {
		return "", domain.NewContentUnavailableError(rawURL, err)
	}

	text, err := parseTimedText(body)
	if err != nil || text == "" {
		return "", domain.NewContentUnavailableError(rawURL, fmt.Errorf("could not parse captions for video %s", videoID))
	}

	f.logger.Info("Transcript fetched",
		zap.String("video_id", videoID),
		zap.Int("length", len(text)))
	return text, nil
}

func (f *Fetcher) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, target)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ExtractVideoID pulls the 11-character video id out of the link forms users
// paste: watch URLs, youtu.be short links, embed and shorts paths.
func ExtractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return firstPathSegment(id), nil
		}
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				if id := firstPathSegment(strings.TrimPrefix(u.Path, prefix)); id != "" {
					return id, nil
				}
			}
		}
	}
	return "", fmt.Errorf("no video id in %q", rawURL)
}

func firstPathSegment(p string) string {
	if i := strings.IndexByte(p, '/'); i != -1 {
		return p[:i]
	}
	return p
}

func unescapeTrackURL(s string) string {
	s = strings.ReplaceAll(s, `\u0026`, "&")
	s = strings.ReplaceAll(s, `\/`, "/")
	return s
}

type timedText struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// parseTimedText flattens a timedtext caption document into plain text.
// Caption payloads are HTML-escaped inside the XML character data.
func parseTimedText(body string) (string, error) {
	var doc timedText
	if err := xml.Unmarshal([]byte(body), &doc); err != nil {
		return "", err
	}

	parts := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		line := strings.TrimSpace(html.UnescapeString(t.Value))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " "), nil
}

var _ domain.TranscriptFetcher = (*Fetcher)(nil)
