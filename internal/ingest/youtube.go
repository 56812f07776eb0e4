package ingest

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	mimirErrors "github.com/harunnryd/mimir/internal/errors"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoID extracts the video id from watch, youtu.be, shorts and embed URLs.
func ParseVideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", mimirErrors.InvalidInput(fmt.Sprintf("not a YouTube URL: %q", raw))
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/live/"):
			id = strings.TrimPrefix(u.Path, "/live/")
		}
	default:
		return "", mimirErrors.InvalidInput(fmt.Sprintf("not a YouTube URL: %q", raw))
	}

	id = strings.Trim(id, "/")
	if !videoIDPattern.MatchString(id) {
		return "", mimirErrors.InvalidInput(fmt.Sprintf("no video id in %q", raw))
	}
	return id, nil
}

// IsYouTubeURL reports whether raw points at a YouTube host.
func IsYouTubeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") || strings.HasSuffix(host, "youtube-nocookie.com")
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

type oembedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

func (s *Service) fetchVideoTitle(ctx context.Context, videoID string) (string, error) {
	q := url.Values{}
	q.Set("url", watchURL(videoID))
	q.Set("format", "json")

	body, err := s.get(ctx, s.youtube.OEmbedURL+"?"+q.Encode(), s.youtubeTimeout, 1<<20)
	if err != nil {
		return "", err
	}

	var meta oembedResponse
	if err := json.Unmarshal(body, &meta); err != nil {
		return "", fmt.Errorf("decode oembed: %w", err)
	}
	return strings.TrimSpace(meta.Title), nil
}

type timedText struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

func (s *Service) fetchTranscript(ctx context.Context, videoID string) (string, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", s.youtube.Language)

	body, err := s.get(ctx, s.youtube.TranscriptURL+"?"+q.Encode(), s.youtubeTimeout, 8<<20)
	if err != nil {
		return "", err
	}
	return parseTimedText(body)
}

func parseTimedText(body []byte) (string, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", mimirErrors.NotFound("transcript not available")
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}

	parts := make([]string, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		text := strings.Join(strings.Fields(html.UnescapeString(line.Text)), " ")
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", mimirErrors.NotFound("transcript not available")
	}
	return strings.Join(parts, " "), nil
}

func (s *Service) get(ctx context.Context, target string, timeout time.Duration, limit int64) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, mimirErrors.InvalidInput(err.Error())
	}
	req.Header.Set("User-Agent", s.web.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, mimirErrors.Wrap(ctxErr, "fetch "+req.URL.Host)
		}
		return nil, mimirErrors.WrapWithCategory(err, "fetch "+req.URL.Host, mimirErrors.ErrTransient)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode, req.URL.String()); err != nil {
		return nil, err
	}

	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

func statusError(code int, target string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return mimirErrors.NotFound(fmt.Sprintf("%s returned %d", target, code))
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return mimirErrors.PermissionDenied(fmt.Sprintf("%s returned %d", target, code))
	case code == http.StatusTooManyRequests || code >= 500:
		return mimirErrors.Transient(fmt.Sprintf("%s returned %d", target, code))
	default:
		return mimirErrors.InvalidInput(fmt.Sprintf("%s returned %d", target, code))
	}
}
