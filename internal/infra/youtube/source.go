// Package youtube opens audio-only streams from the media platform.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"weekly-quiz-service/internal/app"
)

var ErrNoAudio = errors.New("youtube: no audio-only format")

// resolver is the part of youtube.Client the source needs.
type resolver interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error)
}

// Source implements app.AudioSource. It picks the best audio-only format and
// requests it from the byte offset matching the start time.
type Source struct {
	resolver resolver
	http     *http.Client
}

func NewSource(timeout time.Duration) *Source {
	httpClient := &http.Client{Timeout: timeout}
	return &Source{
		resolver: &youtube.Client{HTTPClient: httpClient},
		// The body is relayed for the whole snippet; only the dial and headers are bounded.
		http: &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: timeout,
		}},
	}
}

func (s *Source) Open(ctx context.Context, mediaID string, startSeconds int) (*app.AudioStream, error) {
	video, err := s.resolver.GetVideoContext(ctx, mediaID)
	if err != nil {
		return nil, fmt.Errorf("resolve video: %w", err)
	}
	format, ok := bestAudio(video.Formats.Type("audio"))
	if !ok {
		return nil, ErrNoAudio
	}
	streamURL, err := s.resolver.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("stream url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, err
	}
	if offset := byteOffset(format, video.Duration, startSeconds); offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("open stream: upstream status %d", resp.StatusCode)
	}
	return &app.AudioStream{Body: resp.Body, ContentType: contentType(format.MimeType)}, nil
}

func bestAudio(formats youtube.FormatList) (*youtube.Format, bool) {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best, best != nil
}

// byteOffset approximates the position of startSeconds assuming a constant bitrate.
func byteOffset(f *youtube.Format, videoDuration time.Duration, startSeconds int) int64 {
	if startSeconds <= 0 || f.ContentLength <= 0 {
		return 0
	}
	duration := videoDuration
	if ms, err := strconv.ParseInt(f.ApproxDurationMs, 10, 64); err == nil && ms > 0 {
		duration = time.Duration(ms) * time.Millisecond
	}
	if duration <= 0 {
		return 0
	}
	start := time.Duration(startSeconds) * time.Second
	if start >= duration {
		return 0
	}
	return int64(float64(f.ContentLength) * (float64(start) / float64(duration)))
}

func contentType(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(mime)
	if mime == "" {
		return "audio/mpeg"
	}
	return mime
}
