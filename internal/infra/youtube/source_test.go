package youtube

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"
)

type fakeResolver struct {
	video     *youtube.Video
	streamURL string
	err       error
}

func (f *fakeResolver) GetVideoContext(_ context.Context, _ string) (*youtube.Video, error) {
	return f.video, f.err
}

func (f *fakeResolver) GetStreamURLContext(_ context.Context, _ *youtube.Video, _ *youtube.Format) (string, error) {
	return f.streamURL, nil
}

func TestOpenRequestsByteOffset(t *testing.T) {
	var gotRange string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("audio-bytes"))
	}))
	defer upstream.Close()

	src := &Source{
		resolver: &fakeResolver{
			streamURL: upstream.URL,
			video: &youtube.Video{
				Duration: 100 * time.Second,
				Formats: youtube.FormatList{
					{ItagNo: 18, MimeType: `video/mp4; codecs="avc1"`, Bitrate: 900000, ContentLength: 9000},
					{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 128000, ContentLength: 1000, ApproxDurationMs: "100000"},
					{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, ContentLength: 2000, ApproxDurationMs: "100000"},
				},
			},
		},
		http: upstream.Client(),
	}

	stream, err := src.Open(context.Background(), "dQw4w9WgXcQ", 25)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer stream.Body.Close()

	if gotRange != "bytes=500-" {
		t.Fatalf("expected range from 25%% of the opus format, got %q", gotRange)
	}
	if stream.ContentType != "audio/webm" {
		t.Fatalf("unexpected content type %q", stream.ContentType)
	}
	body, _ := io.ReadAll(stream.Body)
	if string(body) != "audio-bytes" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestOpenFromStartSendsNoRange(t *testing.T) {
	var hadRange bool
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadRange = r.Header["Range"]
		_, _ = w.Write([]byte("x"))
	}))
	defer upstream.Close()

	src := &Source{
		resolver: &fakeResolver{
			streamURL: upstream.URL,
			video: &youtube.Video{Formats: youtube.FormatList{
				{MimeType: "audio/mp4", Bitrate: 1, ContentLength: 10, ApproxDurationMs: "1000"},
			}},
		},
		http: upstream.Client(),
	}
	stream, err := src.Open(context.Background(), "dQw4w9WgXcQ", 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	stream.Body.Close()
	if hadRange {
		t.Fatalf("expected no range header for start=0")
	}
}

func TestOpenFailures(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer upstream.Close()

	cases := []struct {
		name     string
		resolver *fakeResolver
	}{
		{"resolve error", &fakeResolver{err: errors.New("unavailable")}},
		{"no audio", &fakeResolver{video: &youtube.Video{Formats: youtube.FormatList{{MimeType: "video/mp4"}}}}},
		{"upstream status", &fakeResolver{
			streamURL: upstream.URL,
			video:     &youtube.Video{Formats: youtube.FormatList{{MimeType: "audio/mp4"}}},
		}},
	}
	for _, tc := range cases {
		src := &Source{resolver: tc.resolver, http: upstream.Client()}
		if _, err := src.Open(context.Background(), "dQw4w9WgXcQ", 3); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestByteOffsetPastEnd(t *testing.T) {
	f := &youtube.Format{ContentLength: 1000, ApproxDurationMs: "10000"}
	if got := byteOffset(f, 0, 30); got != 0 {
		t.Fatalf("expected offset 0 past the end, got %d", got)
	}
}
