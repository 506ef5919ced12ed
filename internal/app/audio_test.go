package app_test

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"weekly-quiz-service/internal/app"
	"weekly-quiz-service/internal/domain"
	"weekly-quiz-service/internal/mediaref"
)

type fakeSource struct {
	gotID    string
	gotStart int
	err      error
}

func (f *fakeSource) Open(_ context.Context, mediaID string, startSeconds int) (*app.AudioStream, error) {
	f.gotID, f.gotStart = mediaID, startSeconds
	if f.err != nil {
		return nil, f.err
	}
	return &app.AudioStream{Body: io.NopCloser(strings.NewReader("mp3")), ContentType: "audio/mp4"}, nil
}

func newProxy(t *testing.T, src app.AudioSource) *app.AudioProxy {
	t.Helper()
	obf, err := mediaref.NewObfuscator("deployment-key")
	if err != nil {
		t.Fatalf("obfuscator: %v", err)
	}
	return app.NewAudioProxy(obf, src, "/api/audio")
}

func TestProxyURLRoundTrip(t *testing.T) {
	src := &fakeSource{}
	proxy := newProxy(t, src)

	link, ok := proxy.ProxyURL("https://youtu.be/dQw4w9WgXcQ?t=10", 42)
	if !ok {
		t.Fatalf("expected proxy url")
	}
	u, err := url.Parse(link)
	if err != nil || u.Path != "/api/audio" || u.Query().Get("start") != "42" {
		t.Fatalf("unexpected proxy url %q", link)
	}
	if strings.Contains(link, "dQw4w9WgXcQ") {
		t.Fatalf("proxy url leaks media id: %q", link)
	}

	stream, err := proxy.Open(context.Background(), u.Query().Get("id"), 42)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer stream.Body.Close()
	if src.gotID != "dQw4w9WgXcQ" || src.gotStart != 42 {
		t.Fatalf("source got id=%q start=%d", src.gotID, src.gotStart)
	}

	if _, ok := proxy.ProxyURL("https://example.com/song.mp3", 0); ok {
		t.Fatalf("expected no proxy url for non-platform source")
	}
}

func TestProxyOpenErrors(t *testing.T) {
	proxy := newProxy(t, &fakeSource{err: errors.New("boom")})
	ctx := context.Background()

	_, err := proxy.Open(ctx, "garbage!!", 0)
	expectCode(t, err, domain.ErrInvalidID)

	link, _ := proxy.ProxyURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ", 0)
	u, _ := url.Parse(link)
	_, err = proxy.Open(ctx, u.Query().Get("id"), -5)
	expectCode(t, err, domain.ErrInvalidStart)

	_, err = proxy.Open(ctx, u.Query().Get("id"), 0)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
