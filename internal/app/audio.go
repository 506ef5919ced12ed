package app

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"weekly-quiz-service/internal/domain"
	"weekly-quiz-service/internal/mediaref"
)

// AudioStream is an open audio-only upstream body.
type AudioStream struct {
	Body        io.ReadCloser
	ContentType string
}

// AudioSource opens the media platform's audio for a media id at an offset.
type AudioSource interface {
	Open(ctx context.Context, mediaID string, startSeconds int) (*AudioStream, error)
}

// AudioProxy hides media ids behind obfuscated same-origin URLs.
type AudioProxy struct {
	obf      *mediaref.Obfuscator
	source   AudioSource
	basePath string
}

func NewAudioProxy(obf *mediaref.Obfuscator, source AudioSource, basePath string) *AudioProxy {
	return &AudioProxy{obf: obf, source: source, basePath: basePath}
}

// ProxyURL builds the client-facing URL for a raw source reference.
// The raw reference never leaves the server.
func (p *AudioProxy) ProxyURL(rawSource string, startSeconds int) (string, bool) {
	id, ok := mediaref.ExtractID(rawSource)
	if !ok {
		return "", false
	}
	if startSeconds < 0 {
		startSeconds = 0
	}
	q := url.Values{}
	q.Set("id", p.obf.Encode(id))
	q.Set("start", strconv.Itoa(startSeconds))
	return p.basePath + "?" + q.Encode(), true
}

// Open decodes encodedID and opens the upstream audio.
func (p *AudioProxy) Open(ctx context.Context, encodedID string, startSeconds int) (*AudioStream, error) {
	if startSeconds < 0 {
		return nil, domain.ErrInvalidStart
	}
	id, err := p.obf.Decode(encodedID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	stream, err := p.source.Open(ctx, id, startSeconds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return stream, nil
}
