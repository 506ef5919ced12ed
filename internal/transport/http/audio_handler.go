package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"weekly-quiz-service/internal/domain"
)

// streamBufferSize is the fixed relay buffer; memory per stream stays bounded.
const streamBufferSize = 64 << 10

// handleAudio relays an audio-only snippet for an obfuscated media reference.
// Once bytes are on the wire an upstream failure aborts the connection
// instead of appending an error body.
func (a *API) handleAudio(w http.ResponseWriter, r *http.Request) {
	encodedID := r.URL.Query().Get("id")
	if encodedID == "" {
		a.writeError(w, r, domain.ErrInvalidID)
		return
	}
	start := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("start")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			a.writeError(w, r, domain.ErrInvalidStart)
			return
		}
		start = n
	}

	stream, err := a.svc.Audio.Open(r.Context(), encodedID, start)
	if err != nil {
		if errors.Is(err, domain.ErrUpstream) {
			a.streamError("open")
		}
		a.writeError(w, r, err)
		return
	}
	defer stream.Body.Close()

	if a.metrics != nil {
		a.metrics.StreamsActive.Inc()
		defer a.metrics.StreamsActive.Dec()
	}

	w.Header().Set("Content-Type", stream.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, streamBufferSize)
	for {
		n, readErr := stream.Body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				// Client went away; the request context cancels the upstream.
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
			if a.metrics != nil {
				a.metrics.StreamBytes.Add(float64(n))
			}
		}
		if readErr == io.EOF {
			return
		}
		if readErr != nil {
			if r.Context().Err() != nil {
				return
			}
			a.streamError("copy")
			a.log.WithError(readErr).Warn("audio stream interrupted")
			panic(http.ErrAbortHandler)
		}
	}
}

func (a *API) streamError(stage string) {
	if a.metrics != nil {
		a.metrics.StreamErrors.WithLabelValues(stage).Inc()
	}
}
