package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/djcafe/cafe/internal/api/response"
	"github.com/djcafe/cafe/internal/notify"
)

type subscriber interface {
	Subscribe(channel string) *notify.Subscriber
}

// Events streams relay channels as Server-Sent Events.
type Events struct {
	relay     subscriber
	keepAlive time.Duration
}

func NewEvents(relay subscriber, keepAlive time.Duration) *Events {
	return &Events{relay: relay, keepAlive: keepAlive}
}

func (h *Events) Prices(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, notify.ChannelPrices)
}

func (h *Events) Display(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, notify.ChannelDisplay)
}

// stream writes every payload of channel as one event until the client goes
// away. A comment line keeps idle connections open.
func (h *Events) stream(w http.ResponseWriter, r *http.Request, channel string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := h.relay.Subscribe(channel)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case payload, ok := <-sub.C:
			if !ok {
				return
			}
			if _, err := io.WriteString(w, formatEvent(payload)); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// formatEvent frames payload as a single event with one data line per payload
// line. Clients join the data lines with "\n", so the payload arrives intact.
func formatEvent(payload string) string {
	var b strings.Builder
	for _, line := range strings.Split(lineBreaks.Replace(payload), "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}
