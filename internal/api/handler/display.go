package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/djcafe/cafe/internal/api/response"
	"github.com/djcafe/cafe/internal/display"
	"github.com/djcafe/cafe/internal/notify"
)

type displayState interface {
	State() display.State
}

type scheduleLister interface {
	Entries() []display.ScheduledCampaign
}

type Display struct {
	player    displayState
	scheduler scheduleLister
	relay     subscriber
	origins   []string
}

// NewDisplay wires the TV display endpoints. scheduler may be nil. origins
// are the allowed browser origins; WebSocket upgrades match on their host.
func NewDisplay(player displayState, scheduler scheduleLister, relay subscriber, origins []string) *Display {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
			continue
		}
		hosts = append(hosts, o)
	}
	return &Display{player: player, scheduler: scheduler, relay: relay, origins: hosts}
}

func (h *Display) State(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.player.State())
}

func (h *Display) Schedule(w http.ResponseWriter, r *http.Request) {
	entries := []display.ScheduledCampaign{}
	if h.scheduler != nil {
		entries = h.scheduler.Entries()
	}
	response.WriteJSON(w, http.StatusOK, entries)
}

// wsMessage is one frame sent to a display. Payload is the raw notification
// when it is JSON, otherwise a JSON string.
type wsMessage struct {
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload"`
}

func newWSMessage(channel, payload string) wsMessage {
	if json.Valid([]byte(payload)) {
		return wsMessage{Channel: channel, Payload: json.RawMessage(payload)}
	}
	quoted, _ := json.Marshal(payload)
	return wsMessage{Channel: channel, Payload: quoted}
}

// WS forwards both relay channels to a TV screen. The first frame carries the
// current display state on the "state" channel.
func (h *Display) WS(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		return // Accept already wrote the HTTP error
	}
	defer conn.CloseNow()

	prices := h.relay.Subscribe(notify.ChannelPrices)
	defer prices.Close()
	overlays := h.relay.Subscribe(notify.ChannelDisplay)
	defer overlays.Close()

	// Displays only listen; reading is needed to process control frames.
	ctx := conn.CloseRead(r.Context())

	state, _ := json.Marshal(h.player.State())
	if err := writeWS(ctx, conn, newWSMessage("state", string(state))); err != nil {
		return
	}

	for {
		var msg wsMessage
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case p, ok := <-prices.C:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "")
				return
			}
			msg = newWSMessage(notify.ChannelPrices, p)
		case p, ok := <-overlays.C:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "")
				return
			}
			msg = newWSMessage(notify.ChannelDisplay, p)
		}
		if err := writeWS(ctx, conn, msg); err != nil {
			logger.Debug().Err(err).Msg("display websocket closed")
			return
		}
	}
}

func writeWS(ctx context.Context, conn *websocket.Conn, msg wsMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, b)
}
