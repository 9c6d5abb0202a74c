package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Subscriber receives raw payloads of one channel on C. Close marks it dead;
// the relay removes it and closes C on the next broadcast to that channel.
type Subscriber struct {
	C       <-chan string
	ch      chan string
	channel string
	dead    atomic.Bool
}

func (s *Subscriber) Close() {
	s.dead.Store(true)
}

// Channel returns the notification channel the subscriber is registered on.
func (s *Subscriber) Channel() string {
	return s.channel
}

// Relay keeps one LISTEN connection open and fans each notification out to
// the subscribers of its channel.
type Relay struct {
	dial           Dialer
	channels       []string
	reconnectDelay time.Duration
	buffer         int
	logger         zerolog.Logger

	connected atomic.Bool

	mu   sync.Mutex
	subs map[string][]*Subscriber
}

type RelayConfig struct {
	Channels       []string
	ReconnectDelay time.Duration
	Buffer         int
}

func NewRelay(dial Dialer, cfg RelayConfig, logger zerolog.Logger) *Relay {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 16
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	return &Relay{
		dial:           dial,
		channels:       cfg.Channels,
		reconnectDelay: cfg.ReconnectDelay,
		buffer:         cfg.Buffer,
		logger:         logger.With().Str("component", "notify-relay").Logger(),
		subs:           make(map[string][]*Subscriber),
	}
}

// Run listens until ctx is cancelled, reconnecting after every failure.
func (r *Relay) Run(ctx context.Context) error {
	for {
		err := r.listen(ctx)
		r.connected.Store(false)
		if ctx.Err() != nil {
			return nil
		}

		r.logger.Error().Err(err).Dur("retry_in", r.reconnectDelay).Msg("notification listener failed")
		reconnectsTotal.Inc()

		t := time.NewTimer(r.reconnectDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

func (r *Relay) listen(ctx context.Context) error {
	l, err := r.dial(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.Close(closeCtx); err != nil {
			r.logger.Debug().Err(err).Msg("close listener")
		}
	}()

	for _, ch := range r.channels {
		if err := l.Listen(ctx, ch); err != nil {
			return err
		}
	}
	r.connected.Store(true)
	r.logger.Info().Strs("channels", r.channels).Msg("listening for notifications")

	for {
		n, err := l.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		notificationsReceived.WithLabelValues(n.Channel).Inc()
		r.Broadcast(n)
	}
}

// Connected reports whether the LISTEN connection is currently established.
func (r *Relay) Connected() bool {
	return r.connected.Load()
}

// Subscribe registers a new subscriber at the end of the channel's list.
func (r *Relay) Subscribe(channel string) *Subscriber {
	ch := make(chan string, r.buffer)
	s := &Subscriber{C: ch, ch: ch, channel: channel}

	r.mu.Lock()
	r.subs[channel] = append(r.subs[channel], s)
	n := len(r.subs[channel])
	r.mu.Unlock()

	subscribersGauge.WithLabelValues(channel).Set(float64(n))
	return s
}

// Broadcast delivers n.Payload to every live subscriber of n.Channel in
// subscription order and returns how many received it. A subscriber with a
// full buffer misses the message. Closed subscribers are pruned here.
func (r *Relay) Broadcast(n Notification) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.subs[n.Channel]
	live := subs[:0]
	delivered, pruned := 0, 0
	for _, s := range subs {
		if s.dead.Load() {
			close(s.ch)
			pruned++
			continue
		}
		select {
		case s.ch <- n.Payload:
			delivered++
		default:
			deliveriesDropped.WithLabelValues(n.Channel).Inc()
		}
		live = append(live, s)
	}
	for i := len(live); i < len(subs); i++ {
		subs[i] = nil
	}
	r.subs[n.Channel] = live

	if pruned > 0 {
		subscribersPruned.WithLabelValues(n.Channel).Add(float64(pruned))
		r.logger.Debug().Str("channel", n.Channel).Int("pruned", pruned).Msg("pruned closed subscribers")
	}
	subscribersGauge.WithLabelValues(n.Channel).Set(float64(len(live)))
	return delivered
}

// SubscriberCount returns the number of registered subscribers of a channel,
// including closed ones not yet pruned.
func (r *Relay) SubscriberCount(channel string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[channel])
}
