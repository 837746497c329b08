package vitals

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/metrics"
	"stealthcompany.com/icudash/internal/patients"
)

// ErrHubClosed is returned by Subscribe after Close
var ErrHubClosed = errors.New("vitals hub closed")

const (
	// subscriberBuffer is the per-subscriber channel depth; a subscriber that
	// falls further behind misses samples
	subscriberBuffer = 16
	// publishQueue bounds the samples waiting for the publisher; when the
	// broker stalls newer samples are dropped instead of blocking feeds
	publishQueue = 64
	// publishDrainTimeout bounds how long Close waits for queued samples
	publishDrainTimeout = 2 * time.Second
)

// Hub runs at most one feed per patient. A feed starts with its first
// subscriber and stops when the last one leaves.
type Hub struct {
	gen      *Generator
	pub      Publisher
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	feeds  map[string]*feed
	closed bool
	wg     sync.WaitGroup

	outbox     chan outgoing
	pubCtx     context.Context
	cancelPub  context.CancelFunc
	pubDone    chan struct{}
	pubDropped atomic.Int64
}

type outgoing struct {
	patientID string
	sample    Sample
}

type feed struct {
	patientID string
	status    patients.Status
	buf       *Buffer
	subs      map[*Subscription]struct{}
	cancel    context.CancelFunc
}

// Subscription receives the live samples of one patient
type Subscription struct {
	PatientID string

	ch      chan Sample
	hub     *Hub
	once    sync.Once
	dropped atomic.Int64
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithPublisher forwards every generated sample to pub
func WithPublisher(pub Publisher) HubOption {
	return func(h *Hub) { h.pub = pub }
}

// WithHubClock overrides the time source used for backfilled snapshots
func WithHubClock(now func() time.Time) HubOption {
	return func(h *Hub) { h.now = now }
}

// NewHub creates a hub that ticks every interval
func NewHub(gen *Generator, interval time.Duration, opts ...HubOption) *Hub {
	h := &Hub{
		gen:      gen,
		pub:      NopPublisher{},
		interval: interval,
		now:      time.Now,
		feeds:    make(map[string]*feed),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.outbox = make(chan outgoing, publishQueue)
	h.pubCtx, h.cancelPub = context.WithCancel(context.Background())
	h.pubDone = make(chan struct{})
	go h.publish()

	return h
}

// publish forwards queued samples to the publisher until the outbox closes
func (h *Hub) publish() {
	defer close(h.pubDone)

	for out := range h.outbox {
		if err := h.pub.Publish(h.pubCtx, out.patientID, out.sample); err != nil && h.pubCtx.Err() == nil {
			metrics.RecordPublishFailure()
			log.Warn().
				Err(err).
				Str("patient_id", out.patientID).
				Msg("Failed to publish vitals sample")
		}
	}
}

// enqueue hands s to the publisher without waiting on it
func (h *Hub) enqueue(patientID string, s Sample) {
	select {
	case h.outbox <- outgoing{patientID: patientID, sample: s}:
	default:
		h.pubDropped.Add(1)
		metrics.RecordPublishFailure()
	}
}

// PublishDropped returns the number of samples dropped because the publish
// queue was full
func (h *Hub) PublishDropped() int64 {
	return h.pubDropped.Load()
}

// Subscribe attaches to the feed of patientID, starting it when needed, and
// returns the current window
func (h *Hub) Subscribe(patientID string, status patients.Status) (*Subscription, []Sample, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, nil, ErrHubClosed
	}

	f, ok := h.feeds[patientID]
	if !ok {
		f = h.startFeed(patientID, status)
	}

	sub := &Subscription{
		PatientID: patientID,
		ch:        make(chan Sample, subscriberBuffer),
		hub:       h,
	}
	f.subs[sub] = struct{}{}
	metrics.AddFeedSubscribers(1)

	log.Debug().
		Str("patient_id", patientID).
		Int("subscribers", len(f.subs)).
		Msg("Vitals subscriber attached")

	return sub, f.buf.Snapshot(), nil
}

// startFeed must be called with h.mu held
func (h *Hub) startFeed(patientID string, status patients.Status) *feed {
	ctx, cancel := context.WithCancel(context.Background())
	f := &feed{
		patientID: patientID,
		status:    status,
		buf:       NewBuffer(h.gen, status, h.now(), h.interval),
		subs:      make(map[*Subscription]struct{}),
		cancel:    cancel,
	}
	h.feeds[patientID] = f

	h.wg.Add(1)
	go h.run(ctx, f)

	log.Info().
		Str("patient_id", patientID).
		Str("status", string(status)).
		Dur("interval", h.interval).
		Msg("Vitals feed started")

	return f
}

func (h *Hub) run(ctx context.Context, f *feed) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().
				Str("patient_id", f.patientID).
				Msg("Vitals feed stopped")
			return
		case t := <-ticker.C:
			s := h.gen.Next(f.status, t)
			f.buf.Push(s)
			metrics.RecordVitalsSample(string(f.status))

			h.mu.Lock()
			for sub := range f.subs {
				select {
				case sub.ch <- s:
				default:
					sub.dropped.Add(1)
				}
			}
			h.mu.Unlock()

			h.enqueue(f.patientID, s)
		}
	}
}

// Snapshot returns the window of a running feed, or a freshly backfilled one
func (h *Hub) Snapshot(patientID string, status patients.Status) []Sample {
	h.mu.Lock()
	f, ok := h.feeds[patientID]
	h.mu.Unlock()
	if ok {
		return f.buf.Snapshot()
	}
	return NewBuffer(h.gen, status, h.now(), h.interval).Snapshot()
}

// ActiveFeeds returns the number of running feeds
func (h *Hub) ActiveFeeds() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.feeds)
}

// Close stops every feed, closes all subscriptions, waits for the feed
// goroutines to exit and drains the publish queue
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for id, f := range h.feeds {
		f.cancel()
		for sub := range f.subs {
			h.detach(f, sub)
		}
		delete(h.feeds, id)
	}
	h.mu.Unlock()

	h.wg.Wait()

	close(h.outbox)
	timer := time.NewTimer(publishDrainTimeout)
	defer timer.Stop()
	select {
	case <-h.pubDone:
	case <-timer.C:
		log.Warn().Int("queued", len(h.outbox)).Msg("Publish queue not drained, abandoning queued samples")
		h.cancelPub()
		<-h.pubDone
	}
	h.cancelPub()

	if n := h.pubDropped.Load(); n > 0 {
		log.Warn().Int64("dropped", n).Msg("Vitals samples dropped before publishing")
	}
	h.pub.Close()
}

// unsubscribe must not be called with h.mu held
func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.feeds[sub.PatientID]
	if !ok {
		return
	}
	if _, ok := f.subs[sub]; !ok {
		return
	}
	h.detach(f, sub)

	if len(f.subs) == 0 {
		f.cancel()
		delete(h.feeds, sub.PatientID)
	}
}

// detach must be called with h.mu held
func (h *Hub) detach(f *feed, sub *Subscription) {
	delete(f.subs, sub)
	close(sub.ch)
	metrics.AddFeedSubscribers(-1)

	if n := sub.dropped.Load(); n > 0 {
		log.Debug().
			Str("patient_id", f.patientID).
			Int64("dropped", n).
			Msg("Slow vitals subscriber missed samples")
	}
}

// Samples delivers live samples until the subscription is closed
func (s *Subscription) Samples() <-chan Sample {
	return s.ch
}

// Dropped returns the number of samples missed because the channel was full
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// Close detaches from the feed; the feed stops if this was its last subscriber
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s) })
}
