// Package publisher implements the topic-keyed outbound queue of
// spec.md §4.8, backed by Redis PUBLISH (one Redis channel per topic).
// Topics: config/{account}, trade/{master}/{slave}, config/global.
package publisher

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aristath/tradecopy-relay/internal/domain"
	"github.com/aristath/tradecopy-relay/internal/wire"
)

// Topic name builders, spec.md §4.8.
func ConfigTopic(account domain.Account) string { return fmt.Sprintf("config/%s", account) }
func TradeTopic(master, slave domain.Account) string {
	return fmt.Sprintf("trade/%s/%s", master, slave)
}
func GlobalConfigTopic() string { return "config/global" }

// job is one queued (topic, payload) publish.
type job struct {
	topic   string
	payload interface{}
}

// Publisher is a bounded, single-writer outbound queue draining into
// Redis PUBLISH. Enqueue never blocks: a full queue returns
// domain.ErrPublisherBackpressure immediately rather than stalling the
// handler goroutine that produced the message (spec.md §5, §7).
type Publisher struct {
	client *redis.Client
	log    zerolog.Logger
	queue  chan job

	mu     sync.Mutex
	closed bool
	stop   chan struct{}
	done   chan struct{}
}

// Config configures queue depth. QueueCapacity <= 0 defaults to 256.
type Config struct {
	QueueCapacity int
}

// New returns a Publisher draining into client. Call Run in its own
// goroutine to start the drain loop.
func New(client *redis.Client, log zerolog.Logger, cfg Config) *Publisher {
	capacity := cfg.QueueCapacity
	if capacity <= 0 {
		capacity = 256
	}
	return &Publisher{
		client: client,
		log:    log.With().Str("component", "publisher").Logger(),
		queue:  make(chan job, capacity),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Enqueue encodes payload to MessagePack (wire.Encode) and queues it for
// publish on topic. Returns domain.ErrPublisherBackpressure if the queue
// is full, or an error from wire.Encode if payload cannot be encoded.
// Safe to call from any number of goroutines.
func (p *Publisher) Enqueue(topic string, payload interface{}) error {
	data, err := wire.Encode(payload)
	if err != nil {
		return fmt.Errorf("publisher: marshal %s: %w", topic, err)
	}

	select {
	case <-p.stop:
		return domain.ErrPublisherBackpressure
	default:
	}

	select {
	case p.queue <- job{topic: topic, payload: data}:
		return nil
	case <-p.stop:
		return domain.ErrPublisherBackpressure
	default:
		p.log.Warn().Str("topic", topic).Msg("queue full, dropping publish")
		return domain.ErrPublisherBackpressure
	}
}

// Run drains the queue into Redis PUBLISH until ctx is cancelled or
// Close is called. It blocks; run it in its own goroutine.
func (p *Publisher) Run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case j := <-p.queue:
			p.publish(ctx, j)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, j job) {
	raw, ok := j.payload.([]byte)
	if !ok {
		return
	}
	if err := p.client.Publish(ctx, j.topic, raw).Err(); err != nil {
		p.log.Error().Err(err).Str("topic", j.topic).Msg("redis publish failed")
	}
}

// Close stops accepting new work, stops Run and waits for it to exit.
// Jobs still queued that Run has not yet taken are not published. It does
// not cancel Run's context; callers typically cancel ctx and then call
// Close to wait for the drain loop to exit.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.stop)
	p.mu.Unlock()
	<-p.done
}
