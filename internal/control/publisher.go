package control

import (
	"sync"

	"brewing_control/internal/models"
)

// Publisher holds the latest snapshot and fans every publish out to its
// subscribers. Each subscriber has a single overwrite slot, so a slow reader
// skips to the newest snapshot and never stalls Publish.
type Publisher struct {
	mu      sync.Mutex
	current models.Snapshot
	subs    map[*Subscription]struct{}
	closed  bool
}

func NewPublisher(initial models.Snapshot) *Publisher {
	return &Publisher{
		current: initial.Clone(),
		subs:    make(map[*Subscription]struct{}),
	}
}

// Publish replaces the held snapshot and offers it to every subscriber.
// Publishes are serialized, so subscribers observe them in call order.
func (p *Publisher) Publish(s models.Snapshot) {
	s = s.Clone()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = s
	for sub := range p.subs {
		sub.offer(s)
	}
}

// Current returns a copy of the held snapshot.
func (p *Publisher) Current() models.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.Clone()
}

// Subscribe registers a subscriber whose channel already holds the current
// snapshot. On a closed publisher the channel is closed after that value.
func (p *Publisher) Subscribe() *Subscription {
	sub := &Subscription{p: p, ch: make(chan models.Snapshot, 1)}

	p.mu.Lock()
	defer p.mu.Unlock()
	sub.ch <- p.current
	if p.closed {
		close(sub.ch)
		sub.done = true
		return sub
	}
	p.subs[sub] = struct{}{}
	return sub
}

// Subscribers reports how many subscriptions are open.
func (p *Publisher) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Close ends every subscription. Later Publish calls only update Current.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for sub := range p.subs {
		sub.done = true
		close(sub.ch)
		delete(p.subs, sub)
	}
}

// Subscription receives snapshots in publish order. Snapshots are shared
// between subscribers and must not be modified.
type Subscription struct {
	p    *Publisher
	ch   chan models.Snapshot
	done bool // guarded by p.mu
}

// C is closed when the subscription or the publisher is closed.
func (s *Subscription) C() <-chan models.Snapshot {
	return s.ch
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	if s.done {
		return
	}
	s.done = true
	delete(s.p.subs, s)
	close(s.ch)
}

// offer overwrites any snapshot the reader has not taken yet. Called with
// p.mu held.
func (s *Subscription) offer(v models.Snapshot) {
	for {
		select {
		case s.ch <- v:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}
