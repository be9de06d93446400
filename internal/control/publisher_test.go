package control

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewing_control/internal/models"
)

func snap(seq uint64) models.Snapshot {
	return models.Snapshot{Seq: seq}
}

func TestPublisher_LateSubscriberGetsCurrent(t *testing.T) {
	p := NewPublisher(snap(0))
	for i := uint64(1); i <= 5; i++ {
		p.Publish(snap(i))
	}

	sub := p.Subscribe()
	defer sub.Close()
	got := <-sub.C()
	assert.Equal(t, uint64(5), got.Seq)

	p.Publish(snap(6))
	got = <-sub.C()
	assert.Equal(t, uint64(6), got.Seq)
}

func TestPublisher_SlowSubscriberSeesLatest(t *testing.T) {
	p := NewPublisher(snap(0))
	sub := p.Subscribe()
	defer sub.Close()

	for i := uint64(1); i <= 10; i++ {
		p.Publish(snap(i))
	}
	got := <-sub.C()
	assert.Equal(t, uint64(10), got.Seq)
	select {
	case s := <-sub.C():
		t.Fatalf("unexpected extra snapshot %d", s.Seq)
	default:
	}
}

func TestPublisher_OrderIsMonotonic(t *testing.T) {
	p := NewPublisher(snap(0))
	subs := []*Subscription{p.Subscribe(), p.Subscribe(), p.Subscribe()}

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub *Subscription) {
			defer wg.Done()
			var last uint64
			first := true
			for s := range sub.C() {
				if !first {
					assert.Greater(t, s.Seq, last)
				}
				first = false
				last = s.Seq
			}
			assert.Equal(t, uint64(1000), last)
		}(sub)
	}

	for i := uint64(1); i <= 1000; i++ {
		p.Publish(snap(i))
	}
	p.Close()
	wg.Wait()
}

func TestPublisher_SnapshotsAreCopies(t *testing.T) {
	p := NewPublisher(snap(0))
	s := models.Snapshot{Seq: 1, Actuators: []bool{true}}
	p.Publish(s)
	s.Actuators[0] = false

	assert.True(t, p.Current().Actuators[0])
	cur := p.Current()
	cur.Actuators[0] = false
	assert.True(t, p.Current().Actuators[0])
}

func TestPublisher_Close(t *testing.T) {
	p := NewPublisher(snap(0))
	sub := p.Subscribe()
	require.Equal(t, 1, p.Subscribers())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, p.Subscribers())
	<-sub.C()
	_, ok := <-sub.C()
	assert.False(t, ok)

	p.Publish(snap(3))
	p.Close()
	late := p.Subscribe()
	got, ok := <-late.C()
	require.True(t, ok)
	assert.Equal(t, uint64(3), got.Seq)
	_, ok = <-late.C()
	assert.False(t, ok)
	late.Close()
}
