package clock

import (
	"context"
	"sync"
	"time"

	"github.com/beevik/ntp"
)

const (
	defaultNTPPool      = "pool.ntp.org"
	defaultNTPInterval  = 5 * time.Minute
	defaultNTPThreshold = 2 * time.Second
)

type NTPPhase uint8

const (
	NTPUnchecked NTPPhase = iota + 1
	NTPHealthy
	NTPSkewed
	NTPError
)

func (p NTPPhase) String() string {
	switch p {
	case NTPUnchecked:
		return "unchecked"
	case NTPHealthy:
		return "healthy"
	case NTPSkewed:
		return "skewed"
	case NTPError:
		return "error"
	default:
		return "unknown"
	}
}

type NTPStatus struct {
	Offset    time.Duration
	Phase     NTPPhase
	Error     string
	CheckedAt time.Time
}

// NTPChecker periodically compares the local clock against an NTP pool.
// An unreachable pool is not treated as skew; a rig may run offline.
type NTPChecker struct {
	mu        sync.RWMutex
	status    NTPStatus
	pool      string
	interval  time.Duration
	threshold time.Duration
	clock     Clock

	// QueryFunc replaces the network query in tests.
	QueryFunc func(pool string) (time.Duration, error)
}

func NewNTPChecker(c Clock, pool string, interval, threshold time.Duration) *NTPChecker {
	if pool == "" {
		pool = defaultNTPPool
	}
	if interval <= 0 {
		interval = defaultNTPInterval
	}
	if threshold <= 0 {
		threshold = defaultNTPThreshold
	}
	return &NTPChecker{
		pool:      pool,
		interval:  interval,
		threshold: threshold,
		clock:     c,
		status:    NTPStatus{Phase: NTPUnchecked},
	}
}

func (n *NTPChecker) Run(ctx context.Context) {
	n.check()

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.check()
		}
	}
}

func (n *NTPChecker) check() {
	query := n.QueryFunc
	if query == nil {
		query = queryOffset
	}
	offset, err := query(n.pool)

	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.clock.Now()
	if err != nil {
		n.status = NTPStatus{Error: err.Error(), Phase: NTPError, CheckedAt: now}
		return
	}
	phase := NTPSkewed
	if offset.Abs() < n.threshold {
		phase = NTPHealthy
	}
	n.status = NTPStatus{Offset: offset, Phase: phase, CheckedAt: now}
}

func (n *NTPChecker) Status() NTPStatus {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.status
}

// Skewed reports whether the last successful check exceeded the threshold.
func (n *NTPChecker) Skewed() bool {
	return n.Status().Phase == NTPSkewed
}

func queryOffset(pool string) (time.Duration, error) {
	resp, err := ntp.Query(pool)
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}
