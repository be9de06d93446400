// Package redisbridge talks to sensor and relay daemons over Redis.
//
// Sensor daemons keep the latest reading of zone N in the key
//
//	<prefix>temp.<N>
//
// and relay daemons subscribe to
//
//	<prefix>relay.<pin>
//
// firing one debounced pulse per "pulse" message.
package redisbridge

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const pulsePayload = "pulse"

// ErrMissingReading is returned when a zone key has no value yet.
var ErrMissingReading = errors.New("redisbridge: missing temperature reading")

// client is the subset of *redis.Client the bridge uses.
type client interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Bridge implements peripheral.Peripheral on top of Redis.
type Bridge struct {
	client client
	prefix string
	keys   []string
}

// New builds a bridge reading `zones` temperature keys.
func New(c *redis.Client, prefix string, zones int) *Bridge {
	return newBridge(c, prefix, zones)
}

func newBridge(c client, prefix string, zones int) *Bridge {
	keys := make([]string, zones)
	for i := range keys {
		keys[i] = prefix + "temp." + strconv.Itoa(i)
	}
	return &Bridge{client: c, prefix: prefix, keys: keys}
}

// ReadTemperatures fetches all zone readings in one round trip.
func (b *Bridge) ReadTemperatures(ctx context.Context) ([]float64, error) {
	vals, err := b.client.MGet(ctx, b.keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redisbridge: mget temperatures: %w", err)
	}
	if len(vals) != len(b.keys) {
		return nil, fmt.Errorf("redisbridge: got %d readings for %d zones", len(vals), len(b.keys))
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingReading, b.keys[i])
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("redisbridge: parse %s=%q: %w", b.keys[i], s, err)
		}
		out[i] = f
	}
	return out, nil
}

// TriggerActuator publishes a pulse request for pin. It returns an error if
// no relay daemon is listening, since the pulse would otherwise be lost.
func (b *Bridge) TriggerActuator(ctx context.Context, pin int) error {
	channel := b.prefix + "relay." + strconv.Itoa(pin)
	receivers, err := b.client.Publish(ctx, channel, pulsePayload).Result()
	if err != nil {
		return fmt.Errorf("redisbridge: publish %s: %w", channel, err)
	}
	if receivers == 0 {
		return fmt.Errorf("redisbridge: no relay daemon subscribed to %s", channel)
	}
	return nil
}
