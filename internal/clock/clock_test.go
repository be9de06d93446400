package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixSeconds(t *testing.T) {
	c := NewManual(time.Unix(1_700_000_000, 500))
	secs, err := UnixSeconds(c)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), secs)

	c.Advance(3 * time.Second)
	secs, err = UnixSeconds(c)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_003), secs)
}

func TestUnixSecondsBeforeEpoch(t *testing.T) {
	c := NewManual(time.Date(1969, 12, 31, 23, 0, 0, 0, time.UTC))
	_, err := UnixSeconds(c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBeforeEpoch))
}

func TestNTPChecker_Phases(t *testing.T) {
	c := NewManual(time.Unix(1_700_000_000, 0))
	n := NewNTPChecker(c, "", time.Minute, time.Second)
	assert.Equal(t, NTPUnchecked, n.Status().Phase)

	n.QueryFunc = func(string) (time.Duration, error) { return 200 * time.Millisecond, nil }
	n.check()
	assert.Equal(t, NTPHealthy, n.Status().Phase)
	assert.False(t, n.Skewed())

	n.QueryFunc = func(string) (time.Duration, error) { return -3 * time.Second, nil }
	n.check()
	assert.Equal(t, NTPSkewed, n.Status().Phase)
	assert.True(t, n.Skewed())

	n.QueryFunc = func(string) (time.Duration, error) { return 0, errors.New("no route") }
	n.check()
	st := n.Status()
	assert.Equal(t, NTPError, st.Phase)
	assert.Equal(t, "no route", st.Error)
	assert.False(t, n.Skewed())
	assert.Equal(t, "error", st.Phase.String())
}
