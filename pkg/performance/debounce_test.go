package performance

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebounce_CoalescesBurst(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Debounce("note-1", func() { calls.Add(1) })
	}

	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 10*time.Millisecond)

	// No further executions after the burst settles.
	time.Sleep(60 * time.Millisecond)
	require.EqualValues(t, 1, calls.Load())
}

func TestDebounce_KeysAreIndependent(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Debounce("note-1", func() { calls.Add(1) })
	d.Debounce("note-2", func() { calls.Add(1) })

	require.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestSetDuration_AppliesToSubsequentCalls(t *testing.T) {
	d := NewDebouncer(10 * time.Second)
	d.SetDuration(20 * time.Millisecond)

	var calls atomic.Int32
	d.Debounce("note-1", func() { calls.Add(1) })

	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Debounce("note-1", func() { calls.Add(1) })
	d.Cancel("note-1")

	time.Sleep(60 * time.Millisecond)
	require.Zero(t, calls.Load())
}

func TestClear(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Debounce("note-1", func() { calls.Add(1) })
	d.Debounce("note-2", func() { calls.Add(1) })
	d.Clear()

	time.Sleep(60 * time.Millisecond)
	require.Zero(t, calls.Load())
}
