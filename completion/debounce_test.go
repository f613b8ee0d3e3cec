package completion_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rlch/nqls/completion"
)

const testDelay = 30 * time.Millisecond

func TestDebouncer_CoalescesBursts(t *testing.T) {
	t.Parallel()

	var fired atomic.Int32

	d := completion.NewDebouncer(testDelay, func() { fired.Add(1) })

	for range 5 {
		d.Trigger()
		time.Sleep(testDelay / 5)
	}

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	// No stray second fire.
	time.Sleep(3 * testDelay)
	assert.Equal(t, int32(1), fired.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	t.Parallel()

	var fired atomic.Int32

	d := completion.NewDebouncer(testDelay, func() { fired.Add(1) })

	assert.False(t, d.Stop(), "nothing pending")

	d.Trigger()
	assert.True(t, d.Stop())

	time.Sleep(3 * testDelay)
	assert.Zero(t, fired.Load())
}

func TestRetrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		open     bool
		wantFire int32
	}{
		{name: "popup open", open: true, wantFire: 1},
		{name: "popup closed", open: false, wantFire: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				fired  atomic.Int32
				checks atomic.Int32
			)

			r := completion.NewRetrigger(testDelay, func() bool {
				checks.Add(1)

				return tt.open
			}, func() { fired.Add(1) })

			r.TextChanged()
			r.TextChanged()
			r.TextChanged()

			assert.Eventually(t, func() bool { return checks.Load() == 1 }, time.Second, 5*time.Millisecond)

			time.Sleep(2 * testDelay)
			assert.Equal(t, tt.wantFire, fired.Load())
			assert.Equal(t, int32(1), checks.Load())
		})
	}
}

func TestRetrigger_ChecksPopupAtFireTime(t *testing.T) {
	t.Parallel()

	var (
		open  atomic.Bool
		fired atomic.Int32
	)

	open.Store(true)

	r := completion.NewRetrigger(testDelay, open.Load, func() { fired.Add(1) })

	r.TextChanged()
	open.Store(false)

	time.Sleep(3 * testDelay)
	assert.Zero(t, fired.Load(), "popup closed before the timer fired")
}

func TestRetrigger_Stop(t *testing.T) {
	t.Parallel()

	var fired atomic.Int32

	r := completion.NewRetrigger(testDelay, func() bool { return true }, func() { fired.Add(1) })

	r.TextChanged()
	r.Stop()

	time.Sleep(3 * testDelay)
	assert.Zero(t, fired.Load())
}
