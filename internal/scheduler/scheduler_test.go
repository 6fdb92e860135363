package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var epoch = time.Date(2025, 9, 19, 8, 0, 0, 0, time.UTC)

func TestManualClockFiresInDeadlineOrder(t *testing.T) {
	clock := NewManualClock(epoch)
	var order []string
	var firedAt []time.Time

	clock.AfterFunc(2*time.Minute, func() {
		order = append(order, "late")
		firedAt = append(firedAt, clock.Now())
	})
	clock.AfterFunc(30*time.Second, func() {
		order = append(order, "early")
		firedAt = append(firedAt, clock.Now())
	})

	clock.Advance(time.Minute)
	assert.Equal(t, []string{"early"}, order)
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(time.Hour)
	assert.Equal(t, []string{"early", "late"}, order)
	assert.Equal(t, epoch.Add(30*time.Second), firedAt[0])
	assert.Equal(t, epoch.Add(2*time.Minute), firedAt[1])
	assert.Equal(t, epoch.Add(61*time.Minute), clock.Now())
}

func TestManualClockChainedTimersFireWithinWindow(t *testing.T) {
	clock := NewManualClock(epoch)
	var fired int
	clock.AfterFunc(time.Second, func() {
		fired++
		clock.AfterFunc(time.Second, func() { fired++ })
	})

	clock.Advance(5 * time.Second)
	assert.Equal(t, 2, fired)
}

func TestManualTimerStop(t *testing.T) {
	clock := NewManualClock(epoch)
	timer := clock.AfterFunc(time.Second, func() { t.Fatal("stopped timer fired") })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	clock.Advance(time.Minute)
}

func TestSchedulerRunsAndForgetsTasks(t *testing.T) {
	clock := NewManualClock(epoch)
	s := New(clock, zap.NewNop(), nil)

	var runs int32
	task := s.Schedule("to-in-progress", 35*time.Second, func() { atomic.AddInt32(&runs, 1) })
	require.NotNil(t, task)
	assert.Equal(t, "to-in-progress", task.Name())
	assert.Equal(t, 1, s.Pending())

	clock.Advance(35 * time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
	assert.Equal(t, 0, s.Pending())
	assert.False(t, task.Cancel(), "fired tasks cannot be cancelled")
}

func TestSchedulerCancel(t *testing.T) {
	clock := NewManualClock(epoch)
	s := New(clock, zap.NewNop(), nil)

	task := s.Schedule("resolve", time.Minute, func() { t.Fatal("cancelled task ran") })
	assert.True(t, task.Cancel())
	assert.False(t, task.Cancel())
	assert.Equal(t, 0, clock.Pending())

	clock.Advance(time.Hour)
}

func TestSchedulerStopCancelsEverything(t *testing.T) {
	clock := NewManualClock(epoch)
	s := New(clock, zap.NewNop(), nil)

	for i := 0; i < 3; i++ {
		s.Schedule("task", time.Duration(i+1)*time.Second, func() { t.Fatal("task ran after stop") })
	}
	s.Stop()

	assert.Equal(t, 0, s.Pending())
	assert.Nil(t, s.Schedule("late", time.Second, func() {}))
	clock.Advance(time.Minute)
}

func TestSchedulerRecoversPanics(t *testing.T) {
	clock := NewManualClock(epoch)
	s := New(clock, zap.NewNop(), nil)
	s.Schedule("boom", time.Second, func() { panic("boom") })

	assert.NotPanics(t, func() { clock.Advance(time.Second) })
}

func TestSchedulerOnSystemClock(t *testing.T) {
	s := New(nil, nil, nil)
	done := make(chan struct{})
	s.Schedule("quick", time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not fire")
	}
}
