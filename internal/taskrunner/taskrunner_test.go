package taskrunner

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipcap/internal/types"
	"clipcap/log"
)

func init() {
	log.InitLogger()
}

func payload(id string) CaptionTaskPayload {
	return CaptionTaskPayload{
		TaskID: id,
		Params: types.GenerateCaptionsParams{InputVideo: "/videos/" + id + ".mp4"},
	}
}

func TestRunnerProcessesSubmittedTasks(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	done := make(chan struct{}, 8)

	r := New(func(taskId string, params types.GenerateCaptionsParams) error {
		mu.Lock()
		seen = append(seen, taskId)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, DefaultConfig())
	defer r.Close()

	require.NoError(t, r.SubmitCaptionTask(payload("a")))
	require.NoError(t, r.SubmitCaptionTask(payload("b")))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("task never processed")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b"}, seen)
}

func TestRunnerBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	block := make(chan struct{})

	r := New(func(string, types.GenerateCaptionsParams) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-block
		inFlight.Add(-1)
		return nil
	}, Config{QueueSize: 16, Concurrency: 2})

	for i := 0; i < 6; i++ {
		require.NoError(t, r.SubmitCaptionTask(payload("t")))
	}

	// give the workers a moment to drain what they can
	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, peak.Load(), int32(2))

	close(block)
	r.Close()
}

func TestRunnerRejectsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})

	r := New(func(string, types.GenerateCaptionsParams) error {
		<-block
		return nil
	}, Config{QueueSize: 1, Concurrency: 1})
	defer r.Close()
	defer close(block)

	// first fills the worker, second fills the queue slot
	require.NoError(t, r.SubmitCaptionTask(payload("a")))
	require.Eventually(t, func() bool {
		return r.SubmitCaptionTask(payload("b")) == nil
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, r.SubmitCaptionTask(payload("c")), ErrQueueFull)
}

func TestRunnerRejectsAfterClose(t *testing.T) {
	r := New(func(string, types.GenerateCaptionsParams) error { return nil }, DefaultConfig())
	r.Close()
	assert.ErrorIs(t, r.SubmitCaptionTask(payload("a")), ErrRunnerStopped)
}

func TestSubmitRequiresInputVideo(t *testing.T) {
	r := New(func(string, types.GenerateCaptionsParams) error { return nil }, DefaultConfig())
	defer r.Close()
	assert.Error(t, r.SubmitCaptionTask(CaptionTaskPayload{TaskID: "x"}))
}
