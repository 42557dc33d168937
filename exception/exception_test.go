package exception

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSafeGoRuns(t *testing.T) {
	done := make(chan struct{})
	SafeGo("runs", func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SafeGo did not run fn")
	}
}

func TestSafeGoRecoversPanic(t *testing.T) {
	reached := make(chan struct{})
	SafeGo("panics", func() {
		close(reached)
		panic("boom")
	})

	select {
	case <-reached:
	case <-time.After(time.Second):
		t.Fatal("SafeGo did not run fn")
	}
	// an unrecovered panic would kill the test binary before the next goroutine runs
	after := make(chan struct{})
	SafeGo("after", func() { close(after) })
	require.Eventually(t, func() bool {
		select {
		case <-after:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
