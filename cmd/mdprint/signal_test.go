package main

// Notes:
// - notifyContext: we test cancellation via stop() and parent propagation.
//   Actual OS signal delivery is not tested.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"testing"
)

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("stop cancels", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		if ctx.Err() != nil {
			t.Fatal("context canceled before stop()")
		}
		stop()
		<-ctx.Done()
	})

	t.Run("parent cancellation propagates", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent)
		defer stop()

		cancel()
		<-ctx.Done()
	})
}
