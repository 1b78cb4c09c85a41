package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	sp := newSpinner("working")
	sp.Start()
	time.Sleep(2 * spinnerInterval)
	sp.Stop()

	// A second Stop must not panic or block.
	sp.Stop()
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sp := newSpinnerWithContext(ctx, "connecting")
	sp.Start()
	cancel()
	sp.Stop()

	if !sp.Cancelled() {
		t.Error("Cancelled should report the context cancellation")
	}
}
