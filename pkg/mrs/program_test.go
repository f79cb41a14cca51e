package mrs

import (
	"testing"
	"time"
)

// TestWaitForeverMapsUnsetTimeoutToNegativeSentinel is the regression test
// for the bug where MapReduceProgram.Run passed an unset (zero-value)
// Timeout straight through to Job.Wait: the scheduler treats timeout==0 as
// "return immediately with whatever is already complete" (spec.md §8),
// so a CLI job with no Timeout configured never actually blocked for its
// reduce dataset to finish.
func TestWaitForeverMapsUnsetTimeoutToNegativeSentinel(t *testing.T) {
	if got := waitForever(0); got >= 0 {
		t.Fatalf("waitForever(0) = %v, want a negative (wait forever) sentinel", got)
	}
}

func TestWaitForeverPreservesPositiveBound(t *testing.T) {
	if got := waitForever(5 * time.Second); got != 5*time.Second {
		t.Fatalf("waitForever(5s) = %v, want 5s unchanged", got)
	}
}

func TestWaitForeverPreservesNegativeSentinel(t *testing.T) {
	if got := waitForever(-1); got != -1 {
		t.Fatalf("waitForever(-1) = %v, want -1 unchanged", got)
	}
}
