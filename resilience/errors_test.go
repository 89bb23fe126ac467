package resilience

import (
	"errors"
	"strings"
	"testing"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	sentinels := []error{
		ErrCircuitOpen,
		ErrBulkheadFull,
		ErrBulkheadTimeout,
		ErrMaxRetriesExceeded,
		ErrRateLimitExceeded,
		ErrTimeout,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v matches %v, want distinct", a, b)
			}
		}
	}
}

func TestMaxRetriesError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &MaxRetriesError{Retries: 3, LastErr: cause}

	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Error("MaxRetriesError should match ErrMaxRetriesExceeded")
	}
	if !errors.Is(err, cause) {
		t.Error("MaxRetriesError should match its underlying cause")
	}

	var mre *MaxRetriesError
	if !errors.As(err, &mre) {
		t.Fatal("errors.As should find *MaxRetriesError")
	}
	if mre.Retries != 3 {
		t.Errorf("Retries = %d, want 3", mre.Retries)
	}

	msg := err.Error()
	if !strings.Contains(msg, "3") || !strings.Contains(msg, "connection refused") {
		t.Errorf("Error() = %q, want retry count and cause in message", msg)
	}
}
