package brain

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies why a prediction could not be fetched.
type Kind int

const (
	// KindTransport covers connection failures, timeouts and cancellations.
	KindTransport Kind = iota
	// KindStatus means the brain answered with a non-2xx status.
	KindStatus
	// KindPayload means the brain answered 2xx but the body was not usable JSON.
	KindPayload
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindPayload:
		return "payload"
	default:
		return "unknown"
	}
}

// UpstreamError is returned by Client.Predict for every failure.
type UpstreamError struct {
	Kind    Kind
	MatchID string
	Status  int // only set for KindStatus
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("brain predict %q: status %d: %v", e.MatchID, e.Status, e.Err)
	}
	return fmt.Sprintf("brain predict %q: %s: %v", e.MatchID, e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call gave up waiting on the brain.
func (e *UpstreamError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}
