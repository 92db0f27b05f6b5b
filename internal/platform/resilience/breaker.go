// Package resilience guards remote providers against hammering a backend
// that is already failing or throttling us.
package resilience

import (
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var ErrProviderSuspended = crerr.New("provider suspended after repeated failures")

// Breaker suspends requests to a provider once consecutive failures reach
// a threshold, then lets a single probe through per cooldown window.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	cooldown         time.Duration

	failures    int
	suspendedAt time.Time
	probing     bool
	now         func() time.Time
}

func NewBreaker(failureThreshold int, cooldown time.Duration) *Breaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if cooldown <= 0 {
		cooldown = 10 * time.Second
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		now:              time.Now,
	}
}

// Allow reports whether a request may proceed. During a suspension only
// one probe request is admitted per cooldown window.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.failureThreshold {
		return nil
	}

	if b.now().Sub(b.suspendedAt) < b.cooldown {
		return ErrProviderSuspended
	}
	if b.probing {
		return ErrProviderSuspended
	}
	b.probing = true
	return nil
}

// ReportSuccess closes the breaker.
func (b *Breaker) ReportSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.probing = false
}

// ReportFailure counts a failure and starts (or extends) the suspension
// once the threshold is reached.
func (b *Breaker) ReportFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.probing = false
	if b.failures >= b.failureThreshold {
		b.suspendedAt = b.now()
	}
}

// Suspended reports whether the breaker currently rejects requests.
func (b *Breaker) Suspended() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.failures >= b.failureThreshold && b.now().Sub(b.suspendedAt) < b.cooldown
}
