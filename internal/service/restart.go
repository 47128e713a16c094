package service

import "sync"

// restartPolicy tracks consecutive transport exceptions and decides when
// the whole session must be re-created. This is a circuit breaker against a
// systemically broken connection (expired token, server outage), not a
// per-call retry: there is no backoff between restarts, the threshold acts
// as a debounce gate only. A zero threshold disables restarts.
type restartPolicy struct {
	mu        sync.Mutex
	threshold int
	count     int
}

func newRestartPolicy(threshold int) *restartPolicy {
	return &restartPolicy{threshold: threshold}
}

// RecordFailure counts one transport exception. It returns true when the
// failure pushes the counter past the threshold; the caller must then
// re-create the session instead of incrementing further.
func (p *restartPolicy) RecordFailure() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.threshold > 0 && p.count+1 > p.threshold {
		return true
	}

	p.count++
	return false
}

// Reset clears the counter. Only session re-creation resets it.
func (p *restartPolicy) Reset() {
	p.mu.Lock()
	p.count = 0
	p.mu.Unlock()
}

// Count returns the current consecutive exception count
func (p *restartPolicy) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
