package ttl

import (
	"sync"
	"time"
)

// Source resolves how long rates stay fresh. It is consulted again every time the policy re-arms.
type Source interface {
	TTL() time.Duration
}

// Fixed a constant time-to-live
type Fixed time.Duration

func (f Fixed) TTL() time.Duration {
	return time.Duration(f)
}

// Func a time-to-live computed on demand
type Func func() time.Duration

func (f Func) TTL() time.Duration {
	return f()
}

// Policy tracks when the latest rates expire. The zero value is unconfigured and never expires.
// Policy is concurrency safe.
type Policy struct {
	lock      sync.Mutex
	source    Source
	expiresAt time.Time
	now       func() time.Time
}

// NewPolicy returns an unconfigured Policy reading time from now (time.Now when nil).
func NewPolicy(now func() time.Time) *Policy {
	return &Policy{now: now}
}

func (p *Policy) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}

// Configure stores source and arms the expiration from now. A nil source disables expiry.
func (p *Policy) Configure(source Source) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.source = source
	p.rearm()
}

func (p *Policy) rearm() {
	if p.source == nil {
		p.expiresAt = time.Time{}
		return
	}
	p.expiresAt = p.clock().Add(p.source.TTL())
}

// Configured reports whether a TTL is set.
func (p *Policy) Configured() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.source != nil
}

// ExpiresAt the moment rates become stale, zero when unconfigured.
func (p *Policy) ExpiresAt() time.Time {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.expiresAt
}

// Due reports whether a refresh is owed.
func (p *Policy) Due() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.source != nil && !p.clock().Before(p.expiresAt)
}

// Expire calls refresh when the rates are due and then re-arms the expiration,
// re-resolving the source. It reports whether refresh ran successfully.
// refresh runs without the policy lock held; when it fails the expiration is left
// untouched so the next caller tries again.
func (p *Policy) Expire(refresh func() error) (bool, error) {
	if !p.Due() {
		return false, nil
	}
	if err := refresh(); err != nil {
		return false, err
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.rearm()
	return true, nil
}
