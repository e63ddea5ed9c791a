package ttl

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestPolicy_Unconfigured(t *testing.T) {
	var p Policy
	calls := 0
	refreshed, err := p.Expire(func() error { calls++; return nil })
	assert.NoError(t, err)
	assert.False(t, refreshed)
	assert.Equal(t, 0, calls)
	assert.False(t, p.Configured())
	assert.True(t, p.ExpiresAt().IsZero())
}

func TestPolicy_Fixed(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC)}
	p := NewPolicy(clock.Now)
	p.Configure(Fixed(24 * time.Hour))
	assert.Equal(t, clock.now.Add(24*time.Hour), p.ExpiresAt())

	calls := 0
	refresh := func() error { calls++; return nil }

	refreshed, err := p.Expire(refresh)
	assert.NoError(t, err)
	assert.False(t, refreshed)
	assert.Equal(t, 0, calls)

	clock.Advance(24 * time.Hour)
	refreshed, err = p.Expire(refresh)
	assert.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, 1, calls)
	assert.Equal(t, clock.now.Add(24*time.Hour), p.ExpiresAt())

	refreshed, _ = p.Expire(refresh)
	assert.False(t, refreshed)
	assert.Equal(t, 1, calls)
}

func TestPolicy_FuncIsReResolved(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	p := NewPolicy(clock.Now)

	ttls := []time.Duration{time.Minute, time.Hour}
	resolved := 0
	p.Configure(Func(func() time.Duration {
		d := ttls[resolved%len(ttls)]
		resolved++
		return d
	}))
	assert.Equal(t, clock.now.Add(time.Minute), p.ExpiresAt())

	clock.Advance(time.Minute)
	refreshed, err := p.Expire(func() error { return nil })
	assert.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, clock.now.Add(time.Hour), p.ExpiresAt())
	assert.Equal(t, 2, resolved)
}

func TestPolicy_FailedRefreshKeepsExpiration(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	p := NewPolicy(clock.Now)
	p.Configure(Fixed(time.Second))
	clock.Advance(time.Second)
	expiresAt := p.ExpiresAt()

	boom := errors.New("boom")
	refreshed, err := p.Expire(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, refreshed)
	assert.Equal(t, expiresAt, p.ExpiresAt())
	assert.True(t, p.Due())
}

func TestPolicy_ConfigureNilDisables(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	p := NewPolicy(clock.Now)
	p.Configure(Fixed(0))
	assert.True(t, p.Due())

	p.Configure(nil)
	assert.False(t, p.Due())
	assert.False(t, p.Configured())
}
