package auth

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig holds configuration for the failed-login delay
type TimingConfig struct {
	BaseDelay   time.Duration // minimum time a failed attempt takes
	RandomDelay time.Duration // extra random delay range
}

// TimingDelay pads failed logins so "unknown account" and "wrong password"
// take about the same time
type TimingDelay struct {
	config TimingConfig
}

func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{
		config: config,
	}
}

// cryptoRandDuration returns a random duration in [0, max)
func cryptoRandDuration(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return 0
	}

	return time.Duration(binary.BigEndian.Uint64(randomBytes) % uint64(max))
}

// WaitFrom sleeps until at least BaseDelay plus a random jitter has elapsed
// since start. Successful attempts return immediately. The wait ends early
// when ctx is done.
func (td *TimingDelay) WaitFrom(ctx context.Context, start time.Time, success bool) {
	if td == nil || success {
		return
	}

	target := td.config.BaseDelay + cryptoRandDuration(td.config.RandomDelay)
	remaining := target - time.Since(start)
	if remaining <= 0 {
		return
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
