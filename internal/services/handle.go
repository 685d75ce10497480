package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const (
	maxHandleBaseLen = 16
	fallbackHandle   = "user"
)

// HandleChecker reports whether a handle is already taken
type HandleChecker interface {
	HandleExists(ctx context.Context, handle string) (bool, error)
}

// DeriveHandleBase turns an email address into a handle stem: the local
// part with any +tag dropped, lowercased, restricted to [a-z0-9_-], with
// trailing digits trimmed so the stem never collides with a counter suffix.
func DeriveHandleBase(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local, _, _ = strings.Cut(local, "+")
	local = strings.ToLower(local)

	var b strings.Builder
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}

	base := strings.TrimRight(b.String(), "0123456789")
	if len(base) > maxHandleBaseLen {
		base = base[:maxHandleBaseLen]
	}
	if base == "" {
		return fallbackHandle
	}
	return base
}

// nextAvailableHandle returns base if free, otherwise the first of base1,
// base2, ... that is free, starting at start
func nextAvailableHandle(ctx context.Context, checker HandleChecker, base string, start int) (string, int, error) {
	if start <= 0 {
		exists, err := checker.HandleExists(ctx, base)
		if err != nil {
			return "", 0, fmt.Errorf("failed to check handle: %w", err)
		}
		if !exists {
			return base, 0, nil
		}
		start = 1
	}

	for counter := start; ; counter++ {
		candidate := base + strconv.Itoa(counter)
		exists, err := checker.HandleExists(ctx, candidate)
		if err != nil {
			return "", 0, fmt.Errorf("failed to check handle: %w", err)
		}
		if !exists {
			return candidate, counter, nil
		}
	}
}
