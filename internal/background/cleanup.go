package background

import (
	"context"
	"log/slog"
	"time"
)

// ResetTokenSweeper clears password reset tokens that are past their expiry
type ResetTokenSweeper interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// CleanupManager periodically removes expired password reset tokens
type CleanupManager struct {
	accounts ResetTokenSweeper
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
	now      func() time.Time
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	accounts ResetTokenSweeper,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		accounts: accounts,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := cm.accounts.ClearExpiredResetTokens(cleanupCtx, cm.now().UTC())
	if err != nil {
		cm.logger.Error("failed to clear expired reset tokens", slog.Any("error", err))
		return
	}

	if rows > 0 {
		cm.logger.Info("expired reset tokens cleared", slog.Int64("rows", rows))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
