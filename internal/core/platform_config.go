package core

import (
	"context"
	"fmt"

	"github.com/lutrii/payments/internal/model"
)

const platformConfigColumns = `emergency_pause, daily_volume_limit, volume_24h, last_volume_reset, total_subscriptions, total_executions, updated_at`

// PlatformConfigService exposes the singleton operational row: the
// emergency pause switch, the daily volume limit, and platform-wide stats.
type PlatformConfigService struct {
	db DB
}

func NewPlatformConfigService(db DB) *PlatformConfigService {
	return &PlatformConfigService{db: db}
}

func (s *PlatformConfigService) Get(ctx context.Context) (*model.PlatformConfig, error) {
	var pc model.PlatformConfig
	err := s.db.QueryRow(ctx,
		`SELECT `+platformConfigColumns+` FROM platform_config WHERE id = 1`,
	).Scan(&pc.EmergencyPause, &pc.DailyVolumeLimit, &pc.Volume24h, &pc.LastVolumeReset,
		&pc.TotalSubscriptions, &pc.TotalExecutions, &pc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get platform config: %w", err)
	}
	return &pc, nil
}

// SetEmergencyPause flips the platform-wide kill switch. While set, every
// execution attempt fails validation before any balance moves.
func (s *PlatformConfigService) SetEmergencyPause(ctx context.Context, paused bool) error {
	_, err := s.db.Exec(ctx,
		`UPDATE platform_config SET emergency_pause = $1, updated_at = now() WHERE id = 1`,
		paused,
	)
	if err != nil {
		return fmt.Errorf("set emergency pause %t: %w", paused, err)
	}
	return nil
}

// SetDailyVolumeLimit sets the rolling 24h volume cap; zero disables it.
func (s *PlatformConfigService) SetDailyVolumeLimit(ctx context.Context, limit int64) error {
	if limit < 0 {
		return fmt.Errorf("set daily volume limit: negative limit %d", limit)
	}
	_, err := s.db.Exec(ctx,
		`UPDATE platform_config SET daily_volume_limit = $1, updated_at = now() WHERE id = 1`,
		limit,
	)
	if err != nil {
		return fmt.Errorf("set daily volume limit %d: %w", limit, err)
	}
	return nil
}

// lockPlatformConfig takes the row lock the executor holds while checking
// the pause switch and accounting volume.
func lockPlatformConfig(ctx context.Context, q DB) (*model.PlatformConfig, error) {
	var pc model.PlatformConfig
	err := q.QueryRow(ctx,
		`SELECT `+platformConfigColumns+` FROM platform_config WHERE id = 1 FOR UPDATE`,
	).Scan(&pc.EmergencyPause, &pc.DailyVolumeLimit, &pc.Volume24h, &pc.LastVolumeReset,
		&pc.TotalSubscriptions, &pc.TotalExecutions, &pc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("lock platform config: %w", err)
	}
	return &pc, nil
}
