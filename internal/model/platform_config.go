package model

import "time"

// PlatformConfig is the singleton operational row for the whole platform.
// DailyVolumeLimit of zero means unlimited. Volume24h accumulates within a
// rolling window anchored at LastVolumeReset.
type PlatformConfig struct {
	EmergencyPause     bool      `json:"emergency_pause" db:"emergency_pause"`
	DailyVolumeLimit   int64     `json:"daily_volume_limit" db:"daily_volume_limit"`
	Volume24h          int64     `json:"volume_24h" db:"volume_24h"`
	LastVolumeReset    time.Time `json:"last_volume_reset" db:"last_volume_reset"`
	TotalSubscriptions int64     `json:"total_subscriptions" db:"total_subscriptions"`
	TotalExecutions    int64     `json:"total_executions" db:"total_executions"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
