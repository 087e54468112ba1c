package models

import "time"

// SystemStatus 边缘节点运行状态（GET /api/system/status）
// 本客户端只透传字段，不解释内容
type SystemStatus struct {
	DeviceID         string     `json:"device_id"`
	UptimeSeconds    float64    `json:"uptime_seconds"`
	DatabaseSizeMB   float64    `json:"database_size_mb"`
	TotalReadings    int        `json:"total_readings"`
	UnsyncedReadings int        `json:"unsynced_readings"`
	LastSync         *time.Time `json:"last_sync"`
	LastSyncStatus   *string    `json:"last_sync_status"`
	SensorStatus     string     `json:"sensor_status"`
	MockMode         bool       `json:"mock_mode"`
}

// SyncResult 手动同步结果（POST /api/system/sync）
type SyncResult struct {
	Status      string  `json:"status"`
	RecordsSent int     `json:"records_sent"`
	DurationMS  int     `json:"duration_ms"`
	Error       *string `json:"error,omitempty"`
}
