package models

import "time"

// StatusLogEntry is one status-change event as returned by the Tuya
// report-logs endpoint. EventTime is epoch milliseconds, UTC. Value is
// whatever JSON value the vendor reports for the code (string or number).
// (device_id, code, event_time) is the natural key.
type StatusLogEntry struct {
	Code      string `json:"code"`
	Value     any    `json:"value"`
	EventTime int64  `json:"event_time"`
}

// IngestedRecord is a StatusLogEntry stamped with ingestion provenance.
// This is the element type of a raw batch file (a JSON array of these).
type IngestedRecord struct {
	StatusLogEntry
	DeviceID              string `json:"device_id"`
	IngestionTimestampUTC string `json:"ingestion_timestamp_utc"`
	IngestedBy            string `json:"ingested_by"`
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IngestionRun is the ledger row for one orchestrator run.
type IngestionRun struct {
	RunID          string `gorm:"primaryKey"`
	StartedAt      time.Time
	FinishedAt     time.Time
	WindowHours    int
	StartTimeMs    int64
	EndTimeMs      int64
	DeviceCount    int
	BatchesWritten int
	Status         RunStatus `gorm:"type:varchar(20);check:status IN ('running','completed','cancelled')"`

	Devices []DeviceRunResult `gorm:"foreignKey:RunID;references:RunID"`
}

// DeviceRunResult records the per-device outcome within a run. Error is
// empty on success; a non-empty Error with LogCount 0 means the device
// was skipped (discovery failure, no codes) or its batch write failed.
type DeviceRunResult struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"index"`
	DeviceID  string `gorm:"index"`
	CodeCount int
	LogCount  int
	BatchPath string
	Error     string
}
