package tuya

import (
	"context"

	"liyu1981.xyz/iot-telemetry-pipeline/pkg/models"
)

// API is the vendor surface the ingestion pipeline consumes. *Client is
// the real implementation; tests substitute a gomock one.
type API interface {
	// SupportedCodes returns the telemetry codes a device currently
	// exposes. An empty (non-nil) slice means the device confirmed zero
	// codes; a nil slice with an error means the answer is unknown and
	// the caller must not fetch.
	SupportedCodes(ctx context.Context, deviceID string) ([]string, error)

	// FetchStatusLogs pulls status-change events for a device inside
	// [startMs, endMs], following pagination. On a mid-pagination
	// failure the pages collected so far are returned together with the
	// terminating error (best effort, no retry).
	FetchStatusLogs(ctx context.Context, deviceID string, codes string, startMs, endMs int64) ([]models.StatusLogEntry, error)
}

var _ API = (*Client)(nil)
