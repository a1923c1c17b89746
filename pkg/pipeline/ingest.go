package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/common"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/models"
)

func (p *Pipeline) runIngestion(ctx context.Context, deviceIDs []string, windowHours int) (string, error) {
	logger := common.GetLoggerWith(
		common.LoggerNamePipelineCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryIngest),
	)

	baseDir, err := filepath.Abs(p.Cfg.RawDir)
	if err != nil {
		return "", err
	}

	runID := uuid.NewString()
	runStart := time.Now().UTC()

	// one window for the whole fleet: every device sees the same
	// absolute range
	endMs := runStart.UnixMilli()
	startMs := runStart.Add(-time.Duration(windowHours) * time.Hour).UnixMilli()

	logger.Info("Starting ingestion run",
		zap.String("run_id", runID),
		zap.Int("devices", len(deviceIDs)),
		zap.Int64("start_time_ms", startMs),
		zap.Int64("end_time_ms", endMs))

	run := models.IngestionRun{
		RunID:       runID,
		StartedAt:   runStart,
		WindowHours: windowHours,
		StartTimeMs: startMs,
		EndTimeMs:   endMs,
		DeviceCount: len(deviceIDs),
		Status:      models.RunStatusRunning,
	}
	if err := p.Db.Conn.Create(&run).Error; err != nil {
		return "", fmt.Errorf("record ingestion run: %w", err)
	}

	ingestionTimestamp := runStart.Format(time.RFC3339)
	ingestedBy := fmt.Sprintf("%s:%s", common.IngestedByIdentifier, runID)

	cancelled := false
	results := make([]models.DeviceRunResult, 0, len(deviceIDs))
	for _, deviceID := range deviceIDs {
		if err := ctx.Err(); err != nil {
			logger.Warn("Ingestion run cancelled between devices",
				zap.String("run_id", runID), zap.Error(err))
			cancelled = true
			break
		}

		result := p.ingestDevice(ctx, deviceID, startMs, endMs, baseDir, runStart, ingestionTimestamp, ingestedBy)
		result.RunID = runID
		if err := p.Db.Conn.Create(&result).Error; err != nil {
			logger.Error("Failed to record device result",
				zap.String("device_id", deviceID), zap.Error(err))
		}
		results = append(results, result)
	}

	batchesWritten := common.Reducer(results, func(acc int, r models.DeviceRunResult) int {
		if r.BatchPath != "" {
			acc++
		}
		return acc
	}, 0)

	run.BatchesWritten = batchesWritten
	run.FinishedAt = time.Now().UTC()
	run.Status = models.RunStatusCompleted
	if cancelled {
		run.Status = models.RunStatusCancelled
	}
	if err := p.Db.Conn.Save(&run).Error; err != nil {
		logger.Error("Failed to finalize ingestion run", zap.String("run_id", runID), zap.Error(err))
	}

	if batchesWritten == 0 {
		logger.Warn("No raw batches were written in this run", zap.String("run_id", runID))
	} else {
		logger.Info("Finished ingestion run",
			zap.String("run_id", runID), zap.Int("batches_written", batchesWritten))
	}

	return baseDir, nil
}

// ingestDevice handles one device end to end. Every failure is captured
// in the returned result instead of propagating, so one device can never
// abort the fleet run.
func (p *Pipeline) ingestDevice(ctx context.Context, deviceID string, startMs, endMs int64, baseDir string, fetchedAt time.Time, ingestionTimestamp, ingestedBy string) models.DeviceRunResult {
	logger := common.GetLoggerWith(
		common.LoggerNamePipelineCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryIngest),
	)

	result := models.DeviceRunResult{DeviceID: deviceID}

	codes, err := p.Api.SupportedCodes(ctx, deviceID)
	if err != nil {
		// unknown is not "confirmed zero": do not attempt the fetch
		logger.Warn("Skipping device, supported codes unknown",
			zap.String("device_id", deviceID), zap.Error(err))
		result.Error = fmt.Sprintf("supported codes unknown: %v", err)
		return result
	}
	result.CodeCount = len(codes)

	if len(codes) == 0 {
		logger.Warn("Skipping device, no supported codes",
			zap.String("device_id", deviceID))
		return result
	}

	logs, fetchErr := p.Api.FetchStatusLogs(ctx, deviceID, strings.Join(codes, ","), startMs, endMs)
	if fetchErr != nil {
		// best effort: pages collected before the failure still count
		logger.Warn("Log fetch incomplete for device",
			zap.String("device_id", deviceID), zap.Error(fetchErr))
		result.Error = fmt.Sprintf("fetch incomplete: %v", fetchErr)
	}
	result.LogCount = len(logs)

	if len(logs) == 0 {
		logger.Info("No logs for device in window", zap.String("device_id", deviceID))
		return result
	}

	records := common.Mapper(logs, func(entry models.StatusLogEntry) models.IngestedRecord {
		return models.IngestedRecord{
			StatusLogEntry:        entry,
			DeviceID:              deviceID,
			IngestionTimestampUTC: ingestionTimestamp,
			IngestedBy:            ingestedBy,
		}
	})

	batchPath, err := p.writeRawBatch(baseDir, deviceID, fetchedAt, records)
	if err != nil {
		logger.Error("Failed to save raw batch",
			zap.String("device_id", deviceID), zap.Error(err))
		result.Error = fmt.Sprintf("write batch: %v", err)
		return result
	}

	result.BatchPath = batchPath
	logger.Info("Saved raw batch",
		zap.String("device_id", deviceID),
		zap.String("path", batchPath),
		zap.Int("records", len(records)))
	return result
}

type IIngestImpl struct {
	pipeline *Pipeline
}

func (ii *IIngestImpl) Run(ctx context.Context, deviceIDs []string, windowHours int) (string, error) {
	return ii.pipeline.runIngestion(ctx, deviceIDs, windowHours)
}

func (p *Pipeline) GetIIngest() IIngest {
	return &IIngestImpl{pipeline: p}
}
