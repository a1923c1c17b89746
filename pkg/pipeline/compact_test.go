package pipeline

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"liyu1981.xyz/iot-telemetry-pipeline/pkg/common"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/models"
	_ "liyu1981.xyz/iot-telemetry-pipeline/pkg/testing"
)

type stagingRow struct {
	Code       string
	Value      string
	DeviceID   string
	DeviceName sql.NullString
	EventDate  string
	EventTime  time.Time
}

func writeTestBatch(t *testing.T, p *Pipeline, baseDir, deviceID, value string, eventTimeMs int64) string {
	records := []models.IngestedRecord{
		{
			StatusLogEntry:        models.StatusLogEntry{Code: "cur_current", Value: value, EventTime: eventTimeMs},
			DeviceID:              deviceID,
			IngestionTimestampUTC: "2023-11-14T23:00:00Z",
			IngestedBy:            common.IngestedByIdentifier,
		},
	}
	path, err := p.writeRawBatch(baseDir, deviceID, time.Now().UTC(), records)
	require.NoError(t, err)
	return path
}

func queryStaging(t *testing.T, stagingRoot string) []stagingRow {
	duck, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	defer duck.Close()

	pattern := quoteSQLString(filepath.Join(stagingRoot, "*", "*.parquet"))
	rows, err := duck.Query(`
		SELECT code, CAST(value AS VARCHAR), device_id, device_name, CAST(event_date AS VARCHAR), event_time
		FROM read_parquet(` + pattern + `, hive_partitioning = true)
		ORDER BY device_id`)
	require.NoError(t, err)
	defer rows.Close()

	var result []stagingRow
	for rows.Next() {
		var row stagingRow
		require.NoError(t, rows.Scan(&row.Code, &row.Value, &row.DeviceID, &row.DeviceName, &row.EventDate, &row.EventTime))
		result = append(result, row)
	}
	require.NoError(t, rows.Err())
	return result
}

func partitionFiles(t *testing.T, partitionDir string) map[string]int64 {
	entries, err := os.ReadDir(partitionDir)
	require.NoError(t, err)
	files := map[string]int64{}
	for _, entry := range entries {
		info, err := entry.Info()
		require.NoError(t, err)
		files[entry.Name()] = info.Size()
	}
	return files
}

func TestCompactEndToEnd(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, p, _, _, _, _ := GetMockPipelineWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	rawDir := t.TempDir()
	writeTestBatch(t, p, rawDir, "dev1", "120", testEventTimeMs)
	writeTestBatch(t, p, rawDir, "dev2", "118", testEventTimeMs)

	batches, err := DiscoverBatches(rawDir)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	stagingRoot, err := p.Compact.Compact(context.Background(), batches, map[string]string{"dev1": "Lamp"}, p.Cfg.StagingDir)
	require.NoError(t, err)

	// one partition for the UTC date of 1700000000000
	partitionDir := filepath.Join(stagingRoot, "event_date=2023-11-14")
	if _, err := os.Stat(partitionDir); err != nil {
		t.Fatalf("expected partition directory %s: %v", partitionDir, err)
	}

	rows := queryStaging(t, stagingRoot)
	require.Len(t, rows, 2)

	assert.Equal(t, "dev1", rows[0].DeviceID)
	require.True(t, rows[0].DeviceName.Valid)
	assert.Equal(t, "Lamp", rows[0].DeviceName.String)

	// dev2 is absent from the mapping: kept, name NULL
	assert.Equal(t, "dev2", rows[1].DeviceID)
	assert.False(t, rows[1].DeviceName.Valid)

	for _, row := range rows {
		assert.Equal(t, "cur_current", row.Code)
		assert.Equal(t, "2023-11-14", row.EventDate)
		// the ms-epoch raw field is gone; event_time is a real timestamp now
		assert.Equal(t, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), row.EventTime.UTC())
	}
}

func TestCompact_OverwriteOrIgnoreLeavesExistingPartition(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, p, _, _, _, _ := GetMockPipelineWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	rawDir := t.TempDir()
	writeTestBatch(t, p, rawDir, "dev1", "120", testEventTimeMs)

	batches, err := DiscoverBatches(rawDir)
	require.NoError(t, err)

	stagingRoot, err := p.Compact.Compact(context.Background(), batches, nil, p.Cfg.StagingDir)
	require.NoError(t, err)

	partitionDir := filepath.Join(stagingRoot, "event_date=2023-11-14")
	before := partitionFiles(t, partitionDir)

	// new raw data arrives for the already-compacted date
	writeTestBatch(t, p, rawDir, "dev9", "999", testEventTimeMs+5000)
	batches, err = DiscoverBatches(rawDir)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	_, err = p.Compact.Compact(context.Background(), batches, nil, p.Cfg.StagingDir)
	require.NoError(t, err)

	// existing partition output is left untouched, not merged
	assert.Equal(t, before, partitionFiles(t, partitionDir))

	rows := queryStaging(t, stagingRoot)
	require.Len(t, rows, 1)
	assert.Equal(t, "dev1", rows[0].DeviceID)
}

func TestCompact_RecompactAfterDeleteMatches(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, p, _, _, _, _ := GetMockPipelineWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	rawDir := t.TempDir()
	writeTestBatch(t, p, rawDir, "dev1", "120", testEventTimeMs)

	batches, err := DiscoverBatches(rawDir)
	require.NoError(t, err)

	stagingRoot, err := p.Compact.Compact(context.Background(), batches, map[string]string{"dev1": "Lamp"}, p.Cfg.StagingDir)
	require.NoError(t, err)
	first := queryStaging(t, stagingRoot)

	// deleting the partition is the documented way to refresh it
	require.NoError(t, os.RemoveAll(stagingRoot))

	stagingRoot, err = p.Compact.Compact(context.Background(), batches, map[string]string{"dev1": "Lamp"}, p.Cfg.StagingDir)
	require.NoError(t, err)
	second := queryStaging(t, stagingRoot)

	assert.Equal(t, first, second)
}

func TestCompact_NilMappingDegradesToNullNames(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, p, _, _, _, _ := GetMockPipelineWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	rawDir := t.TempDir()
	writeTestBatch(t, p, rawDir, "dev1", "120", testEventTimeMs)

	batches, err := DiscoverBatches(rawDir)
	require.NoError(t, err)

	stagingRoot, err := p.Compact.Compact(context.Background(), batches, nil, p.Cfg.StagingDir)
	require.NoError(t, err)

	rows := queryStaging(t, stagingRoot)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].DeviceName.Valid)
}

func TestCompact_NoBatchesIsNotAnError(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, p, _, _, _, _ := GetMockPipelineWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	stagingRoot, err := p.Compact.Compact(context.Background(), nil, nil, p.Cfg.StagingDir)
	require.NoError(t, err)

	// staging root exists and is empty
	entries, err := os.ReadDir(stagingRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCompact_CorruptBatchIsFatal(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, p, _, _, _, _ := GetMockPipelineWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	rawDir := t.TempDir()
	badPath := filepath.Join(rawDir, "dev1", "2023-11-14", "dev1_20231114221320_logs.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(badPath), 0o755))
	require.NoError(t, os.WriteFile(badPath, []byte("{not json"), 0o644))

	_, err := p.Compact.Compact(context.Background(), []string{badPath}, nil, p.Cfg.StagingDir)
	require.Error(t, err)
}

func TestRunOnce_WiresIngestDiscoveryAndCompaction(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, p, mockAPI, _, _, _ := GetMockPipelineWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()

	require.NoError(t, os.MkdirAll(filepath.Dir(p.Cfg.MappingPath), 0o755))
	require.NoError(t, os.WriteFile(p.Cfg.MappingPath, []byte(`{"dev1": "Lamp"}`), 0o644))

	mockAPI.EXPECT().
		SupportedCodes(gomock.Any(), gomock.Eq("dev1")).
		Return([]string{"cur_current"}, nil).
		Times(1)
	mockAPI.EXPECT().
		FetchStatusLogs(gomock.Any(), gomock.Eq("dev1"), gomock.Eq("cur_current"), gomock.Any(), gomock.Any()).
		Return([]models.StatusLogEntry{
			{Code: "cur_current", Value: "120", EventTime: testEventTimeMs},
		}, nil).
		Times(1)

	stagingRoot, err := p.RunOnce(context.Background(), []string{"dev1"}, 1)
	require.NoError(t, err)

	rows := queryStaging(t, stagingRoot)
	require.Len(t, rows, 1)
	assert.Equal(t, "dev1", rows[0].DeviceID)
	require.True(t, rows[0].DeviceName.Valid)
	assert.Equal(t, "Lamp", rows[0].DeviceName.String)
}

func TestRunOnce_MappingUnavailableDegrades(t *testing.T) {
	var logBuf bytes.Buffer
	common.SetTestCaptureLogger(&logBuf, zapcore.ErrorLevel)
	defer common.SetTestLoggerNop()

	ctrl, p, _, mockIIngest, mockICompact, _ := GetMockPipelineWithMemorySqliteDialector(t, true, true, false)
	defer ctrl.Finish()

	// no mapping file exists: compaction still runs, names degrade to NULL
	rawRoot := t.TempDir()
	mockIIngest.EXPECT().
		Run(gomock.Any(), gomock.Eq([]string{"dev1"}), gomock.Eq(1)).
		Return(rawRoot, nil).
		Times(1)
	mockICompact.EXPECT().
		Compact(gomock.Any(), gomock.Len(0), gomock.Nil(), gomock.Eq(p.Cfg.StagingDir)).
		Return("/data/staging", nil).
		Times(1)

	stagingRoot, err := p.RunOnce(context.Background(), []string{"dev1"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "/data/staging", stagingRoot)

	var degradeLog map[string]any
	for _, parsed := range ParseLogs(&logBuf) {
		if m, ok := parsed.(map[string]any); ok && m["msg"] == "Device mapping unavailable, compacting without device names" {
			degradeLog = m
		}
	}
	require.NotNil(t, degradeLog)
	assert.Equal(t, common.LoggerCategoryRun, degradeLog["category"])
}
