package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/common"
)

// compactBatches reads every raw batch as one row stream, converts
// event_time (epoch ms) to a UTC timestamp of the same name, left-joins
// device names from the mapping, and rewrites everything as parquet
// partitioned by event_date. OVERWRITE_OR_IGNORE leaves an existing
// partition untouched rather than merging into it, so re-compacting a
// date that already has output does not pick up new rows.
func (p *Pipeline) compactBatches(ctx context.Context, batchPaths []string, mapping map[string]string, stagingRoot string) (string, error) {
	logger := common.GetLoggerWith(
		common.LoggerNamePipelineCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryCompact),
	)

	stagingAbs, err := filepath.Abs(stagingRoot)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(stagingAbs, 0o755); err != nil {
		return "", fmt.Errorf("create staging directory %s: %w", stagingAbs, err)
	}

	if len(batchPaths) == 0 {
		logger.Warn("No raw batch files to compact", zap.String("staging", stagingAbs))
		return stagingAbs, nil
	}

	duck, err := sql.Open("duckdb", "")
	if err != nil {
		return "", fmt.Errorf("open duckdb: %w", err)
	}
	defer duck.Close()

	// the temp table and the COPY must share one session
	conn, err := duck.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire duckdb connection: %w", err)
	}
	defer conn.Close()

	selectDeviceName := "NULL AS device_name"
	joinClause := ""
	if mapping != nil {
		if _, err := conn.ExecContext(ctx, `CREATE TEMP TABLE device_map (device_id VARCHAR, device_name VARCHAR)`); err != nil {
			return "", fmt.Errorf("create device_map table: %w", err)
		}
		for deviceID, deviceName := range mapping {
			if _, err := conn.ExecContext(ctx, `INSERT INTO device_map VALUES (?, ?)`, deviceID, deviceName); err != nil {
				return "", fmt.Errorf("fill device_map table: %w", err)
			}
		}
		selectDeviceName = "dm.device_name"
		joinClause = "LEFT JOIN device_map dm ON rl.device_id = dm.device_id"
	} else {
		logger.Warn("Compacting without device mapping, device_name will be NULL for all rows")
	}

	filesList := strings.Join(common.Mapper(batchPaths, quoteSQLString), ", ")

	copyQuery := fmt.Sprintf(`
COPY (
    WITH raw_logs AS (
        SELECT *
        FROM read_json_auto(
            [%s],
            format='auto',
            filename=true
        )
    )
    SELECT
        rl.code,
        rl.value,
        rl.device_id,
        rl.ingestion_timestamp_utc,
        rl.ingested_by,
        rl.filename,
        to_timestamp(rl.event_time / 1000)::TIMESTAMP AS event_time,
        %s,
        strftime(to_timestamp(rl.event_time / 1000), '%%Y-%%m-%%d') AS event_date
    FROM raw_logs rl
    %s
) TO %s (
    FORMAT PARQUET,
    PARTITION_BY (event_date),
    OVERWRITE_OR_IGNORE 1
);`, filesList, selectDeviceName, joinClause, quoteSQLString(stagingAbs))

	if _, err := conn.ExecContext(ctx, copyQuery); err != nil {
		logger.Error("Compaction failed", zap.Error(err))
		return "", fmt.Errorf("compact to %s: %w", stagingAbs, err)
	}

	logger.Info("Compacted raw batches into staging",
		zap.Int("batch_files", len(batchPaths)), zap.String("staging", stagingAbs))
	return stagingAbs, nil
}

func quoteSQLString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

type ICompactImpl struct {
	pipeline *Pipeline
}

func (ic *ICompactImpl) Compact(ctx context.Context, batchPaths []string, mapping map[string]string, stagingRoot string) (string, error) {
	return ic.pipeline.compactBatches(ctx, batchPaths, mapping, stagingRoot)
}

func (p *Pipeline) GetICompact() ICompact {
	return &ICompactImpl{pipeline: p}
}
