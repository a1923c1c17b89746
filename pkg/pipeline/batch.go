package pipeline

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/common"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/models"
)

const rawBatchSuffix = "_logs.json"

// writeRawBatch persists one device's records for one fetch as a JSON
// array under baseDir/<device_id>/<event_date>/. The date folder comes
// from the FIRST record's event time: a window crossing UTC midnight
// files everything under the first record's day. The filename embeds the
// fetch timestamp so repeated runs never collide. Records must be
// non-empty; zero-log devices write no file.
func (p *Pipeline) writeRawBatch(baseDir, deviceID string, fetchedAt time.Time, records []models.IngestedRecord) (string, error) {
	first := time.UnixMilli(records[0].EventTime).UTC()
	dateFolder := first.Format("2006-01-02")

	dir := filepath.Join(baseDir, deviceID, dateFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create batch directory %s: %w", dir, err)
	}

	fileName := fmt.Sprintf("%s_%s%s", deviceID, fetchedAt.UTC().Format("20060102150405"), rawBatchSuffix)
	outPath := filepath.Join(dir, fileName)

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode batch for %s: %w", deviceID, err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write batch %s: %w", outPath, err)
	}

	common.GetLoggerWith(
		common.LoggerNamePipelineCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryRawBatch),
	).Info("Wrote raw batch file",
		zap.String("device_id", deviceID),
		zap.String("path", outPath),
		zap.Int("records", len(records)))

	return outPath, nil
}

// DiscoverBatches walks root recursively and returns every raw batch
// file, sorted. A missing root or zero matches is not an error; the
// caller proceeds with an empty result.
func DiscoverBatches(root string) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover batches under %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}
