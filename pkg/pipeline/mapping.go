package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/common"
)

// loadDeviceMapping reads the device_id -> display name JSON object.
// Absence or corruption is an expected condition reported as an error;
// callers decide whether it is fatal (ingestion) or degrading (compaction).
func (p *Pipeline) loadDeviceMapping(path string) (map[string]string, error) {
	logger := common.GetLoggerWith(
		common.LoggerNamePipelineCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryMapping),
	)

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read device mapping file", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("read device mapping %s: %w", path, err)
	}

	var mapping map[string]string
	if err := json.Unmarshal(raw, &mapping); err != nil {
		logger.Warn("Failed to decode device mapping file", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("decode device mapping %s: %w", path, err)
	}

	logger.Info("Loaded device mapping", zap.String("path", path), zap.Int("devices", len(mapping)))
	return mapping, nil
}

type IMappingImpl struct {
	pipeline *Pipeline
}

func (im *IMappingImpl) Load(path string) (map[string]string, error) {
	return im.pipeline.loadDeviceMapping(path)
}

func (p *Pipeline) GetIMapping() IMapping {
	return &IMappingImpl{pipeline: p}
}
