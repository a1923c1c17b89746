package pipeline

import (
	"context"
	"fmt"
	"sort"

	z "github.com/Oudwins/zog"
	"go.uber.org/zap"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/common"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/db"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/tuya"
)

type IIngest interface {
	// Run pulls the window for every device, writes raw batches and the
	// run ledger, and returns the absolute raw base path.
	Run(ctx context.Context, deviceIDs []string, windowHours int) (string, error)
}

type ICompact interface {
	// Compact rewrites raw batches as a parquet dataset partitioned by
	// event_date under stagingRoot. A nil mapping degrades device_name
	// to NULL; it never aborts the call.
	Compact(ctx context.Context, batchPaths []string, mapping map[string]string, stagingRoot string) (string, error)
}

type IMapping interface {
	Load(path string) (map[string]string, error)
}

// Config carries the pipeline's filesystem roots and the device mapping
// location. Credentials live in tuya.Config, not here.
type Config struct {
	RawDir      string
	StagingDir  string
	MappingPath string
}

var configSchema = z.Struct(z.Shape{
	"RawDir":      z.String().Required(),
	"StagingDir":  z.String().Required(),
	"MappingPath": z.String().Required(),
})

func (c *Config) Validate() error {
	if issues := configSchema.Validate(c); issues != nil {
		return fmt.Errorf("invalid pipeline config: %v", issues)
	}
	return nil
}

type Pipeline struct {
	Db  db.DB
	Api tuya.API
	Cfg Config

	Ingest  IIngest
	Compact ICompact
	Mapping IMapping
}

type ServiceOpts struct {
	Ingest  IIngest
	Compact ICompact
	Mapping IMapping
}

func (p *Pipeline) WithServices(opts ServiceOpts) *Pipeline {
	if opts.Ingest != nil {
		p.Ingest = opts.Ingest
	}
	if opts.Compact != nil {
		p.Compact = opts.Compact
	}
	if opts.Mapping != nil {
		p.Mapping = opts.Mapping
	}
	return p
}

// DeviceIDs returns the fleet from the device mapping file, sorted. An
// empty mapping is a configuration error for ingestion.
func (p *Pipeline) DeviceIDs() ([]string, error) {
	mapping, err := p.Mapping.Load(p.Cfg.MappingPath)
	if err != nil {
		return nil, err
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("no device ids found in mapping file %s", p.Cfg.MappingPath)
	}
	ids := make([]string, 0, len(mapping))
	for id := range mapping {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// RunOnce is one full ingest-then-compact cycle: the scheduled entry
// point and the admin server's /pipeline/run both go through here.
func (p *Pipeline) RunOnce(ctx context.Context, deviceIDs []string, windowHours int) (string, error) {
	logger := common.GetLoggerWith(
		common.LoggerNamePipelineCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryRun),
	)

	rawRoot, err := p.Ingest.Run(ctx, deviceIDs, windowHours)
	if err != nil {
		return "", err
	}

	batchPaths, err := DiscoverBatches(rawRoot)
	if err != nil {
		return "", err
	}

	mapping, err := p.Mapping.Load(p.Cfg.MappingPath)
	if err != nil {
		// enrichment degrades, compaction proceeds with NULL names
		logger.Error("Device mapping unavailable, compacting without device names", zap.Error(err))
		mapping = nil
	}

	return p.Compact.Compact(ctx, batchPaths, mapping, p.Cfg.StagingDir)
}
