package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"liyu1981.xyz/iot-telemetry-pipeline/pkg/common"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/db"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/pipeline"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/tuya"
)

// One-shot runner: ingest the lookback window for every mapped device,
// then compact everything under the raw root into staging. Meant to be
// driven by cron or run by hand.
func main() {
	ingestOnly := flag.Bool("ingest-only", false, "fetch and write raw batches, skip compaction")
	compactOnly := flag.Bool("compact-only", false, "compact existing raw batches, skip fetching")
	windowHours := flag.Int("window-hours", 0, "lookback window in hours, overrides PIPELINE_WINDOW_HOURS")
	flag.Parse()

	if *ingestOnly && *compactOnly {
		log.Fatal("-ingest-only and -compact-only are mutually exclusive")
	}

	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	var dbInstance *db.DB
	pipelineDbType := os.Getenv(common.EnvKeyPipelineDBType)
	switch pipelineDbType {
	case "file":
		dbInstance = db.GetInstance(db.UseSqliteDialector())
	case "memory":
		dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
	default:
		log.Fatal("Unknown PIPELINE_DB_TYPE: " + pipelineDbType)
	}

	window := *windowHours
	if window == 0 {
		window = 1
		if raw := strings.TrimSpace(os.Getenv(common.EnvKeyPipelineWindowHours)); raw != "" {
			window, err = strconv.Atoi(raw)
			if err != nil || window <= 0 {
				log.Fatal("Invalid PIPELINE_WINDOW_HOURS, should be a positive int value")
			}
		}
	}

	logger := common.GetLogger()

	tuyaClient, err := tuya.NewClient(tuya.Config{
		Endpoint:     os.Getenv(common.EnvKeyTuyaAPIEndpoint),
		AccessID:     os.Getenv(common.EnvKeyTuyaAccessID),
		AccessSecret: os.Getenv(common.EnvKeyTuyaAccessSecret),
	}, tuya.WithPageLimiter(pageLimiterFromEnv()))
	if err != nil {
		log.Fatalf("tuya client: %v", err)
	}

	pipelineCfg := pipeline.Config{
		RawDir:      envOr(common.EnvKeyPipelineRawDir, "data/raw"),
		StagingDir:  envOr(common.EnvKeyPipelineStagingDir, "data/staging"),
		MappingPath: envOr(common.EnvKeyDeviceMappingPath, "device_mapping.json"),
	}
	if err := pipelineCfg.Validate(); err != nil {
		log.Fatalf("pipeline config: %v", err)
	}

	pipelineCore := pipeline.Pipeline{
		Db:  *dbInstance,
		Api: tuyaClient,
		Cfg: pipelineCfg,
	}
	pipelineCore.WithServices(pipeline.ServiceOpts{
		Ingest:  pipelineCore.GetIIngest(),
		Compact: pipelineCore.GetICompact(),
		Mapping: pipelineCore.GetIMapping(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case *ingestOnly:
		deviceIDs, err := pipelineCore.DeviceIDs()
		if err != nil {
			log.Fatalf("device mapping: %v", err)
		}
		rawRoot, err := pipelineCore.Ingest.Run(ctx, deviceIDs, window)
		if err != nil {
			log.Fatalf("ingestion: %v", err)
		}
		logger.Info("Ingestion finished",
			zap.String("raw_root", rawRoot), zap.Int("devices", len(deviceIDs)))

	case *compactOnly:
		batchPaths, err := pipeline.DiscoverBatches(pipelineCore.Cfg.RawDir)
		if err != nil {
			log.Fatalf("discover batches: %v", err)
		}
		mapping, err := pipelineCore.Mapping.Load(pipelineCore.Cfg.MappingPath)
		if err != nil {
			logger.Error("Device mapping unavailable, compacting without device names", zap.Error(err))
			mapping = nil
		}
		stagingRoot, err := pipelineCore.Compact.Compact(ctx, batchPaths, mapping, pipelineCore.Cfg.StagingDir)
		if err != nil {
			log.Fatalf("compaction: %v", err)
		}
		logger.Info("Compaction finished",
			zap.String("staging_root", stagingRoot), zap.Int("batch_files", len(batchPaths)))

	default:
		deviceIDs, err := pipelineCore.DeviceIDs()
		if err != nil {
			log.Fatalf("device mapping: %v", err)
		}
		stagingRoot, err := pipelineCore.RunOnce(ctx, deviceIDs, window)
		if err != nil {
			log.Fatalf("pipeline run: %v", err)
		}
		logger.Info("Pipeline run finished",
			zap.String("staging_root", stagingRoot), zap.Int("devices", len(deviceIDs)))
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// pageLimiterFromEnv paces outbound vendor page requests, 5 req/sec
// burst 5 unless tuned via env.
func pageLimiterFromEnv() *rate.Limiter {
	pageRate, err := strconv.ParseFloat(envOr(common.EnvKeyTuyaPageRate, "5"), 64)
	if err != nil {
		log.Fatal("Invalid TUYA_PAGE_RATE, should be a float64 value")
	}
	pageBurst, err := strconv.ParseInt(envOr(common.EnvKeyTuyaPageBurst, "5"), 10, 64)
	if err != nil {
		log.Fatal("Invalid TUYA_PAGE_BURST, should be an int value")
	}
	return rate.NewLimiter(rate.Limit(pageRate), int(pageBurst))
}
