package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"liyu1981.xyz/iot-telemetry-pipeline/pkg/common"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/db"
	pipelineHttp "liyu1981.xyz/iot-telemetry-pipeline/pkg/http"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/pipeline"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/tuya"
)

func main() {
	var err error

	err = godotenv.Load()
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

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyPipelineHttpHostPort))

	var defaultRate float64
	var defaultBurst int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyPipelineDefaultRate), 64); err != nil {
		log.Fatal("Invalid PIPELINE_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}

	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeyPipelineDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid PIPELINE_DEFAULT_BURST, or not set in .env, should be an int value")
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

	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	logger.Info("Starting HTTP server on port " + httpHostPort)
	rs := &pipelineHttp.RestfulServer{
		Server:           gin.Default(),
		Pipeline:         &pipelineCore,
		RateLimiterStore: pipeline.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst)),
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.String("default_limiter",
			fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", defaultRate, defaultBurst)))

	logger.Info("Starting HTTP server on: " + httpHostPort)
	if err := rs.Server.Run(httpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
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
