package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyTuyaAccessID     string = "ACCESS_ID"
	EnvKeyTuyaAccessSecret string = "ACCESS_SECRET"
	EnvKeyTuyaAPIEndpoint  string = "API_ENDPOINT"

	EnvKeyTuyaPageRate  string = "TUYA_PAGE_RATE"
	EnvKeyTuyaPageBurst string = "TUYA_PAGE_BURST"

	EnvKeyDeviceMappingPath string = "DEVICE_MAPPING_PATH"

	EnvKeyPipelineDBType string = "PIPELINE_DB_TYPE"
	EnvKeyPipelineDbPath string = "PIPELINE_DB_PATH"

	EnvKeyPipelineRawDir      string = "PIPELINE_RAW_DIR"
	EnvKeyPipelineStagingDir  string = "PIPELINE_STAGING_DIR"
	EnvKeyPipelineWindowHours string = "PIPELINE_WINDOW_HOURS"

	EnvKeyPipelineHttpHostPort string = "PIPELINE_HTTP_HOST_PORT"

	EnvKeyPipelineDefaultRate  string = "PIPELINE_DEFAULT_RATE"
	EnvKeyPipelineDefaultBurst string = "PIPELINE_DEFAULT_BURST"

	LoggerNamePipelineCore  string = "pipeline_core"
	LoggerNameTuyaClient    string = "tuya_client"
	LoggerNameRestfulServer string = "restful_server"

	LoggerFieldCategory    string = "category"
	LoggerCategoryRun      string = "run"
	LoggerCategoryFetch    string = "fetch"
	LoggerCategoryCodes    string = "codes"
	LoggerCategoryIngest   string = "ingest"
	LoggerCategoryMapping  string = "mapping"
	LoggerCategoryCompact  string = "compact"
	LoggerCategoryRawBatch string = "raw_batch"

	// stamped as ingested_by on every record written to a raw batch
	IngestedByIdentifier string = "tuya_log_ingestion_pipeline"
)
