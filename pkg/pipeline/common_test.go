package pipeline

import (
	"bufio"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/db"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/pipeline/mocks"
	tuyamocks "liyu1981.xyz/iot-telemetry-pipeline/pkg/tuya/mocks"
)

func GetMockPipelineWithMemorySqliteDialector(t *testing.T, useMockIngest, useMockCompact, useMockMapping bool) (
	*gomock.Controller,
	*Pipeline,
	*tuyamocks.MockAPI,
	*mocks.MockIIngest,
	*mocks.MockICompact,
	*mocks.MockIMapping,
) {
	ctrl := gomock.NewController(t)

	mockAPI := tuyamocks.NewMockAPI(ctrl)
	mockIIngest := mocks.NewMockIIngest(ctrl)
	mockICompact := mocks.NewMockICompact(ctrl)
	mockIMapping := mocks.NewMockIMapping(ctrl)

	dialector := db.UseMemorySqliteDialector()
	dbInstance := db.GetInstance(dialector) // ensure migrations

	tmpDir := t.TempDir()
	pipelineInstance := &Pipeline{
		Db:  *dbInstance,
		Api: mockAPI,
		Cfg: Config{
			RawDir:      filepath.Join(tmpDir, "data", "raw"),
			StagingDir:  filepath.Join(tmpDir, "data", "staging"),
			MappingPath: filepath.Join(tmpDir, "device_mapping.json"),
		},
	}

	ingestService := pipelineInstance.GetIIngest()
	if useMockIngest {
		ingestService = mockIIngest
	}

	compactService := pipelineInstance.GetICompact()
	if useMockCompact {
		compactService = mockICompact
	}

	mappingService := pipelineInstance.GetIMapping()
	if useMockMapping {
		mappingService = mockIMapping
	}

	pipelineInstance.WithServices(ServiceOpts{
		Ingest:  ingestService,
		Compact: compactService,
		Mapping: mappingService,
	})

	return ctrl, pipelineInstance, mockAPI, mockIIngest, mockICompact, mockIMapping
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
