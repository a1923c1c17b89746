package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"liyu1981.xyz/iot-telemetry-pipeline/pkg/models"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/pipeline"
)

const (
	TriggerIngest  = "ingest"
	TriggerCompact = "compact"
	TriggerRun     = "run"
)

type IngestRequest struct {
	WindowHours int      `json:"window_hours"`
	DeviceIDs   []string `json:"device_ids"`
}

var ingestRequestSchema = z.Struct(z.Shape{
	"WindowHours": z.Int().Required().GT(0),
	"DeviceIDs":   z.Slice(z.String()),
})

// deviceIDs falls back to the device mapping when the request does not
// name an explicit fleet.
func (rs *RestfulServer) deviceIDs(requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}
	return rs.Pipeline.DeviceIDs()
}

func (rs *RestfulServer) PostIngest(c *gin.Context) {
	if !rs.CheckTriggerLimiter(TriggerIngest) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req IngestRequest
	if err := ingestRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	deviceIDs, err := rs.deviceIDs(req.DeviceIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rawRoot, err := rs.Pipeline.Ingest.Run(c.Request.Context(), deviceIDs, req.WindowHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"raw_root":     rawRoot,
		"device_count": len(deviceIDs),
	})
}

func (rs *RestfulServer) PostCompact(c *gin.Context) {
	if !rs.CheckTriggerLimiter(TriggerCompact) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	batchPaths, err := pipeline.DiscoverBatches(rs.Pipeline.Cfg.RawDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// compaction proceeds without names if the mapping cannot be read
	mapping, err := rs.Pipeline.Mapping.Load(rs.Pipeline.Cfg.MappingPath)
	if err != nil {
		mapping = nil
	}

	stagingRoot, err := rs.Pipeline.Compact.Compact(c.Request.Context(), batchPaths, mapping, rs.Pipeline.Cfg.StagingDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"staging_root": stagingRoot,
		"batch_files":  len(batchPaths),
	})
}

func (rs *RestfulServer) PostRun(c *gin.Context) {
	if !rs.CheckTriggerLimiter(TriggerRun) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req IngestRequest
	if err := ingestRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	deviceIDs, err := rs.deviceIDs(req.DeviceIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stagingRoot, err := rs.Pipeline.RunOnce(c.Request.Context(), deviceIDs, req.WindowHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"staging_root": stagingRoot,
		"device_count": len(deviceIDs),
	})
}

func (rs *RestfulServer) GetRuns(c *gin.Context) {
	var runs []models.IngestionRun
	if err := rs.Pipeline.Db.Conn.
		Order("started_at DESC").
		Find(&runs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, runs)
}

func (rs *RestfulServer) GetRun(c *gin.Context) {
	runID := c.Param("run_id")

	var run models.IngestionRun
	err := rs.Pipeline.Db.Conn.
		Preload("Devices").
		Where("run_id = ?", runID).
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}

type LimiterRequest struct {
	Trigger string  `json:"trigger"`
	Rate    float64 `json:"rate"`
	Burst   int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"trigger": z.String().Required(),
	"rate":    z.Float64().Required(),
	"burst":   z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetLimiter(req.Trigger, req.Rate, req.Burst)

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
