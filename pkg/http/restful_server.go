package http

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/pipeline"
)

type RestfulServer struct {
	Server           *gin.Engine
	Pipeline         *pipeline.Pipeline
	RateLimiterStore *pipeline.RateLimiterStore
}

func (rs *RestfulServer) GetLimiter(trigger string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(trigger)
	}
}

func (rs *RestfulServer) CheckTriggerLimiter(trigger string) bool {
	limiter := rs.GetLimiter(trigger)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(trigger string, triggerRate float64, triggerBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(trigger, rate.Limit(triggerRate), triggerBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	triggers := rs.Server.Group("/pipeline")
	{
		triggers.POST("/ingest", rs.PostIngest)
		triggers.POST("/compact", rs.PostCompact)
		triggers.POST("/run", rs.PostRun)
		triggers.POST("/limiter", rs.PostLimiter)
	}

	runs := rs.Server.Group("/runs")
	{
		runs.GET("", rs.GetRuns)
		runs.GET("/:run_id", rs.GetRun)
	}
}
