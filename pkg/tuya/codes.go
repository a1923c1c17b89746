package tuya

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"liyu1981.xyz/iot-telemetry-pipeline/pkg/common"
)

const shadowPropertiesPathFmt = "/v2.0/cloud/thing/%s/shadow/properties"

type shadowProperty struct {
	Code  string `json:"code"`
	Value any    `json:"value"`
}

type shadowPropertiesResult struct {
	Properties []shadowProperty `json:"properties"`
}

func (c *Client) SupportedCodes(ctx context.Context, deviceID string) ([]string, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameTuyaClient,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryCodes),
	)

	var result shadowPropertiesResult
	if err := c.get(ctx, fmt.Sprintf(shadowPropertiesPathFmt, deviceID), nil, &result); err != nil {
		logger.Warn("Failed to query supported codes",
			zap.String("device_id", deviceID), zap.Error(err))
		return nil, err
	}

	// empty result stays a non-nil empty slice: "confirmed zero codes"
	codes := make([]string, 0, len(result.Properties))
	for _, prop := range result.Properties {
		if prop.Code != "" {
			codes = append(codes, prop.Code)
		}
	}

	logger.Info("Queried supported codes",
		zap.String("device_id", deviceID), zap.Strings("codes", codes))
	return codes, nil
}
