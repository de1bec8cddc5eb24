// internal/workers/market/resolve-competitor-detail/models.go
package resolvecompetitordetail

import "market-intel/internal/market"

type Input struct {
	Market         string `json:"market"`
	CompetitorName string `json:"competitorName"`
}

type Output struct {
	RequestID string                  `json:"requestId"`
	Detail    market.CompetitorDetail `json:"detail"`
	Failure   market.FailureKind      `json:"failure"`
}

var inputSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"market", "competitorName"},
	"properties": map[string]interface{}{
		"market": map[string]interface{}{
			"type":      "string",
			"maxLength": 200,
		},
		"competitorName": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 200,
		},
	},
}
