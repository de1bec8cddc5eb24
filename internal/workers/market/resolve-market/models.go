// internal/workers/market/resolve-market/models.go
package resolvemarket

import "market-intel/internal/market"

type Input struct {
	Market string `json:"market"`
}

type Output struct {
	RequestID string                    `json:"requestId"`
	Market    string                    `json:"market"`
	Source    market.Source             `json:"source"`
	TableKey  string                    `json:"tableKey,omitempty"`
	Records   []market.CompetitorRecord `json:"records"`
	Repairs   int                       `json:"repairs"`
	Failure   market.FailureKind        `json:"failure"`
}

var inputSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"market"},
	"properties": map[string]interface{}{
		"market": map[string]interface{}{
			"type":      "string",
			"maxLength": 200,
		},
	},
}
