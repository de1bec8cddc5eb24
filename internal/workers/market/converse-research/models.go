// internal/workers/market/converse-research/models.go
package converseresearch

import "market-intel/internal/market"

type Input struct {
	Question string            `json:"question"`
	History  []market.ChatTurn `json:"history"`
}

type Output struct {
	RequestID string             `json:"requestId"`
	Answer    string             `json:"answer"`
	Failure   market.FailureKind `json:"failure"`
}

var inputSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"question"},
	"properties": map[string]interface{}{
		"question": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 4000,
		},
		"history": map[string]interface{}{
			"type": []interface{}{"array", "null"},
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"role", "text"},
				"properties": map[string]interface{}{
					"role": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"user", "model", "assistant"},
					},
					"text": map[string]interface{}{"type": "string"},
				},
			},
		},
	},
}
