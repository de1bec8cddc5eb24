// internal/workers/market/converse-research/activity.go
package converseresearch

import "market-intel/pkg/registry"

// Activity describes the worker for the activity registry.
func Activity() registry.Activity {
	return registry.Activity{
		ID:          TaskType,
		DisplayName: "Converse Research",
		Description: "Answers a free-form market research question with web grounding, optionally continuing a prior conversation.",
		Category:    "market",
		TaskType:    TaskType,
		InputSchema: inputSchema,
		OutputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"requestId", "answer"},
			"properties": map[string]interface{}{
				"requestId": map[string]interface{}{"type": "string"},
				"answer":    map[string]interface{}{"type": "string"},
				"failure":   map[string]interface{}{"type": "string"},
			},
		},
		ErrorCodes: []string{"INVALID_INPUT"},
		Tags:       []string{"market", "research", "chat", "gemini"},
	}
}
