// internal/workers/market/resolve-market/activity.go
package resolvemarket

import "market-intel/pkg/registry"

// Activity describes the worker for the activity registry.
func Activity() registry.Activity {
	return registry.Activity{
		ID:          TaskType,
		DisplayName: "Resolve Market",
		Description: "Returns the competitor matrix for a market: the locked table when the market is trusted, otherwise a grounded estimate.",
		Category:    "market",
		TaskType:    TaskType,
		InputSchema: inputSchema,
		OutputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"requestId", "market", "source", "records"},
			"properties": map[string]interface{}{
				"requestId": map[string]interface{}{"type": "string"},
				"market":    map[string]interface{}{"type": "string"},
				"source":    map[string]interface{}{"type": "string", "enum": []interface{}{"trusted", "estimated", "cached"}},
				"tableKey":  map[string]interface{}{"type": "string"},
				"records":   map[string]interface{}{"type": "array"},
				"repairs":   map[string]interface{}{"type": "integer", "minimum": 0},
				"failure":   map[string]interface{}{"type": "string"},
			},
		},
		ErrorCodes: []string{"INVALID_INPUT"},
		Tags:       []string{"market", "competitors", "gemini"},
	}
}
