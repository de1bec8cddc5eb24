// internal/workers/market/resolve-competitor-detail/activity.go
package resolvecompetitordetail

import "market-intel/pkg/registry"

// Activity describes the worker for the activity registry.
func Activity() registry.Activity {
	return registry.Activity{
		ID:          TaskType,
		DisplayName: "Resolve Competitor Detail",
		Description: "Looks up named dentists and oral surgeons for one competitor in a market.",
		Category:    "market",
		TaskType:    TaskType,
		InputSchema: inputSchema,
		OutputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"requestId", "detail"},
			"properties": map[string]interface{}{
				"requestId": map[string]interface{}{"type": "string"},
				"detail": map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"name", "dentistNames", "surgeonNames", "evidenceSource"},
				},
				"failure": map[string]interface{}{"type": "string"},
			},
		},
		ErrorCodes: []string{"INVALID_INPUT"},
		Tags:       []string{"market", "competitors", "staff", "gemini"},
	}
}
