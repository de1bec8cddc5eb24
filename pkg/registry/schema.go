// pkg/registry/schema.go
package registry

// ActivityRegistry is the catalog of job types a process modeler can bind
// service tasks to.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID            string                 `json:"id"`
	DisplayName   string                 `json:"displayName"`
	Description   string                 `json:"description"`
	Category      string                 `json:"category"`
	TaskType      string                 `json:"taskType"`
	InputSchema   map[string]interface{} `json:"inputSchema"`
	OutputSchema  map[string]interface{} `json:"outputSchema"`
	ErrorCodes    []string               `json:"errorCodes"`
	Timeout       string                 `json:"timeout"`
	Retries       int                    `json:"retries"`
	MaxJobsActive int                    `json:"maxJobsActive"`
	Enabled       bool                   `json:"enabled"`
	Tags          []string               `json:"tags"`
}
