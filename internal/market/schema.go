// internal/market/schema.go
package market

import (
	"market-intel/internal/common/validation"
)

// EstimateResponseSchema is the structural contract sent to the provider
// with every estimate request.
func EstimateResponseSchema() map[string]interface{} {
	count := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "minimum": 0, "description": desc}
	}
	price := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "number", "description": desc + ", or -1 if unknown"}
	}

	return map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "organization name",
				},
				"geographicFocus": map[string]interface{}{
					"type": "string",
					"enum": []string{string(FocusNational), string(FocusRegional), string(FocusLocal)},
				},
				"clinicCount":    count("estimated clinics in this market"),
				"dentistCount":   count("estimated general dentists in this market"),
				"surgeonCount":   count("estimated oral surgeons or implantologists"),
				"priceDenture":   price("economy denture price in USD"),
				"priceTier1Low":  price("tier 1 economy plus low-range price in USD"),
				"priceTier1High": price("tier 1 economy plus high-range price in USD"),
			},
			"required": []string{"name", "geographicFocus", "clinicCount", "dentistCount", "surgeonCount"},
		},
	}
}

// The client-side check only pins down shape and field types. Values are
// repaired later by normalization, so anything a repair can fix passes here.
var estimateShape = validation.MustCompile(map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name":              nullable("string"),
			"dsoName":           nullable("string"),
			"geographicFocus":   nullable("string"),
			"clinicCount":       nullable("number"),
			"dentistCount":      nullable("number"),
			"dentistsPerClinic": nullable("number"),
			"surgeonCount":      nullable("number"),
			"priceDenture":      nullable("number", "string"),
			"priceTier1Low":     nullable("number", "string"),
			"priceTier1High":    nullable("number", "string"),
		},
	},
})

func nullable(types ...string) map[string]interface{} {
	return map[string]interface{}{"type": append(types, "null")}
}
