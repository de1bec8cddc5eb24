// internal/market/classify.go
package market

import "strings"

// Classification is the outcome of matching a market identifier against
// the trusted aliases.
type Classification struct {
	Normalized string
	Locked     bool
	TableKey   string
	Alias      string
}

func normalizeMarket(market string) string {
	return strings.ToLower(strings.TrimSpace(market))
}

// Classify decides whether market is locked. A market is locked when its
// normalized form contains any trusted alias. When several tables match, the
// longest matching alias wins and ties go to the smallest table key, so the
// same identifier always lands on the same table.
func (s *TrustedStore) Classify(market string) Classification {
	c := Classification{Normalized: normalizeMarket(market)}
	if c.Normalized == "" || s == nil {
		return c
	}

	for _, key := range s.keys {
		for _, alias := range s.tables[key].Aliases {
			if !strings.Contains(c.Normalized, alias) {
				continue
			}
			// keys are visited in sorted order, so strict > keeps the smaller key on ties
			if len(alias) > len(c.Alias) {
				c.Locked = true
				c.TableKey = key
				c.Alias = alias
			}
		}
	}

	return c
}
