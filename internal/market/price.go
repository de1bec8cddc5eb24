// internal/market/price.go
package market

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnknownPriceToken is how an undetermined price is rendered at the record level.
const UnknownPriceToken = "TBD"

// UnknownPriceSentinel is the numeric marker providers use for an unknown price.
const UnknownPriceSentinel = -1

// Price is either a known positive amount or Unknown.
// The zero value is Unknown.
type Price struct {
	amount float64
	known  bool
}

// Known returns a known price. Non-positive amounts collapse to Unknown.
func Known(amount float64) Price {
	if amount <= 0 {
		return Unknown()
	}
	return Price{amount: amount, known: true}
}

// Unknown returns the unknown price marker.
func Unknown() Price {
	return Price{}
}

func (p Price) IsKnown() bool {
	return p.known
}

// Amount returns the price and whether it is known.
func (p Price) Amount() (float64, bool) {
	return p.amount, p.known
}

func (p Price) String() string {
	if !p.known {
		return UnknownPriceToken
	}
	return strconv.FormatFloat(p.amount, 'f', -1, 64)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.known {
		return json.Marshal(UnknownPriceToken)
	}
	return json.Marshal(p.amount)
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Unknown()
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, UnknownPriceToken) {
			*p = Unknown()
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("price %q: not a number or %s", s, UnknownPriceToken)
		}
		*p = Known(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = Known(v)
	return nil
}

// MarshalYAML renders prices in trusted-table files the same way as JSON.
func (p Price) MarshalYAML() (interface{}, error) {
	if !p.known {
		return UnknownPriceToken, nil
	}
	return p.amount, nil
}

// UnmarshalYAML accepts a number, "TBD" or an empty value.
func (p *Price) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*p = Unknown()
	case int:
		*p = Known(float64(v))
	case float64:
		*p = Known(v)
	case string:
		return p.UnmarshalJSON([]byte(strconv.Quote(v)))
	default:
		return fmt.Errorf("price: unsupported value %v (%T)", v, v)
	}
	return nil
}
