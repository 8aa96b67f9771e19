package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Days is a cookie lifetime in days. It decodes from a number or a numeric
// string ("30"), and keeps fractions (1.5 days is 36 hours). An empty string
// or null decodes to zero, which selects the default lifetime.
type Days float64

// UnmarshalJSON accepts a JSON number or a string holding one.
func (d *Days) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return d.parse(s)
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("cookieExpiration: %w", err)
	}
	*d = Days(f)
	return nil
}

// UnmarshalYAML accepts a scalar number, quoted or not.
func (d *Days) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("cookieExpiration: line %d: expected a number", value.Line)
	}
	if value.Tag == "!!null" {
		*d = 0
		return nil
	}
	return d.parse(value.Value)
}

func (d *Days) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cookieExpiration: %q is not a number", s)
	}
	*d = Days(f)
	return nil
}
