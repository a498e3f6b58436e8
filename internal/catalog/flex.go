package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flexString decodes a JSON value that the source site serves sometimes as
// a string and sometimes as a bare number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("value is neither string nor number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// flexInt decodes an integer that may arrive quoted.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if trimmed == "null" || trimmed == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return fmt.Errorf("parse integer %q: %w", trimmed, err)
	}
	*f = flexInt(n)
	return nil
}
