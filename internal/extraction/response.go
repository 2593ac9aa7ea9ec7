package extraction

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("^\\s*```[A-Za-z0-9_+-]*\\s*")
	trailingFence = regexp.MustCompile("\\s*```\\s*$")
)

// StripFences removes one leading ``` fence (with optional language tag) and
// one trailing ``` fence, then trims whitespace.
func StripFences(raw string) string {
	s := leadingFence.ReplaceAllString(raw, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseResponse turns raw model text into a repaired Result. callerText is
// the text the caller sent, or "" for a binary request.
func ParseResponse(raw, callerText string) (Result, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %s", ErrMalformedResponse, jsonKind(decoded))
	}

	result := Result(obj)
	Repair(result, callerText)
	return result, nil
}

// Repair backfills raw_text from callerText when it is falsy and forces
// total_amount to a number (0 when it is anything else).
func Repair(r Result, callerText string) {
	if callerText != "" && isFalsy(r[KeyRawText]) {
		r[KeyRawText] = callerText
	}
	if _, ok := r[KeyTotalAmount].(float64); !ok {
		r[KeyTotalAmount] = float64(0)
	}
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	}
	return false
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", v)
}
