package common

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	monthYearLayout = "2006 Jan"

	// OpenEnded is rendered in place of the end of a term that has not finished.
	OpenEnded = "Present"
)

// ParseJSON extracts the first JSON object in raw and unmarshals it into a T.
// Anything before the first '{' or after the last '}' is ignored.
func ParseJSON[T any](raw string) (T, error) {
	var zero T

	start := strings.IndexByte(raw, '{')
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found (missing '{')")
	}
	end := strings.LastIndexByte(raw, '}')
	if end < start {
		return zero, fmt.Errorf("no JSON object found (missing '}')")
	}

	var result T
	if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

type encodedName struct {
	Value string `json:"value"`
}

// DecodeName renders an entity name as stored by the graph backend. Names arrive as
// {"value": "<hex of the UTF-8 name>"}; values that are not in that shape are returned
// as they are.
func DecodeName(raw string) string {
	wrapped, err := ParseJSON[encodedName](raw)
	if err != nil || wrapped.Value == "" {
		return raw
	}
	decoded, err := hex.DecodeString(wrapped.Value)
	if err != nil {
		return wrapped.Value
	}
	return string(decoded)
}

// NormalizeTimestamp turns a caller supplied date (YYYY-MM-DD or RFC3339) into the
// UTC instant used for activeAt filters and interval comparisons.
func NormalizeTimestamp(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(dateLayout, date); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", date)
	}
	return t.UTC(), nil
}

// FormatTerm renders [start, end) as "2022 Jul - 2024 Sep", or as
// "2020-01-01 - 2022-01-01" when full is set. A nil end renders as OpenEnded.
func FormatTerm(start time.Time, end *time.Time, full bool) string {
	layout := monthYearLayout
	if full {
		layout = dateLayout
	}
	to := OpenEnded
	if end != nil {
		to = end.UTC().Format(layout)
	}
	return fmt.Sprintf("%s - %s", start.UTC().Format(layout), to)
}
