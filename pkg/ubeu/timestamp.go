package ubeu

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp is a time value the platform encodes as RFC3339, a bare date or
// epoch milliseconds
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	// Handle null/empty
	if str == "" || str == "null" {
		t.Time = time.Time{}
		return nil
	}

	// Unquoted numbers are epoch milliseconds
	if data[0] != '"' {
		ms, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return fmt.Errorf("unable to parse timestamp: %s", str)
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, str); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("unable to parse timestamp: %s", str)
}

// MarshalJSON implements json.Marshaler for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.Time.Format(time.RFC3339Nano))), nil
}

// String returns the timestamp in RFC3339
func (t Timestamp) String() string {
	if t.Time.IsZero() {
		return ""
	}
	return t.Time.Format(time.RFC3339)
}
