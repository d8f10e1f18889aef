package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// TimestampLayout is the canonical persisted encoding.
const TimestampLayout = time.RFC3339Nano

// timestampLayouts covers the ISO-8601 shapes clients send: seconds, minutes
// or hours, with a Z, a ±hh:mm or ±hhmm offset, or naive (read as UTC).
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15Z07:00",
	"2006-01-02T15Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Timestamp holds either a parsed instant or a raw string that did not parse.
// Raw strings are written back verbatim.
type Timestamp struct {
	t      time.Time
	raw    string
	parsed bool
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t.UTC(), parsed: true}
}

// ParseTimestamp never fails: unparseable input is preserved as raw text.
func ParseTimestamp(s string) Timestamp {
	v := strings.TrimSpace(s)
	if v == "" {
		return Timestamp{raw: s}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return NewTimestamp(t)
		}
	}
	return Timestamp{raw: s}
}

// IsZero reports an absent value. The zero instant itself is present.
func (ts Timestamp) IsZero() bool { return !ts.parsed && ts.raw == "" }

// Valid reports whether the value carries a parsed instant.
func (ts Timestamp) Valid() bool { return ts.parsed }

func (ts Timestamp) Time() time.Time { return ts.t }

func (ts Timestamp) String() string {
	if ts.Valid() {
		return ts.t.UTC().Format(TimestampLayout)
	}
	return ts.raw
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.String())
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*ts = ParseTimestamp(s)
		return nil
	case '{':
		var ext struct {
			Date json.RawMessage `json:"$date"`
		}
		if err := json.Unmarshal(data, &ext); err != nil {
			return err
		}
		if len(ext.Date) == 0 {
			return &FieldError{Field: "timestamp", Message: "expected timestamp string, number or {\"$date\": ...}"}
		}
		if bytes.HasPrefix(bytes.TrimSpace(ext.Date), []byte("{")) {
			var legacy struct {
				Number string `json:"$numberLong"`
			}
			if err := json.Unmarshal(ext.Date, &legacy); err != nil || legacy.Number == "" {
				return &FieldError{Field: "timestamp", Message: "unsupported extended date form"}
			}
			var ms float64
			if _, err := fmt.Sscan(legacy.Number, &ms); err != nil {
				return &FieldError{Field: "timestamp", Message: "unsupported extended date form"}
			}
			*ts = NewTimestamp(time.UnixMilli(int64(ms)))
			return nil
		}
		if ext.Date[0] == '"' {
			return ts.UnmarshalJSON(ext.Date)
		}
		var ms float64
		if err := json.Unmarshal(ext.Date, &ms); err != nil {
			return &FieldError{Field: "timestamp", Message: "unsupported extended date form"}
		}
		*ts = NewTimestamp(time.UnixMilli(int64(ms)))
		return nil
	default:
		var secs float64
		if err := json.Unmarshal(data, &secs); err != nil {
			return &FieldError{Field: "timestamp", Message: "expected timestamp string or number"}
		}
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return &FieldError{Field: "timestamp", Message: "expected finite timestamp"}
		}
		whole, frac := math.Modf(secs)
		*ts = NewTimestamp(time.Unix(int64(whole), int64(frac*1e9)))
		return nil
	}
}

func (ts Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if ts.IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(ts.String())
}

func (ts *Timestamp) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*ts = Timestamp{}
	case bson.TypeString:
		*ts = ParseTimestamp(raw.StringValue())
	case bson.TypeDateTime:
		*ts = NewTimestamp(raw.Time())
	default:
		return fmt.Errorf("cannot decode %s into timestamp", t)
	}
	return nil
}
