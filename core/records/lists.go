package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList decodes from a JSON array or from a comma-delimited string.
type StringList []string

// SplitList splits on commas, trims each piece and drops empties.
func SplitList(s string) StringList {
	out := StringList{}
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = SplitList(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return &FieldError{Field: "list", Message: "expected a list of strings or a comma-separated string"}
	}
	*l = StringList(items)
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Coordinates is a [longitude, latitude] pair. The GeoJSON Point mapping
// {"type": "Point", "coordinates": [lon, lat]} is accepted on input only.
type Coordinates []float64

func (c *Coordinates) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var point struct {
			Type        string          `json:"type"`
			Coordinates json.RawMessage `json:"coordinates"`
		}
		if err := json.Unmarshal(data, &point); err != nil {
			return &FieldError{Field: "coordinates", Message: coordinatesShape}
		}
		if point.Type != "" && !strings.EqualFold(point.Type, "Point") {
			return &FieldError{Field: "coordinates", Message: fmt.Sprintf("unsupported geometry type %q, %s", point.Type, coordinatesShape)}
		}
		if len(point.Coordinates) == 0 {
			return &FieldError{Field: "coordinates", Message: coordinatesShape}
		}
		data = point.Coordinates
	}
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return &FieldError{Field: "coordinates", Message: coordinatesShape}
	}
	*c = Coordinates(values)
	return nil
}

const coordinatesShape = "expected [longitude, latitude] with exactly 2 numbers"

func (c Coordinates) validate() error {
	if len(c) != 2 {
		return fmt.Errorf("%s, got %d", coordinatesShape, len(c))
	}
	return nil
}
