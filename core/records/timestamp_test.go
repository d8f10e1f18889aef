package records

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseTimestampLayouts(t *testing.T) {
	cases := map[string]string{
		"2024-01-15T10:00:00Z":        "2024-01-15T10:00:00Z",
		"2024-01-15T10:00:00+00:00":   "2024-01-15T10:00:00Z",
		"2024-01-15T12:00:00+02:00":   "2024-01-15T10:00:00Z",
		"2024-01-15T10:00:00.123456":  "2024-01-15T10:00:00.123456Z",
		"2024-01-15 10:00:00":         "2024-01-15T10:00:00Z",
		"2024-01-15":                  "2024-01-15T00:00:00Z",
		"2024-01-15T10:00":            "2024-01-15T10:00:00Z",
		"2024-01-15T10:00:00.5-01:00": "2024-01-15T11:00:00.5Z",
		"2024-01-15T10:30Z":           "2024-01-15T10:30:00Z",
		"2024-01-15T10:30+02:00":      "2024-01-15T08:30:00Z",
		"2024-01-15T10:30:00+0200":    "2024-01-15T08:30:00Z",
		"2024-01-15T10:30+0200":       "2024-01-15T08:30:00Z",
		"2024-01-15T10":               "2024-01-15T10:00:00Z",
		"2024-01-15T10Z":              "2024-01-15T10:00:00Z",
		"2024-01-15T10-03:00":         "2024-01-15T13:00:00Z",
		"2024-01-15 10:30":            "2024-01-15T10:30:00Z",
	}
	for in, want := range cases {
		ts := ParseTimestamp(in)
		assert.True(t, ts.Valid(), in)
		assert.Equal(t, want, ts.String(), in)
	}
}

func TestZeroInstantIsAPresentValue(t *testing.T) {
	ts := ParseTimestamp("0001-01-01T00:00:00Z")
	assert.True(t, ts.Valid())
	assert.False(t, ts.IsZero())
	assert.Equal(t, "0001-01-01T00:00:00Z", ts.String())

	raw, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"0001-01-01T00:00:00Z"`, string(raw))

	var absent Timestamp
	assert.True(t, absent.IsZero())
	assert.False(t, absent.Valid())
}

func TestMalformedTimestampIsKeptVerbatim(t *testing.T) {
	ts := ParseTimestamp("last Tuesday")
	assert.False(t, ts.Valid())
	assert.False(t, ts.IsZero())
	assert.Equal(t, "last Tuesday", ts.String())

	raw, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"last Tuesday"`, string(raw))
}

func TestTimestampStructuredForms(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`1705312800.5`), &ts))
	assert.Equal(t, "2024-01-15T10:00:00.5Z", ts.String())

	require.NoError(t, json.Unmarshal([]byte(`{"$date": "2024-01-15T10:00:00Z"}`), &ts))
	assert.Equal(t, "2024-01-15T10:00:00Z", ts.String())

	require.NoError(t, json.Unmarshal([]byte(`{"$date": 1705312800000}`), &ts))
	assert.Equal(t, "2024-01-15T10:00:00Z", ts.String())

	require.NoError(t, json.Unmarshal([]byte(`{"$date": {"$numberLong": "1705312800000"}}`), &ts))
	assert.Equal(t, "2024-01-15T10:00:00Z", ts.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`true`), &ts))
}

func TestTimestampBSONRoundTrip(t *testing.T) {
	doc := struct {
		At  Timestamp `bson:"at"`
		Raw Timestamp `bson:"raw"`
	}{At: NewTimestamp(time.Date(2024, 5, 1, 9, 30, 0, 0, time.FixedZone("x", 3600))), Raw: ParseTimestamp("someday")}

	data, err := bson.Marshal(doc)
	require.NoError(t, err)

	var plain bson.M
	require.NoError(t, bson.Unmarshal(data, &plain))
	assert.Equal(t, "2024-05-01T08:30:00Z", plain["at"])
	assert.Equal(t, "someday", plain["raw"])

	var back struct {
		At  Timestamp `bson:"at"`
		Raw Timestamp `bson:"raw"`
	}
	require.NoError(t, bson.Unmarshal(data, &back))
	assert.Equal(t, doc.At.String(), back.At.String())
	assert.Equal(t, "someday", back.Raw.String())
}
