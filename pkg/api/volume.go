package api

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// belowThresholdMarker is what the keyword tool sends instead of a count
// when monthly volume is too small to report
const belowThresholdMarker = "< 10"

// Volume is a monthly search count as reported by the API: either a
// measured integer or a below-threshold marker
type Volume struct {
	count    int64
	measured bool
}

// Measured returns a volume holding a reported count
func Measured(count int64) Volume {
	return Volume{count: count, measured: true}
}

// BelowThreshold returns a volume for a non-numeric "too small" marker
func BelowThreshold() Volume {
	return Volume{}
}

// Count returns the reported count and whether one was reported
func (v Volume) Count() (int64, bool) {
	return v.count, v.measured
}

// IsMeasured reports whether the API returned an integer count
func (v Volume) IsMeasured() bool {
	return v.measured
}

func (v Volume) String() string {
	if !v.measured {
		return belowThresholdMarker
	}
	return strconv.FormatInt(v.count, 10)
}

// UnmarshalJSON accepts an integer as Measured and any other JSON value,
// such as "< 10" or a fractional number, as BelowThreshold
func (v *Volume) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var marker string
		if err := json.Unmarshal(trimmed, &marker); err != nil {
			return err
		}
		*v = BelowThreshold()
		return nil
	}

	count, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		*v = BelowThreshold()
		return nil
	}

	*v = Measured(count)
	return nil
}

// MarshalJSON writes the same shape the API uses
func (v Volume) MarshalJSON() ([]byte, error) {
	if !v.measured {
		return json.Marshal(belowThresholdMarker)
	}
	return []byte(strconv.FormatInt(v.count, 10)), nil
}
