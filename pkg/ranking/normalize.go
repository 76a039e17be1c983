package ranking

import "keyword-report/pkg/api"

// Normalize collapses an API volume to a definite non-negative count.
// Below-threshold markers and negative counts become 0.
func Normalize(v api.Volume) int64 {
	count, measured := v.Count()
	if !measured || count < 0 {
		return 0
	}
	return count
}
