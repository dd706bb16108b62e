package stats

import (
	"fmt"
	"math"

	"github.com/spf13/cast"
)

// Score extracts the "score" entry of a finished run as a float64. Numbers and
// numeric strings are accepted; missing, nil, boolean and non-finite values
// are rejected with ErrInvalidScore.
func Score(stats map[string]any) (float64, error) {
	raw, ok := stats["score"]
	if !ok {
		return 0, fmt.Errorf("%w: missing \"score\" entry", ErrInvalidScore)
	}
	switch raw.(type) {
	case nil:
		return 0, fmt.Errorf("%w: score is nil", ErrInvalidScore)
	case bool:
		return 0, fmt.Errorf("%w: score is a boolean", ErrInvalidScore)
	}

	score, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidScore, err)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: score %v is not finite", ErrInvalidScore, score)
	}
	return score, nil
}
