package ranking

import (
	"math"
	"strconv"
)

// NoScore is the sentinel the stats store returns when a game has no history.
const NoScore = -1.0

// Medal represents the decoration for a podium position
type Medal struct {
	Position int
	Symbol   string
	Color    string
}

// Podium medals in ascending position order
var Medals = []Medal{
	{Position: 1, Symbol: "🥇", Color: "#FFD700"},
	{Position: 2, Symbol: "🥈", Color: "#C0C0C0"},
	{Position: 3, Symbol: "🥉", Color: "#CD7F32"},
}

// MedalFor returns the medal for a 1-based position, or false past the podium.
func MedalFor(position int) (Medal, bool) {
	for _, m := range Medals {
		if m.Position == position {
			return m, true
		}
	}
	return Medal{}, false
}

// Symbol returns the medal symbol for a position, falling back to "#n".
func Symbol(position int) string {
	if m, ok := MedalFor(position); ok {
		return m.Symbol
	}
	return "#" + strconv.Itoa(position)
}

// Standing is one line of a ranking table.
type Standing struct {
	Position int
	Score    float64
	Medal    string
}

// Standings assigns positions to scores that are already sorted best first.
// Equal scores share a position and the next distinct score skips ahead
// (50, 50, 30 -> 1, 1, 3).
func Standings(sorted []float64) []Standing {
	out := make([]Standing, 0, len(sorted))
	for i, score := range sorted {
		pos := i + 1
		if i > 0 && score == sorted[i-1] {
			pos = out[i-1].Position
		}
		out = append(out, Standing{Position: pos, Score: score, Medal: Symbol(pos)})
	}
	return out
}

// Placement returns the position score would take among history.
func Placement(score float64, history []float64) int {
	better := 0
	for _, h := range history {
		if h > score {
			better++
		}
	}
	return better + 1
}

// IsNewHigh reports whether score beats the previous high score. Any finite
// score beats NoScore.
func IsNewHigh(score, previous float64) bool {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return false
	}
	if previous == NoScore {
		return true
	}
	return score > previous
}
