package promote

import (
	"fmt"
	"math"

	"github.com/strikelab/optionscan/internal/contracts"
)

// volatilityRanker maximizes vega subject to a minimum floor, breaking
// ties toward the strike set closest to the money. Covers straddles,
// strangles and calendars.
type volatilityRanker struct {
	minVega float64
}

func (r *volatilityRanker) Score(c contracts.Candidate, spot float64) (float64, bool) {
	vega := c.NetVega()
	if vega < r.minVega {
		return 0, false
	}
	return vega, true
}

func (r *volatilityRanker) Better(a, b contracts.Candidate, spot float64) bool {
	sa, _ := r.Score(a, spot)
	sb, _ := r.Score(b, spot)
	if sa != sb {
		return sa > sb
	}

	// Closest to ATM wins the tie
	da, db := atmDistance(a, spot), atmDistance(b, spot)
	if da != db {
		return da < db
	}

	return lessStrikes(a, b)
}

func (r *volatilityRanker) Rationale(c contracts.Candidate, spot float64) string {
	return fmt.Sprintf("net vega %.3f, mean strike distance %.2f from spot",
		c.NetVega(), atmDistance(c, spot))
}

// atmDistance returns the mean absolute strike distance from spot
func atmDistance(c contracts.Candidate, spot float64) float64 {
	if len(c.Legs) == 0 {
		return 0
	}
	var sum float64
	for _, leg := range c.Legs {
		sum += math.Abs(leg.Quote.Strike - spot)
	}
	return sum / float64(len(c.Legs))
}
