package promote

import (
	"fmt"
	"math"

	"github.com/strikelab/optionscan/internal/contracts"
)

// condorRanker maximizes credit weighted by how symmetrically the
// short strikes sit around the underlying, breaking ties toward
// higher combined short-leg open interest.
type condorRanker struct{}

func (r *condorRanker) Score(c contracts.Candidate, spot float64) (float64, bool) {
	credit := c.NetPremium()
	if credit <= 0 || spot <= 0 {
		return 0, false
	}
	return credit / (1 + condorAsymmetry(c, spot)/spot), true
}

func (r *condorRanker) Better(a, b contracts.Candidate, spot float64) bool {
	sa, _ := r.Score(a, spot)
	sb, _ := r.Score(b, spot)
	if sa != sb {
		return sa > sb
	}

	// Higher combined short-leg open interest wins the tie
	oa, ob := shortOpenInterest(a), shortOpenInterest(b)
	if oa != ob {
		return oa > ob
	}

	return lessStrikes(a, b)
}

func (r *condorRanker) Rationale(c contracts.Candidate, spot float64) string {
	return fmt.Sprintf("credit %.2f with short strikes %.2f off symmetric, short-leg OI %d",
		c.NetPremium(), condorAsymmetry(c, spot), shortOpenInterest(c))
}

// condorAsymmetry measures how far the short strikes sit from a
// symmetric straddle of the underlying price
func condorAsymmetry(c contracts.Candidate, spot float64) float64 {
	var below, above float64
	for _, leg := range c.ShortLegs() {
		if leg.Quote.Strike < spot {
			below = spot - leg.Quote.Strike
		} else {
			above = leg.Quote.Strike - spot
		}
	}
	return math.Abs(above - below)
}

// shortOpenInterest sums the sold legs' open interest
func shortOpenInterest(c contracts.Candidate) int64 {
	var sum int64
	for _, leg := range c.ShortLegs() {
		sum += leg.Quote.OpenInterest
	}
	return sum
}
