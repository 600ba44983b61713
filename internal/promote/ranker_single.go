package promote

import (
	"fmt"
	"math"

	"github.com/strikelab/optionscan/internal/contracts"
)

// singleLegRanker maximizes |delta| for directional single-leg
// strategies, breaking ties toward the tightest bid-ask spread.
type singleLegRanker struct{}

func (r *singleLegRanker) Score(c contracts.Candidate, spot float64) (float64, bool) {
	if len(c.Legs) != 1 {
		return 0, false
	}
	return math.Abs(c.Legs[0].Quote.Delta), true
}

func (r *singleLegRanker) Better(a, b contracts.Candidate, spot float64) bool {
	sa, _ := r.Score(a, spot)
	sb, _ := r.Score(b, spot)
	if sa != sb {
		return sa > sb
	}

	// Tightest spread wins the tie
	pa, pb := a.WorstSpreadPct(), b.WorstSpreadPct()
	if pa != pb {
		return pa < pb
	}

	return lessStrikes(a, b)
}

func (r *singleLegRanker) Rationale(c contracts.Candidate, spot float64) string {
	q := c.Legs[0].Quote
	return fmt.Sprintf("%s %.2f delta %.3f, spread %.1f%%",
		q.Type, q.Strike, q.Delta, q.SpreadPct()*100)
}
