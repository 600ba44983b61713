package promote

import (
	"fmt"
	"math"

	"github.com/strikelab/optionscan/internal/contracts"
)

// debitSpreadRanker maximizes directional delta per unit of theta
// decay, breaking ties toward the tighter bid-ask spread. Also used
// for PMCC structures, which share the long-delta/short-theta shape.
type debitSpreadRanker struct{}

func (r *debitSpreadRanker) Score(c contracts.Candidate, spot float64) (float64, bool) {
	theta := math.Abs(c.NetTheta())
	if theta == 0 {
		// Undefined metric, exclude rather than divide toward infinity
		return 0, false
	}
	return math.Abs(c.NetDelta()) / theta, true
}

func (r *debitSpreadRanker) Better(a, b contracts.Candidate, spot float64) bool {
	sa, _ := r.Score(a, spot)
	sb, _ := r.Score(b, spot)
	if sa != sb {
		return sa > sb
	}

	// Tighter spread wins the tie
	pa, pb := a.WorstSpreadPct(), b.WorstSpreadPct()
	if pa != pb {
		return pa < pb
	}

	return lessStrikes(a, b)
}

func (r *debitSpreadRanker) Rationale(c contracts.Candidate, spot float64) string {
	score, _ := r.Score(c, spot)
	return fmt.Sprintf("delta %.3f per theta %.3f (ratio %.2f), worst leg spread %.1f%%",
		c.NetDelta(), c.NetTheta(), score, c.WorstSpreadPct()*100)
}
