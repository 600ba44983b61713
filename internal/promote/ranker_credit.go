package promote

import (
	"fmt"
	"math"

	"github.com/strikelab/optionscan/internal/contracts"
)

// creditSpreadRanker maximizes credit received over max risk, breaking
// ties toward the further-OTM short leg (higher probability-of-profit
// proxy).
type creditSpreadRanker struct{}

func (r *creditSpreadRanker) Score(c contracts.Candidate, spot float64) (float64, bool) {
	credit := c.NetPremium()
	maxRisk := c.Width() - credit
	if credit <= 0 || maxRisk <= 0 {
		return 0, false
	}
	return credit / maxRisk, true
}

func (r *creditSpreadRanker) Better(a, b contracts.Candidate, spot float64) bool {
	sa, _ := r.Score(a, spot)
	sb, _ := r.Score(b, spot)
	if sa != sb {
		return sa > sb
	}

	// Further OTM short leg wins the tie
	da, db := shortLegDistance(a, spot), shortLegDistance(b, spot)
	if da != db {
		return da > db
	}

	return lessStrikes(a, b)
}

func (r *creditSpreadRanker) Rationale(c contracts.Candidate, spot float64) string {
	score, _ := r.Score(c, spot)
	return fmt.Sprintf("credit %.2f on width %.2f (%.1f%% return on risk), short leg %.1f%% from spot",
		c.NetPremium(), c.Width(), score*100, shortLegDistance(c, spot)/spot*100)
}

// shortLegDistance returns the distance of the nearest short leg from
// the underlying price
func shortLegDistance(c contracts.Candidate, spot float64) float64 {
	shorts := c.ShortLegs()
	if len(shorts) == 0 {
		return 0
	}
	dist := math.Abs(shorts[0].Quote.Strike - spot)
	for _, leg := range shorts[1:] {
		if d := math.Abs(leg.Quote.Strike - spot); d < dist {
			dist = d
		}
	}
	return dist
}
