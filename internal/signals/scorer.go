package signals

import (
	"math"

	"egxcli/pkg/contracts/domain"
)

// AI_Prob coefficients. The score is a fixed linear heuristic.
const (
	ScoreBase         = 0.5
	ScoreChangeWeight = 0.07
	ScoreFlowWeight   = 0.3
	ScoreBehavior     = 0.08
	ScoreMin          = 0.05
	ScoreMax          = 0.95
)

// Score computes AI_Prob for one row.
func Score(changePct, buyRatio domain.Num, behavior domain.Behavior) float64 {
	p := ScoreBase

	switch c := changePct.Or(0); {
	case c > 0:
		p += ScoreChangeWeight
	case c < 0:
		p -= ScoreChangeWeight
	}

	if buyRatio.Valid() {
		p += ScoreFlowWeight * (buyRatio.Float() - 0.5)
	}

	switch behavior {
	case domain.BehaviorAccumulation:
		p += ScoreBehavior
	case domain.BehaviorDistribution:
		p -= ScoreBehavior
	}

	return math.Max(ScoreMin, math.Min(ScoreMax, p))
}

// ApplyAIScore assigns AI_Prob to every row. A table that is already
// scored is returned unchanged.
func ApplyAIScore(table domain.SignalTable) domain.SignalTable {
	if table.Scored {
		return table
	}

	out := table.Clone()
	for i := range out.Rows {
		r := &out.Rows[i]
		r.AIProb = domain.Num(Score(r.ChangePct, r.BuyRatio, r.Behavior))
	}
	out.Scored = true
	out.Columns = out.Columns.With(domain.ColAIProb)
	return out
}
