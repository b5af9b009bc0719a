package risk

import (
	"github.com/payshield/payshield/internal/domain"
)

// Fusion policy thresholds.
const (
	ruleRiskThreshold  = 0.3
	mlSuspectThreshold = 0.5

	ruleWeight = 0.6
	mlWeight   = 0.4
)

// Decision boundaries on the fused score. Boundaries are exclusive: a final
// score of exactly 0.7 maps to REVIEW, not BLOCK.
const (
	blockThreshold  = 0.7
	reviewThreshold = 0.5
	mediumThreshold = 0.3
)

// Fuse combines the deterministic rule score with the classifier
// probability into one actionable score. The policy is rule-dominant:
//   - rules already flag real risk (rule >= 0.3): take the max so either
//     signal can escalate;
//   - rules say safe but the classifier disagrees (ml > 0.5): weighted
//     average that trusts the rules more, damping classifier false
//     positives on rule-clean transactions;
//   - both agree it is safe: max.
func Fuse(ruleScore, mlScore float64) float64 {
	if ruleScore >= ruleRiskThreshold {
		return max(ruleScore, mlScore)
	}
	if mlScore > mlSuspectThreshold {
		return ruleWeight*ruleScore + mlWeight*mlScore
	}
	return max(ruleScore, mlScore)
}

// Classify maps a fused score to a decision and risk level. A critical
// rule hit short-circuits to BLOCK regardless of score.
func Classify(finalScore float64, isCritical bool) (domain.Decision, domain.RiskLevel) {
	switch {
	case isCritical, finalScore > blockThreshold:
		return domain.DecisionBlock, domain.RiskCritical
	case finalScore > reviewThreshold:
		return domain.DecisionReview, domain.RiskHigh
	case finalScore > mediumThreshold:
		return domain.DecisionReview, domain.RiskMedium
	default:
		return domain.DecisionApprove, domain.RiskLow
	}
}
