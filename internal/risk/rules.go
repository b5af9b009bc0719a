package risk

import (
	"fmt"

	"github.com/payshield/payshield/internal/domain"
	"github.com/payshield/payshield/internal/models"
)

// Rule score weights. Rules only ever raise the score via max, never lower
// it, so evaluation order cannot reduce risk.
const (
	scoreInsufficientFunds = 1.0
	scoreHighVelocity      = 0.65
	scoreDrainCritical     = 0.75
	scoreDrainHigh         = 0.55
	scoreDrainModerate     = 0.35
	scoreVeryLargeAmount   = 0.6
	scoreLargeAmount       = 0.4
	scoreLargeCashOut      = 0.5
)

// Amount thresholds in micros.
const (
	veryLargeAmountMicros = 75_000_000_000 // 75,000
	largeAmountMicros     = 50_000_000_000 // 50,000
	cashOutAmountMicros   = 10_000_000_000 // 10,000
)

// Drain percentage tiers. Only the single highest matching tier applies.
const (
	drainCriticalPct = 90.0
	drainHighPct     = 70.0
	drainModeratePct = 50.0
)

// NoRiskFactors is the placeholder factor emitted when no rule fires.
// Cosmetic only; fusion ignores it.
const NoRiskFactors = "No specific risk factors detected"

// DrainPercent returns the share of the sender balance the amount would
// consume, as a percentage. Zero when the balance is zero or negative.
func DrainPercent(amount, senderBalance int64) float64 {
	if senderBalance <= 0 {
		return 0
	}
	return float64(amount) / float64(senderBalance) * 100
}

// EvaluateRules runs the fixed, ordered business rules over a transaction.
// It is a pure function: same inputs always produce the same score, factor
// list, and hard-block flag. Each triggered rule appends a human-readable
// factor and raises the score monotonically.
func EvaluateRules(amount, senderBalance int64, paymentType domain.PaymentType, velocity models.VelocityFeatures) models.RiskAssessment {
	var (
		factors    []string
		ruleScore  float64
		isCritical bool
	)

	// Rule 1: insufficient funds. Absolute block, independent of fusion.
	if amount > senderBalance {
		factors = append(factors, fmt.Sprintf("Insufficient funds: %s available, %s requested",
			domain.NewMoney(senderBalance), domain.NewMoney(amount)))
		ruleScore = scoreInsufficientFunds
		isCritical = true
	}

	// Rule 2: high velocity.
	if velocity.HighVelocity {
		factors = append(factors, fmt.Sprintf("High transaction velocity: %d txns in last hour, %d in last 24h",
			velocity.Transactions1h, velocity.Transactions24h))
		ruleScore = max(ruleScore, scoreHighVelocity)
	}

	// Rule 3: account drain. Tiers are mutually exclusive; only the
	// highest matching tier fires.
	drainPct := DrainPercent(amount, senderBalance)
	if drainPct > drainCriticalPct {
		factors = append(factors, fmt.Sprintf("Critical account drain: %.1f%% of balance", drainPct))
		ruleScore = max(ruleScore, scoreDrainCritical)
	} else if drainPct > drainHighPct {
		factors = append(factors, fmt.Sprintf("High account drain: %.1f%% of balance", drainPct))
		ruleScore = max(ruleScore, scoreDrainHigh)
	} else if drainPct > drainModeratePct {
		factors = append(factors, fmt.Sprintf("Moderate account drain: %.1f%% of balance", drainPct))
		ruleScore = max(ruleScore, scoreDrainModerate)
	}

	// Rule 4: large absolute amount. Both checks are independent and may
	// fire together, each with its own factor.
	if amount > veryLargeAmountMicros {
		factors = append(factors, fmt.Sprintf("Very large transaction amount: %s", domain.NewMoney(amount)))
		ruleScore = max(ruleScore, scoreVeryLargeAmount)
	}
	if amount > largeAmountMicros {
		factors = append(factors, fmt.Sprintf("Large transaction amount: %s", domain.NewMoney(amount)))
		ruleScore = max(ruleScore, scoreLargeAmount)
	}

	// Rule 5: cash-out pattern.
	if paymentType == domain.PaymentCashOut && amount > cashOutAmountMicros {
		factors = append(factors, "Large cash-out transaction")
		ruleScore = max(ruleScore, scoreLargeCashOut)
	}

	if len(factors) == 0 {
		factors = append(factors, NoRiskFactors)
	}

	return models.RiskAssessment{
		RuleScore:   ruleScore,
		RiskFactors: factors,
		IsCritical:  isCritical,
	}
}
