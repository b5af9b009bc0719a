package risk

import (
	"math"

	"github.com/payshield/payshield/internal/domain"
	"github.com/payshield/payshield/internal/models"
)

// FeatureCount is the dimensionality of the classifier input vector. The
// ordering below must match the feature layout the model was trained on
// and must never be reordered.
const FeatureCount = 22

// FeatureInput gathers everything the feature extractor needs. Balances
// are pre-transaction; amounts in micros.
type FeatureInput struct {
	Amount          int64
	SenderBalance   int64
	ReceiverBalance int64
	PaymentType     domain.PaymentType
	Velocity        models.VelocityFeatures
}

// BuildFeatureVector derives the fixed-order numeric vector consumed by
// the classifier port. Monetary features are expressed in whole currency
// units, the scale used at training time.
func BuildFeatureVector(in FeatureInput) [FeatureCount]float64 {
	amount := domain.MicrosToFloat(in.Amount)
	senderBefore := domain.MicrosToFloat(in.SenderBalance)
	senderAfter := senderBefore - amount
	receiverBefore := domain.MicrosToFloat(in.ReceiverBalance)
	receiverAfter := receiverBefore + amount

	amountToBalance := 0.0
	if senderBefore > 0 {
		amountToBalance = amount / senderBefore
	}
	drainPct := DrainPercent(in.Amount, in.SenderBalance)

	return [FeatureCount]float64{
		amount,
		senderBefore,
		senderAfter,
		receiverBefore,
		receiverAfter,
		amountToBalance,
		oneHot(in.PaymentType == domain.PaymentTransfer),
		oneHot(in.PaymentType == domain.PaymentCashOut),
		oneHot(in.PaymentType == domain.PaymentPayment),
		oneHot(in.PaymentType == domain.PaymentDebit),
		oneHot(in.PaymentType == domain.PaymentCashIn),
		float64(in.Velocity.Transactions24h),
		float64(in.Velocity.Transactions1h),
		domain.MicrosToFloat(in.Velocity.Volume24h),
		drainPct / 100,
		oneHot(drainPct > drainCriticalPct),
		oneHot(drainPct > drainHighPct),
		oneHot(in.Velocity.Transactions1h > VelocityHourlyLimit),
		oneHot(in.Velocity.Transactions24h > VelocityDailyLimit),
		balanceAsymmetry(senderBefore, receiverBefore),
		oneHot(in.Amount > largeAmountMicros),
		math.Log1p(amount),
	}
}

func oneHot(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// balanceAsymmetry measures how lopsided the two balances are, normalized
// to [0,1] with a floor of 1 in the denominator to avoid division by zero.
func balanceAsymmetry(sender, receiver float64) float64 {
	return math.Abs(sender-receiver) / math.Max(math.Max(sender, receiver), 1)
}
