package domain

// PaymentType is the closed set of supported payment instruments.
type PaymentType string

const (
	PaymentTransfer PaymentType = "TRANSFER"
	PaymentCashOut  PaymentType = "CASH_OUT"
	PaymentPayment  PaymentType = "PAYMENT"
	PaymentDebit    PaymentType = "DEBIT"
	PaymentCashIn   PaymentType = "CASH_IN"
)

// Valid reports whether pt is one of the enumerated payment types.
func (pt PaymentType) Valid() bool {
	switch pt {
	case PaymentTransfer, PaymentCashOut, PaymentPayment, PaymentDebit, PaymentCashIn:
		return true
	}
	return false
}

// Decision is the routing of a scored transaction.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReview  Decision = "REVIEW"
	DecisionBlock   Decision = "BLOCK"
)

// RiskLevel qualifies a decision for audit and alerting consumers.
type RiskLevel string

const (
	RiskLow           RiskLevel = "LOW"
	RiskMedium        RiskLevel = "MEDIUM"
	RiskHigh          RiskLevel = "HIGH"
	RiskCritical      RiskLevel = "CRITICAL"
	RiskAdminApproved RiskLevel = "ADMIN_APPROVED"
	RiskAdminRejected RiskLevel = "ADMIN_REJECTED"
)

const (
	AccountStatusActive    = "active"
	AccountStatusSuspended = "suspended"

	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)
