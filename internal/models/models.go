package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/payshield/payshield/internal/domain"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Account struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	AccountNumber  string    `json:"account_number"`
	BankName       string    `json:"bank_name"`
	ExpiryDate     string    `json:"expiry_date"` // MM/YY, checked by the gateway
	Balance        int64     `json:"balance_micros"`
	OpeningBalance int64     `json:"-"`
	IsPrimary      bool      `json:"is_primary"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// TransactionRequest is the immutable money-movement request as submitted.
// SenderAccountID is optional; when nil the user's primary account is used.
type TransactionRequest struct {
	SenderAccountID *uuid.UUID         `json:"sender_account_id,omitempty"`
	ReceiverAccount string             `json:"receiver_account"`
	Amount          int64              `json:"amount_micros"`
	PaymentType     domain.PaymentType `json:"payment_type"`
	CVV             string             `json:"cvv"`
	Purpose         string             `json:"purpose"`
}

// VelocityFeatures is a read-side projection over the transaction ledger.
// It is computed fresh per request and attached to the transaction record
// for audit only, never treated as authoritative state.
type VelocityFeatures struct {
	Transactions1h  int   `json:"transactions_1h"`
	Transactions24h int   `json:"transactions_24h"`
	Volume24h       int64 `json:"volume_24h_micros"`
	HighVelocity    bool  `json:"high_velocity"`
}

// RiskAssessment carries the rule, classifier and fused scores along with
// the human-readable factors that explain them.
type RiskAssessment struct {
	RuleScore   float64  `json:"rule_score"`
	MLScore     float64  `json:"ml_score"`
	FinalScore  float64  `json:"final_score"`
	RiskFactors []string `json:"risk_factors"`
	IsCritical  bool     `json:"is_critical"`
}

// Transaction is the sole source of truth for whether settlement occurred.
// Settlement must never be inferred from account balances alone.
type Transaction struct {
	ID              string             `json:"transaction_id"`
	UserID          uuid.UUID          `json:"user_id"`
	SenderAccountID uuid.UUID          `json:"sender_account_id"`
	ReceiverAccount string             `json:"receiver_account"`
	Amount          int64              `json:"amount_micros"`
	PaymentType     domain.PaymentType `json:"payment_type"`
	Purpose         string             `json:"purpose"`
	Decision        domain.Decision    `json:"decision"`
	RiskLevel       domain.RiskLevel   `json:"risk_level"`
	Assessment      RiskAssessment     `json:"assessment"`
	Velocity        VelocityFeatures   `json:"velocity"`
	SettledAt       *time.Time         `json:"settled_at,omitempty"`
	ApprovedBy      *uuid.UUID         `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty"`
	RejectedBy      *uuid.UUID         `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time         `json:"rejected_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// Settled reports whether the balance mutation for this transaction has
// already been applied.
func (t *Transaction) Settled() bool {
	return t.SettledAt != nil
}

// Alert is raised for every BLOCK or REVIEW decision and resolved by
// admin override.
type Alert struct {
	ID            int64            `json:"id"`
	TransactionID string           `json:"transaction_id"`
	UserID        uuid.UUID        `json:"user_id"`
	Decision      domain.Decision  `json:"decision"`
	RiskLevel     domain.RiskLevel `json:"risk_level"`
	RiskScore     float64          `json:"risk_score"`
	RiskFactors   []string         `json:"risk_factors"`
	Amount        int64            `json:"amount_micros"`
	RejectedBy    *uuid.UUID       `json:"rejected_by,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// SettlementImbalance flags an account whose balance no longer matches the
// net of its settled transactions since account creation.
type SettlementImbalance struct {
	AccountID uuid.UUID `json:"account_id"`
	Drift     int64     `json:"drift_micros"`
}

// DashboardStats aggregates decision outcomes for the analytics endpoint.
// Volume and averages only count approved (settled) transactions.
type DashboardStats struct {
	TotalTransactions  int64   `json:"total_transactions"`
	Approved           int64   `json:"approved"`
	Blocked            int64   `json:"blocked"`
	UnderReview        int64   `json:"under_review"`
	ApprovedVolume     int64   `json:"approved_volume_micros"`
	AverageTransaction int64   `json:"average_transaction_micros"`
	FraudDetectionRate float64 `json:"fraud_detection_rate"`
}
