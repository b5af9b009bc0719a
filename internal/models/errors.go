package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the risk decision pipeline. Every category in the
// error taxonomy is distinguishable to the caller with errors.Is/errors.As.
var (
	// ErrInsufficientFunds is returned when an admin approval finds the
	// sender balance no longer covers the amount. The transaction stays
	// in REVIEW.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound signals an unknown sender account reference.
	// Scoring never starts and no transaction record is created.
	ErrAccountNotFound = errors.New("account not found")

	// ErrUserNotFound signals an unknown user reference.
	ErrUserNotFound = errors.New("user not found")

	// ErrTransactionNotFound signals an unknown transaction identifier.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTransactionBlocked is returned when an admin attempts to approve
	// a BLOCK transaction. Blocked transactions cannot be resurrected.
	ErrTransactionBlocked = errors.New("blocked transaction cannot be approved")

	// ErrNotReviewable is returned when an admin transition targets a
	// transaction that is neither REVIEW nor already approved.
	ErrNotReviewable = errors.New("only transactions under review can be transitioned")

	// ErrVelocityUnavailable is returned when the ledger cannot be queried
	// for velocity features. The aggregator fails closed: callers must not
	// score with zeroed velocity.
	ErrVelocityUnavailable = errors.New("velocity features unavailable")

	// ErrSettlementFailed marks a balance mutation that could not be
	// applied. The decision transition is rolled back with it.
	ErrSettlementFailed = errors.New("settlement failed")
)

// ValidationError rejects a malformed request before scoring.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// GatewayDeclinedError short-circuits scoring when the payment gateway
// refuses the card details. The transaction is recorded as BLOCK/CRITICAL.
type GatewayDeclinedError struct {
	Reason string
}

func (e *GatewayDeclinedError) Error() string {
	return "payment declined: " + e.Reason
}

// BlacklistedError short-circuits scoring when the receiver account number
// is blacklisted.
type BlacklistedError struct {
	AccountNumber string
}

func (e *BlacklistedError) Error() string {
	return "receiver account is blacklisted"
}
