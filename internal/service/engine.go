package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/payshield/payshield/internal/classifier"
	"github.com/payshield/payshield/internal/domain"
	"github.com/payshield/payshield/internal/gateway"
	"github.com/payshield/payshield/internal/models"
	"github.com/payshield/payshield/internal/observability"
	"github.com/payshield/payshield/internal/risk"
)

// RiskEngine runs the full decision pipeline for a transaction: gateway
// authorization, blacklist check, velocity aggregation, rule evaluation,
// classifier scoring, fusion, and atomic persistence plus settlement.
type RiskEngine struct {
	store             Store
	velocity          *risk.VelocityAggregator
	classifier        classifier.Classifier
	gateway           gateway.Validator
	classifierTimeout time.Duration
	now               func() time.Time
}

func NewRiskEngine(store Store, cls classifier.Classifier, gw gateway.Validator, classifierTimeout time.Duration) *RiskEngine {
	return &RiskEngine{
		store:             store,
		velocity:          risk.NewVelocityAggregator(store.Ledger()),
		classifier:        cls,
		gateway:           gw,
		classifierTimeout: classifierTimeout,
		now:               time.Now,
	}
}

// ProcessTransaction scores req for userID, persists the resulting
// decision, and settles the funds when the decision is APPROVE. On a
// gateway decline or a blacklisted receiver the transaction is still
// recorded, as BLOCK/CRITICAL, and the returned error identifies the
// cause; the record accompanies the error so callers can surface its ID.
func (e *RiskEngine) ProcessTransaction(ctx context.Context, userID uuid.UUID, req models.TransactionRequest) (*models.Transaction, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	sender, err := e.resolveSender(ctx, userID, req.SenderAccountID)
	if err != nil {
		return nil, err
	}

	ok, reason, err := e.gateway.ValidatePaymentDetails(ctx, sender.AccountNumber, req.CVV, sender.ExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("gateway validation: %w", err)
	}
	if !ok {
		txn, perr := e.recordShortCircuit(ctx, userID, sender, req, "Payment gateway declined: "+reason)
		if perr != nil {
			return nil, perr
		}
		return txn, &models.GatewayDeclinedError{Reason: reason}
	}

	blacklisted, err := e.store.Blacklist().IsBlacklisted(ctx, req.ReceiverAccount)
	if err != nil {
		return nil, fmt.Errorf("blacklist check: %w", err)
	}
	if blacklisted {
		txn, perr := e.recordShortCircuit(ctx, userID, sender, req, "Receiver account is blacklisted")
		if perr != nil {
			return nil, perr
		}
		return txn, &models.BlacklistedError{AccountNumber: req.ReceiverAccount}
	}

	velocity, err := e.velocity.Collect(ctx, userID, e.now())
	if err != nil {
		return nil, err
	}

	receiverBalance := int64(0)
	receiver, err := e.store.Accounts().ResolveByNumber(ctx, req.ReceiverAccount)
	switch {
	case err == nil:
		receiverBalance = receiver.Balance
	case errors.Is(err, models.ErrAccountNotFound):
		// External receiver: settlement will let the funds exit.
	default:
		return nil, fmt.Errorf("resolve receiver: %w", err)
	}

	assessment := risk.EvaluateRules(req.Amount, sender.Balance, req.PaymentType, velocity)
	assessment.MLScore = e.scoreClassifier(ctx, risk.FeatureInput{
		Amount:          req.Amount,
		SenderBalance:   sender.Balance,
		ReceiverBalance: receiverBalance,
		PaymentType:     req.PaymentType,
		Velocity:        velocity,
	})
	assessment.FinalScore = risk.Fuse(assessment.RuleScore, assessment.MLScore)
	decision, riskLevel := risk.Classify(assessment.FinalScore, assessment.IsCritical)

	txn := &models.Transaction{
		ID:              newTransactionID(),
		UserID:          userID,
		SenderAccountID: sender.ID,
		ReceiverAccount: req.ReceiverAccount,
		Amount:          req.Amount,
		PaymentType:     req.PaymentType,
		Purpose:         req.Purpose,
		Decision:        decision,
		RiskLevel:       riskLevel,
		Assessment:      assessment,
		Velocity:        velocity,
		CreatedAt:       e.now().UTC(),
	}

	err = e.store.RunInTx(ctx, func(s Store) error {
		if err := s.Transactions().CreateTransaction(ctx, txn); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		switch decision {
		case domain.DecisionApprove:
			if err := settle(ctx, s, txn); err != nil {
				return err
			}
		case domain.DecisionReview, domain.DecisionBlock:
			if err := s.Alerts().CreateAlert(ctx, alertFor(txn)); err != nil {
				return fmt.Errorf("create alert: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.IncrementDecision(string(decision), string(riskLevel))
	zap.L().Info("transaction decided",
		zap.String("transaction_id", txn.ID),
		zap.String("user_id", userID.String()),
		zap.String("decision", string(decision)),
		zap.String("risk_level", string(riskLevel)),
		zap.Float64("final_score", assessment.FinalScore),
		zap.Int64("amount_micros", req.Amount),
	)
	return txn, nil
}

// ScoreRequest is a dry-run scoring input. Balances and trailing counts
// are caller-supplied; nothing is persisted.
type ScoreRequest struct {
	Amount          int64
	SenderBalance   int64
	ReceiverBalance int64
	PaymentType     domain.PaymentType
	Transactions1h  int
	Transactions24h int
}

// ScoreResult is the outcome of a dry-run scoring call.
type ScoreResult struct {
	Assessment models.RiskAssessment `json:"assessment"`
	Decision   domain.Decision       `json:"decision"`
	RiskLevel  domain.RiskLevel      `json:"risk_level"`
}

// ScorePreview evaluates the pipeline on hypothetical inputs without
// touching accounts or the ledger. Trailing volume is unknown to the
// caller and scored as zero.
func (e *RiskEngine) ScorePreview(ctx context.Context, req ScoreRequest) (*ScoreResult, error) {
	if req.Amount <= 0 {
		return nil, &models.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !req.PaymentType.Valid() {
		return nil, &models.ValidationError{Field: "payment_type", Reason: "unknown payment type"}
	}

	velocity := models.VelocityFeatures{
		Transactions1h:  req.Transactions1h,
		Transactions24h: req.Transactions24h,
		HighVelocity:    req.Transactions1h > risk.VelocityHourlyLimit || req.Transactions24h > risk.VelocityDailyLimit,
	}

	assessment := risk.EvaluateRules(req.Amount, req.SenderBalance, req.PaymentType, velocity)
	assessment.MLScore = e.scoreClassifier(ctx, risk.FeatureInput{
		Amount:          req.Amount,
		SenderBalance:   req.SenderBalance,
		ReceiverBalance: req.ReceiverBalance,
		PaymentType:     req.PaymentType,
		Velocity:        velocity,
	})
	assessment.FinalScore = risk.Fuse(assessment.RuleScore, assessment.MLScore)
	decision, riskLevel := risk.Classify(assessment.FinalScore, assessment.IsCritical)

	return &ScoreResult{Assessment: assessment, Decision: decision, RiskLevel: riskLevel}, nil
}

// GetTransaction returns a transaction visible to userID. Admins pass
// admin=true and may read any transaction.
func (e *RiskEngine) GetTransaction(ctx context.Context, userID uuid.UUID, admin bool, transactionID string) (*models.Transaction, error) {
	txn, err := e.store.Transactions().GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !admin && txn.UserID != userID {
		return nil, models.ErrTransactionNotFound
	}
	return txn, nil
}

// History lists the user's most recent transactions, newest first.
func (e *RiskEngine) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return e.store.Transactions().ListUserTransactions(ctx, userID, limit)
}

// scoreClassifier calls the classifier under a bounded timeout. Any
// failure degrades to a zero probability; rules alone then decide.
func (e *RiskEngine) scoreClassifier(ctx context.Context, in risk.FeatureInput) float64 {
	cctx, cancel := context.WithTimeout(ctx, e.classifierTimeout)
	defer cancel()

	score, err := e.classifier.Score(cctx, risk.BuildFeatureVector(in))
	if err != nil {
		observability.IncrementClassifierDegraded()
		zap.L().Warn("classifier unavailable, scoring on rules only", zap.Error(err))
		return 0
	}
	return score
}

func (e *RiskEngine) resolveSender(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID) (*models.Account, error) {
	if accountID == nil {
		account, err := e.store.Accounts().GetPrimaryAccount(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("resolve primary account: %w", err)
		}
		return account, nil
	}
	account, err := e.store.Accounts().GetAccount(ctx, *accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve sender account: %w", err)
	}
	// Ownership is enforced as not-found so account IDs cannot be probed.
	if account.UserID != userID {
		return nil, models.ErrAccountNotFound
	}
	return account, nil
}

// recordShortCircuit persists a hard BLOCK that bypassed scoring, along
// with its alert, in one unit of work.
func (e *RiskEngine) recordShortCircuit(ctx context.Context, userID uuid.UUID, sender *models.Account, req models.TransactionRequest, factor string) (*models.Transaction, error) {
	txn := &models.Transaction{
		ID:              newTransactionID(),
		UserID:          userID,
		SenderAccountID: sender.ID,
		ReceiverAccount: req.ReceiverAccount,
		Amount:          req.Amount,
		PaymentType:     req.PaymentType,
		Purpose:         req.Purpose,
		Decision:        domain.DecisionBlock,
		RiskLevel:       domain.RiskCritical,
		Assessment: models.RiskAssessment{
			RuleScore:   1.0,
			FinalScore:  1.0,
			RiskFactors: []string{factor},
			IsCritical:  true,
		},
		CreatedAt: e.now().UTC(),
	}

	err := e.store.RunInTx(ctx, func(s Store) error {
		if err := s.Transactions().CreateTransaction(ctx, txn); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		if err := s.Alerts().CreateAlert(ctx, alertFor(txn)); err != nil {
			return fmt.Errorf("create alert: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.IncrementDecision(string(txn.Decision), string(txn.RiskLevel))
	zap.L().Warn("transaction blocked before scoring",
		zap.String("transaction_id", txn.ID),
		zap.String("user_id", userID.String()),
		zap.String("factor", factor),
	)
	return txn, nil
}

func validateRequest(req models.TransactionRequest) error {
	if req.Amount <= 0 {
		return &models.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !req.PaymentType.Valid() {
		return &models.ValidationError{Field: "payment_type", Reason: "unknown payment type"}
	}
	if strings.TrimSpace(req.ReceiverAccount) == "" {
		return &models.ValidationError{Field: "receiver_account", Reason: "is required"}
	}
	return nil
}

func alertFor(txn *models.Transaction) *models.Alert {
	return &models.Alert{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Decision:      txn.Decision,
		RiskLevel:     txn.RiskLevel,
		RiskScore:     txn.Assessment.FinalScore,
		RiskFactors:   txn.Assessment.RiskFactors,
		Amount:        txn.Amount,
		CreatedAt:     txn.CreatedAt,
	}
}

func newTransactionID() string {
	id := uuid.New()
	return "TXN" + strings.ToUpper(hex.EncodeToString(id[:6]))
}
