package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/payshield/payshield/internal/domain"
	"github.com/payshield/payshield/internal/models"
	"github.com/payshield/payshield/internal/service"
)

type TransactionHandler struct {
	engine *service.RiskEngine
}

func NewTransactionHandler(engine *service.RiskEngine) *TransactionHandler {
	return &TransactionHandler{engine: engine}
}

// Process scores and, when approved, settles a money movement request.
// The decision record is returned whatever the outcome; a gateway decline
// or blacklisted receiver still produces a persisted BLOCK record.
func (h *TransactionHandler) Process(w http.ResponseWriter, r *http.Request) {
	userID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}

	var req models.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	txn, err := h.engine.ProcessTransaction(r.Context(), userID, req)
	if err != nil {
		var declined *models.GatewayDeclinedError
		if errors.As(err, &declined) {
			RespondJSON(w, http.StatusForbidden, map[string]any{
				"error":       declined.Error(),
				"transaction": txn,
			})
			return
		}
		var blacklisted *models.BlacklistedError
		if errors.As(err, &blacklisted) {
			RespondJSON(w, http.StatusForbidden, map[string]any{
				"error":       blacklisted.Error(),
				"transaction": txn,
			})
			return
		}
		if respondDomainError(w, r, err) {
			return
		}
		if status, ptype, msg, ok := mapDBError(err); ok {
			RespondError(w, r, status, ptype, msg)
			return
		}
		RespondError(w, r, http.StatusInternalServerError, "transaction/processing-failed", "transaction processing failed")
		return
	}

	RespondJSON(w, http.StatusCreated, txn)
}

// Score runs the pipeline in dry-run mode on caller-supplied inputs.
func (h *TransactionHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount          int64  `json:"amount_micros"`
		SenderBalance   int64  `json:"sender_balance_micros"`
		ReceiverBalance int64  `json:"receiver_balance_micros"`
		PaymentType     string `json:"payment_type"`
		Transactions1h  int    `json:"transactions_1h"`
		Transactions24h int    `json:"transactions_24h"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	result, err := h.engine.ScorePreview(r.Context(), service.ScoreRequest{
		Amount:          req.Amount,
		SenderBalance:   req.SenderBalance,
		ReceiverBalance: req.ReceiverBalance,
		PaymentType:     domain.PaymentType(strings.ToUpper(strings.TrimSpace(req.PaymentType))),
		Transactions1h:  req.Transactions1h,
		Transactions24h: req.Transactions24h,
	})
	if err != nil {
		if respondDomainError(w, r, err) {
			return
		}
		RespondError(w, r, http.StatusInternalServerError, "risk/score-failed", "scoring failed")
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

// Get returns one transaction. Customers only see their own.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, admin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}

	txn, err := h.engine.GetTransaction(r.Context(), userID, admin, chi.URLParam(r, "id"))
	if err != nil {
		if respondDomainError(w, r, err) {
			return
		}
		RespondError(w, r, http.StatusInternalServerError, "transaction/lookup-failed", "transaction lookup failed")
		return
	}
	RespondJSON(w, http.StatusOK, txn)
}

// History lists the caller's transactions, newest first.
func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := h.engine.History(r.Context(), userID, limit)
	if err != nil {
		RespondError(w, r, http.StatusInternalServerError, "transaction/history-failed", "history lookup failed")
		return
	}
	if history == nil {
		history = []models.Transaction{}
	}
	RespondJSON(w, http.StatusOK, map[string]any{"transactions": history})
}
