package handler

import (
	"net/http"

	"github.com/payshield/payshield/internal/domain"
	"github.com/payshield/payshield/internal/service"
)

type AccountHandler struct {
	accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Balance returns the caller's primary account with its live balance.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}

	account, err := h.accounts.PrimaryAccount(r.Context(), userID)
	if err != nil {
		if respondDomainError(w, r, err) {
			return
		}
		RespondError(w, r, http.StatusInternalServerError, "account/lookup-failed", "account lookup failed")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"account_id":      account.ID,
		"account_number":  domain.MaskAccountNumber(account.AccountNumber),
		"bank_name":       account.BankName,
		"balance_micros":  account.Balance,
		"balance_display": domain.NewMoney(account.Balance).String(),
		"is_primary":      account.IsPrimary,
	})
}
