package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/payshield/payshield/internal/models"
	"github.com/payshield/payshield/internal/service"
)

// AdminHandler serves the review queue, overrides, and the dashboard.
// Every route behind it requires the admin role.
type AdminHandler struct {
	admin     *service.AdminService
	analytics *service.AnalyticsService
}

func NewAdminHandler(admin *service.AdminService, analytics *service.AnalyticsService) *AdminHandler {
	return &AdminHandler{admin: admin, analytics: analytics}
}

// Approve resolves a REVIEW transaction as legitimate and settles it.
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	adminID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}

	result, err := h.admin.ApproveTransaction(r.Context(), adminID, chi.URLParam(r, "id"))
	if err != nil {
		if respondDomainError(w, r, err) {
			return
		}
		RespondError(w, r, http.StatusInternalServerError, "review/approve-failed", "approval failed")
		return
	}

	status := http.StatusOK
	message := "transaction approved and settled"
	if result.AlreadyApproved {
		message = "transaction was already approved"
	}
	RespondJSON(w, status, map[string]any{
		"message":          message,
		"already_approved": result.AlreadyApproved,
		"transaction":      result.Transaction,
	})
}

// Reject resolves a REVIEW transaction as fraudulent. No funds move.
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	adminID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/invalid-context", err.Error())
		return
	}

	txn, err := h.admin.RejectTransaction(r.Context(), adminID, chi.URLParam(r, "id"))
	if err != nil {
		if respondDomainError(w, r, err) {
			return
		}
		RespondError(w, r, http.StatusInternalServerError, "review/reject-failed", "rejection failed")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"message":     "transaction rejected",
		"transaction": txn,
	})
}

// Alerts lists recent fraud alerts for the review queue.
func (h *AdminHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	alerts, err := h.analytics.Alerts(r.Context(), limit)
	if err != nil {
		RespondError(w, r, http.StatusInternalServerError, "alerts/list-failed", "alert lookup failed")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	RespondJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

// Dashboard aggregates decision statistics.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Dashboard(r.Context())
	if err != nil {
		RespondError(w, r, http.StatusInternalServerError, "dashboard/failed", "dashboard aggregation failed")
		return
	}
	RespondJSON(w, http.StatusOK, stats)
}
