package handlers

import (
	"net/http"
	"strconv"

	"github.com/tradepulse/backend/internal/api/dto"
	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/utils"
	"github.com/tradepulse/backend/internal/pkg/validator"
)

// ReconciliationHandler serves the expired-subscriptions and upcoming-
// renewals views of the admin console
type ReconciliationHandler struct {
	service   subscription.Service
	cfg       config.ReconConfig
	logger    *logger.Logger
	validator *validator.Validator
}

// NewReconciliationHandler creates a new reconciliation handler
func NewReconciliationHandler(service subscription.Service, cfg config.ReconConfig, log *logger.Logger, val *validator.Validator) *ReconciliationHandler {
	return &ReconciliationHandler{service: service, cfg: cfg, logger: log, validator: val}
}

// Expired returns subscriptions that expired in the trailing window
// without being renewed, tagged with the source that produced them
func (h *ReconciliationHandler) Expired(w http.ResponseWriter, r *http.Request) {
	query, ok := h.parseQuery(w, r, h.cfg.WindowDays)
	if !ok {
		return
	}

	result, err := h.service.ReconcileExpired(r.Context(), query.WindowDays)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			utils.WriteError(w, appErr)
		} else {
			utils.WriteError(w, errors.Internal("Failed to reconcile expired subscriptions", err))
		}
		return
	}

	items := make([]dto.ExpiredRowDTO, len(result.Rows))
	for i, row := range result.Rows {
		items[i] = dto.ExpiredRowDTO{
			UserID:      row.UserID,
			UserEmail:   row.UserEmail,
			UserName:    row.UserName,
			Product:     row.ProductLabel,
			ProductSlug: string(row.Identity),
			EndsAt:      row.EndsAt,
			Status:      row.Status,
		}
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ExpiredResponse{
		Items:      items,
		Source:     result.Source,
		Partial:    result.Partial,
		WindowDays: query.WindowDays,
	})
}

// Renewals returns raw purchase cycles due to expire within the window
func (h *ReconciliationHandler) Renewals(w http.ResponseWriter, r *http.Request) {
	query, ok := h.parseQuery(w, r, h.cfg.RenewalDays)
	if !ok {
		return
	}

	result, err := h.service.UpcomingRenewals(r.Context(), query.WindowDays)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			utils.WriteError(w, appErr)
		} else {
			utils.WriteError(w, errors.Internal("Failed to list upcoming renewals", err))
		}
		return
	}

	items := make([]dto.RenewalRowDTO, len(result.Rows))
	for i, row := range result.Rows {
		items[i] = dto.RenewalRowDTO{
			UserID:     row.UserID,
			UserEmail:  row.UserEmail,
			UserName:   row.UserName,
			PurchaseID: row.PurchaseID,
			Product:    row.ProductLabel,
			Status:     row.Status,
			EndsAt:     row.EndsAt,
		}
	}

	utils.WriteSuccess(w, http.StatusOK, dto.RenewalsResponse{
		Items:      items,
		Partial:    result.Partial,
		WindowDays: query.WindowDays,
	})
}

func (h *ReconciliationHandler) parseQuery(w http.ResponseWriter, r *http.Request, defaultDays int) (dto.ReconcileQuery, bool) {
	query := dto.ReconcileQuery{WindowDays: defaultDays}

	if raw := r.URL.Query().Get("window_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			utils.WriteError(w, errors.BadRequest("window_days must be an integer"))
			return query, false
		}
		query.WindowDays = days
	}

	if errs := h.validator.Validate(query); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return query, false
	}

	return query, true
}
