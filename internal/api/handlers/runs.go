package handlers

import (
	"net/http"

	"github.com/tradepulse/backend/internal/api/dto"
	"github.com/tradepulse/backend/internal/domain/reconrun"
	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/utils"
	"github.com/tradepulse/backend/internal/services"
)

// RunHandler serves the reconciliation audit trail
type RunHandler struct {
	service *services.RunService
	logger  *logger.Logger
}

// NewRunHandler creates a new run-history handler
func NewRunHandler(service *services.RunService, log *logger.Logger) *RunHandler {
	return &RunHandler{service: service, logger: log}
}

// List returns recent reconciliation runs, newest first
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	params := utils.ParsePagination(
		r.URL.Query().Get("page"),
		r.URL.Query().Get("page_size"),
	)

	runs, total, err := h.service.List(r.Context(), params.PageSize, params.Offset)
	if err != nil {
		utils.WriteError(w, errors.DatabaseError("Failed to list reconciliation runs", err))
		return
	}

	items := make([]dto.RunDTO, len(runs))
	for i, run := range runs {
		items[i] = runToDTO(run)
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(items, params.Page, params.PageSize, total))
}

// Latest returns the most recent run of the requested kind
func (h *RunHandler) Latest(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = reconrun.KindExpired
	}
	if kind != reconrun.KindExpired && kind != reconrun.KindRenewals {
		utils.WriteError(w, errors.BadRequest("kind must be expired or renewals"))
		return
	}

	run, err := h.service.Latest(r.Context(), kind)
	if err != nil {
		utils.WriteError(w, errors.NotFound("reconciliation run"))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, runToDTO(run))
}

func runToDTO(run *reconrun.Run) dto.RunDTO {
	return dto.RunDTO{
		ID:         run.ID,
		Kind:       run.Kind,
		Source:     run.Source,
		WindowDays: run.WindowDays,
		Rows:       run.Rows,
		Partial:    run.Partial,
		DurationMS: run.DurationMS,
		Error:      run.Error,
		Trigger:    run.Trigger,
		CreatedAt:  run.CreatedAt,
	}
}
