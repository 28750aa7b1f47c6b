package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-notify/internal/domain/notify"
	"github.com/cmlabs-hris/hris-notify/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-notify/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/identity"
	"github.com/cmlabs-hris/hris-notify/internal/service/notifier"
	"github.com/go-chi/chi/v5"
)

type ReconciliationHandler interface {
	Decide(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type ReconciliationHandlerImpl struct {
	reconService reconciliation.ReconciliationService
	notifier     notify.Notifier
	background   *notifier.Detached
}

func NewReconciliationHandler(reconService reconciliation.ReconciliationService, n notify.Notifier, background *notifier.Detached) ReconciliationHandler {
	return &ReconciliationHandlerImpl{
		reconService: reconService,
		notifier:     n,
		background:   background,
	}
}

// Decide applies an approve/reject decision. The employee is notified after
// the transaction commits; delivery failures never change the response.
func (h *ReconciliationHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		response.HandleError(w, identity.ErrMissingToken)
		return
	}

	var req reconciliation.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Decide decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	rec, err := h.reconService.Decide(r.Context(), req, id.UID)
	if err != nil {
		slog.Error("Reconciliation decision failed", "reconciliation_id", req.ReconciliationID, "action", req.Action, "error", err)
		response.HandleError(w, err)
		return
	}

	h.background.Go(r.Context(), "notify-reconciliation-decision", func(ctx context.Context) error {
		_, err := h.notifier.NotifyReconciliationDecision(ctx, rec.ID)
		return err
	})

	response.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Create stores an employee's correction request and announces it to administrators.
func (h *ReconciliationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		response.HandleError(w, identity.ErrMissingToken)
		return
	}

	var req reconciliation.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create reconciliation decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	rec, err := h.reconService.Create(r.Context(), req, id.UID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.background.Go(r.Context(), "notify-new-reconciliation", func(ctx context.Context) error {
		_, err := h.notifier.NotifyNewReconciliation(ctx, rec.ID)
		return err
	})

	response.Created(w, "Reconciliation request submitted", reconciliation.ToResponse(rec))
}

func (h *ReconciliationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	reconID := chi.URLParam(r, "id")
	if reconID == "" {
		response.BadRequest(w, "Reconciliation ID is required", nil)
		return
	}

	rec, err := h.reconService.GetByID(r.Context(), reconID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, reconciliation.ToResponse(rec))
}
