package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-notify/internal/domain/notify"
	"github.com/cmlabs-hris/hris-notify/internal/handler/http/response"
)

// NotifyHandler exposes the server-to-server notification triggers. Each call
// dispatches synchronously and reports success once the source record is
// found, whatever the individual deliveries did.
type NotifyHandler interface {
	Reconciliation(w http.ResponseWriter, r *http.Request)
	Decision(w http.ResponseWriter, r *http.Request)
	Task(w http.ResponseWriter, r *http.Request)
}

type NotifyHandlerImpl struct {
	notifier notify.Notifier
}

func NewNotifyHandler(n notify.Notifier) NotifyHandler {
	return &NotifyHandlerImpl{notifier: n}
}

func (h *NotifyHandlerImpl) Reconciliation(w http.ResponseWriter, r *http.Request) {
	var req notify.ReconciliationNotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Notify reconciliation decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.notifier.NotifyNewReconciliation(r.Context(), req.ReconciliationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, notify.ReconciliationNotifyResponse{
		Success:    true,
		Recipients: result.Recipients,
		Result:     result,
	})
}

func (h *NotifyHandlerImpl) Decision(w http.ResponseWriter, r *http.Request) {
	var req notify.DecisionNotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Notify decision decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	audience, result, err := h.notifier.NotifyRequestDecision(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, notify.DecisionNotifyResponse{
		Success:  true,
		Notified: audience,
		Result:   result,
	})
}

func (h *NotifyHandlerImpl) Task(w http.ResponseWriter, r *http.Request) {
	var req notify.TaskNotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Notify task decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.notifier.NotifyTask(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, notify.TaskNotifyResponse{
		Success:       true,
		Notifications: results,
	})
}
