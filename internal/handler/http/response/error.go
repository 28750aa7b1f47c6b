package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-notify/internal/domain/advance"
	"github.com/cmlabs-hris/hris-notify/internal/domain/channel"
	"github.com/cmlabs-hris/hris-notify/internal/domain/employee"
	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-notify/internal/domain/task"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
	"github.com/cmlabs-hris/hris-notify/internal/domain/user"
	"github.com/cmlabs-hris/hris-notify/internal/domain/visit"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/identity"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Identity errors
	case errors.Is(err, identity.ErrMissingToken):
		Unauthorized(w, "Missing bearer token")
	case errors.Is(err, identity.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// Reconciliation domain errors
	case errors.Is(err, reconciliation.ErrReconciliationNotFound):
		NotFound(w, "Reconciliation request not found")
	case errors.Is(err, reconciliation.ErrAlreadyDecided):
		Conflict(w, "Reconciliation request has already been decided")
	case errors.Is(err, reconciliation.ErrMissingReviewer):
		BadRequest(w, "Reviewer identity is required", nil)
	case errors.Is(err, reconciliation.ErrNotEmployeeOwner):
		Forbidden(w, "You can only file reconciliations for your own employee profile")

	// Source record errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrLookupTooWide):
		BadRequest(w, "Too many identifiers in one request", nil)
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, advance.ErrAdvanceSalaryNotFound):
		NotFound(w, "Advance salary request not found")
	case errors.Is(err, visit.ErrVisitNotFound):
		NotFound(w, "Visit request not found")
	case errors.Is(err, task.ErrTaskNotFound):
		NotFound(w, "Task not found")

	// Notification domain errors
	case errors.Is(err, template.ErrTemplateNotFound):
		NotFound(w, "Template not found")
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrDeviceTokenRequired):
		BadRequest(w, "Device token is required", nil)
	case errors.Is(err, channel.ErrInvalidEmailProvider):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
