package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/identity"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

const sseKeepalive = 30 * time.Second

// NotificationHandler serves the in-app inbox, its SSE stream and push
// device registration.
type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	UnreadCount(w http.ResponseWriter, r *http.Request)
	MarkAsRead(w http.ResponseWriter, r *http.Request)
	MarkAllAsRead(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	RegisterDevice(w http.ResponseWriter, r *http.Request)

	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	inbox      notification.Service
	jwtService jwt.Service
}

func NewNotificationHandler(inbox notification.Service, jwtService jwt.Service) NotificationHandler {
	return &notificationHandlerImpl{
		inbox:      inbox,
		jwtService: jwtService,
	}
}

// requireUser returns the bearer subject, writing a 401 when there is none.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		response.HandleError(w, identity.ErrMissingToken)
		return "", false
	}
	return id.UID, true
}

func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := notification.ListQuery{
		Page:       getIntQueryParam(r, "page", 1),
		PageSize:   getIntQueryParam(r, "page_size", notification.DefaultPageSize),
		UnreadOnly: getBoolQueryParam(r, "unread_only", false),
	}

	result, err := h.inbox.GetNotifications(r.Context(), userID, q)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Notifications, &response.Meta{
		Page:       result.Page,
		Limit:      result.PageSize,
		TotalItems: int64(result.Total),
		TotalPages: (result.Total + result.PageSize - 1) / result.PageSize,
	})
}

func (h *notificationHandlerImpl) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	count, err := h.inbox.GetUnreadCount(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, notification.UnreadCountResponse{UnreadCount: count})
}

func (h *notificationHandlerImpl) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req notification.MarkAsReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.inbox.MarkAsRead(r.Context(), userID, req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notifications marked as read", nil)
}

func (h *notificationHandlerImpl) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.inbox.MarkAllAsRead(r.Context(), userID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "All notifications marked as read", nil)
}

func (h *notificationHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.inbox.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notification deleted", nil)
}

func (h *notificationHandlerImpl) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req notification.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.inbox.RegisterDevice(r.Context(), userID, req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Device registered", nil)
}

// GetSSEToken issues the short-lived token Stream accepts. EventSource cannot
// set an Authorization header, so the stream is authenticated by query string.
func (h *notificationHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(userID)
	if err != nil {
		slog.Error("Failed to generate SSE token", "user_id", userID, "error", err)
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, notification.SSETokenResponse{Token: token, ExpiresIn: expiresIn})
}

func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	userID, err := h.jwtService.ValidateSSEToken(r.URL.Query().Get("token"))
	if err != nil {
		response.HandleError(w, identity.ErrInvalidToken)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cancel := h.inbox.Subscribe(r.Context(), userID)
	defer cancel()

	writeSSE(w, flusher, "connected", map[string]string{"status": "connected", "user_id": userID})

	keepalive := time.NewTicker(sseKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			writeSSE(w, flusher, event.Event, event.Data)
		case t := <-keepalive.C:
			writeSSE(w, flusher, "ping", map[string]int64{"timestamp": t.Unix()})
		case <-r.Context().Done():
			return
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to encode SSE payload", "event", event, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
