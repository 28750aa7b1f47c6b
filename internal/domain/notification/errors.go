package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDeviceTokenRequired  = errors.New("device token is required")
)
