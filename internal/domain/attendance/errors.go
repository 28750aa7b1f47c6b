package attendance

import "errors"

var (
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrRecordExists     = errors.New("attendance record already exists")
	ErrInvalidClockTime = errors.New("invalid clock time")
)
