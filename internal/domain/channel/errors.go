package channel

import "errors"

var (
	ErrNoActiveProfile      = errors.New("no active delivery profile")
	ErrInvalidEmailProvider = errors.New("email provider must be one of: smtp, graph")
)
