package networks

import "errors"

var (
	ErrInvalidAddress = errors.New("invalid IP address or CIDR")
	ErrBlockNotFound  = errors.New("network block not found")
)
