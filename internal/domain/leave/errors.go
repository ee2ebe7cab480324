package leave

import "errors"

var (
	ErrUnknownLeaveType  = errors.New("unknown leave type")
	ErrInvalidLeaveRange = errors.New("leave ends before it starts")
)
