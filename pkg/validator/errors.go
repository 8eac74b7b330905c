package validator

import "errors"

var (
	ErrUnknownEventKind = errors.New("event kind must be view, download or contact")
	ErrLimitNotANumber  = errors.New("limit must be an integer")
)
