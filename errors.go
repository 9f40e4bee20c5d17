package webstore

import "errors"

var (
	ErrNoMechanism            = errors.New("no usable storage mechanism")
	ErrPrimaryUnavailable     = errors.New("primary storage mechanism is unavailable")
	ErrDisabled               = errors.New("storage is disabled by failed self-test")
	ErrProbeMismatch          = errors.New("self-test probe value mismatch")
	ErrEnumerationUnsupported = errors.New("enumeration is not supported by the active storage mechanism")
	ErrUnsupportedOperation   = errors.New("operation is not supported by the active storage mechanism")
	ErrSerialize              = errors.New("unable to serialize value")
)
