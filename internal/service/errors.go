package service

import "errors"

var (
	ErrNotFound             = errors.New("error not found")
	ErrQuoteUnavailable     = errors.New("error quote unavailable")
	ErrValidation           = errors.New("error invalid input")
	ErrCloudStorageDisabled = errors.New("error cloud storage is not configured")
)
