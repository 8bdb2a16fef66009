package service

import "errors"

var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidStatus   = errors.New("invalid status transition")
)
