// Package model provides the domain records managed by backoffice.
package model

import "errors"

// Error types for back-office operations
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrRecordExists   = errors.New("record already exists")
	ErrInvalidID      = errors.New("invalid record ID")
	ErrInvalidPrefix  = errors.New("invalid prefix")
	ErrInvalidPatch   = errors.New("invalid patch")
	ErrEmptyValue     = errors.New("empty value not allowed")
	ErrNegativeValue  = errors.New("negative value not allowed")
	ErrInvalidStatus  = errors.New("invalid order status")
)
