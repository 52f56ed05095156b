package domain

import "errors"

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrCompanyNotFound = errors.New("company not found")
)
