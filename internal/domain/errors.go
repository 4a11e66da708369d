package domain

import "errors"

var (
	// ErrMalformedInvoice is returned when no recognizable invoice body can
	// be located in an XML document
	ErrMalformedInvoice = errors.New("no recognizable invoice body in document")

	// ErrInvoiceNotFound is returned when an invoice key is unknown to storage
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrInvalidParameters is returned when pricing parameters fail validation
	ErrInvalidParameters = errors.New("invalid pricing parameters")

	// ErrCacheMiss is returned when an invoice is not in the recent cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrQueueUnavailable is returned when the ingestion queue cannot be reached
	ErrQueueUnavailable = errors.New("ingestion queue unavailable")

	// ErrStorageFailure is returned when the invoice store rejects an operation
	ErrStorageFailure = errors.New("invoice storage failure")
)
