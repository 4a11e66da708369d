package domain

import (
	"context"
	"time"
)

// InvoiceRepository defines the interface for invoice persistence.
type InvoiceRepository interface {
	// Save upserts the invoice header and replaces its priced rows.
	Save(ctx context.Context, invoice *Invoice, priced []PricedProduct) error
	// GetByKey returns the invoice for a key, or ErrInvoiceNotFound.
	GetByKey(ctx context.Context, key string) (*Invoice, error)
	// GetPriced returns the stored priced rows for an invoice key.
	GetPriced(ctx context.Context, key string) ([]PricedProduct, error)
	// ListRecent returns up to limit invoices, newest first.
	ListRecent(ctx context.Context, limit int) ([]Invoice, error)
}

// IngestJob is one XML document waiting on the ingestion queue.
type IngestJob struct {
	ID         string    `json:"id"`
	XML        string    `json:"xml"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// IngestionQueue defines the interface for the XML ingestion job transport.
type IngestionQueue interface {
	Enqueue(ctx context.Context, job IngestJob) error
	// Dequeue blocks up to the transport's poll interval and returns the
	// next job, or (nil, nil) when none arrived in time.
	Dequeue(ctx context.Context) (*IngestJob, error)
	// MarkFailed records a job that could not be ingested, with the reason.
	MarkFailed(ctx context.Context, job IngestJob, reason string) error
}

// InvoiceCache defines the interface for the recent-invoice cache consulted
// before storage on read paths.
type InvoiceCache interface {
	Get(ctx context.Context, key string) (*Invoice, []PricedProduct, error)
	Set(ctx context.Context, key string, invoice *Invoice, priced []PricedProduct, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
