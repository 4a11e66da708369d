package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/precifica/backend/internal/domain"
	"github.com/precifica/backend/internal/infrastructure/nfe"
)

// InvoiceServiceConfig holds configuration for the invoice service
type InvoiceServiceConfig struct {
	CacheTTL time.Duration
	// Defaults are the pricing parameters applied when a request does not
	// carry its own.
	Defaults domain.PricingParameters
}

// InvoiceService orchestrates the ingestion pipeline: XML parse, pricing,
// persistence and the recent-invoice cache.
type InvoiceService struct {
	repo     domain.InvoiceRepository
	cache    domain.InvoiceCache
	pricing  *PricingService
	profit   *ProfitService
	cacheTTL time.Duration
	defaults domain.PricingParameters
}

// NewInvoiceService creates a new invoice service with dependencies
func NewInvoiceService(
	repo domain.InvoiceRepository,
	cache domain.InvoiceCache,
	config InvoiceServiceConfig,
) *InvoiceService {
	pricing := NewPricingService()

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &InvoiceService{
		repo:     repo,
		cache:    cache,
		pricing:  pricing,
		profit:   NewProfitService(pricing),
		cacheTTL: cacheTTL,
		defaults: config.Defaults,
	}
}

// ImportXML runs the full pipeline for one document: parse the XML, price
// every line item, persist invoice and rows, refresh the cache. A nil params
// applies the configured defaults. Parse failures surface as
// domain.ErrMalformedInvoice and leave storage untouched.
func (s *InvoiceService) ImportXML(
	ctx context.Context,
	xmlData []byte,
	params *domain.PricingParameters,
) (*domain.Invoice, []domain.PricedProduct, error) {
	resolved, err := s.resolveParams(params)
	if err != nil {
		return nil, nil, err
	}

	invoice, err := nfe.Parse(xmlData)
	if err != nil {
		return nil, nil, err
	}

	priced := s.pricing.PriceAll(invoice.Products, resolved)

	if err := s.repo.Save(ctx, invoice, priced); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	// Cache refresh is best effort; storage already holds the truth.
	_ = s.cache.Set(ctx, invoice.Key, invoice, priced, s.cacheTTL)

	return invoice, priced, nil
}

// GetInvoice returns an invoice and its priced rows, consulting the cache
// before storage.
func (s *InvoiceService) GetInvoice(ctx context.Context, key string) (*domain.Invoice, []domain.PricedProduct, error) {
	if invoice, priced, err := s.cache.Get(ctx, key); err == nil {
		return invoice, priced, nil
	}

	invoice, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	priced, err := s.repo.GetPriced(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	_ = s.cache.Set(ctx, key, invoice, priced, s.cacheTTL)

	return invoice, priced, nil
}

// Preview prices a set of raw products without touching storage. Used by the
// review table to try parameter changes before committing them.
func (s *InvoiceService) Preview(products []domain.RawProduct, params *domain.PricingParameters) ([]domain.PricedProduct, error) {
	resolved, err := s.resolveParams(params)
	if err != nil {
		return nil, err
	}
	return s.pricing.PriceAll(products, resolved), nil
}

// ReviewColumns loads the stored priced rows for an invoice and derives the
// promotional-scenario profit columns for display.
func (s *InvoiceService) ReviewColumns(ctx context.Context, key string, params *domain.PricingParameters) ([]ProfitColumns, error) {
	resolved, err := s.resolveParams(params)
	if err != nil {
		return nil, err
	}

	_, priced, err := s.GetInvoice(ctx, key)
	if err != nil {
		return nil, err
	}

	return s.profit.ColumnsAll(priced, resolved), nil
}

// ListInvoices returns up to limit recently imported invoice headers.
func (s *InvoiceService) ListInvoices(ctx context.Context, limit int) ([]domain.Invoice, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, limit)
}

func (s *InvoiceService) resolveParams(params *domain.PricingParameters) (domain.PricingParameters, error) {
	resolved := s.defaults
	if params != nil {
		resolved = *params
	}
	if err := resolved.Validate(); err != nil {
		return domain.PricingParameters{}, err
	}
	return resolved, nil
}
