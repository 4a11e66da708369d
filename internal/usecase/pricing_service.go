package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/precifica/backend/internal/domain"
)

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// PricingService computes the derived commercial figures for invoice line
// items: net cost with entry tax and freight, the two channel sale prices and
// the rounding policy. All methods are pure; inputs are never mutated.
type PricingService struct{}

// NewPricingService creates a new pricing service
func NewPricingService() *PricingService {
	return &PricingService{}
}

// NetCost is the unit price increased by the entry tax percentage, plus the
// per-item freight share. Missing numeric inputs behave as zero.
func (s *PricingService) NetCost(unitPrice decimal.Decimal, params domain.PricingParameters) decimal.Decimal {
	taxFactor := one.Add(params.EntryTaxPercent.Div(oneHundred))
	return unitPrice.Mul(taxFactor).Add(params.FreightShare).Round(2)
}

// ChannelPrice is the sale price for one channel before rounding: net cost
// times the channel markup, where the markup expresses the full sale price as
// a percentage of cost (160 means 160% of cost, not +160%).
func (s *PricingService) ChannelPrice(netCost decimal.Decimal, params domain.PricingParameters, ch domain.Channel) decimal.Decimal {
	return netCost.Mul(params.Markup(ch)).Div(oneHundred).Round(2)
}

// Price derives a PricedProduct from a raw line item. The raw fields are
// copied, never overwritten; size and color tokens are inferred from the
// product code and description.
func (s *PricingService) Price(raw domain.RawProduct, params domain.PricingParameters) domain.PricedProduct {
	netCost := s.NetCost(raw.UnitPrice, params)

	return domain.PricedProduct{
		RawProduct:  raw,
		NetCost:     netCost,
		PriceXapuri: params.Rounding.Apply(s.ChannelPrice(netCost, params, domain.ChannelXapuri)),
		PriceEpita:  params.Rounding.Apply(s.ChannelPrice(netCost, params, domain.ChannelEpita)),
		Rounding:    params.Rounding,
		Size:        ExtractSize(raw.Code, raw.Description),
		Color:       ExtractColor(raw.Description),
	}
}

// PriceAll prices every line item of an invoice in order.
func (s *PricingService) PriceAll(products []domain.RawProduct, params domain.PricingParameters) []domain.PricedProduct {
	priced := make([]domain.PricedProduct, 0, len(products))
	for _, raw := range products {
		priced = append(priced, s.Price(raw, params))
	}
	return priced
}
