package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/precifica/backend/internal/domain"
)

// promoDiscounts are the fixed per-channel promotional discount fractions
// used by the scenario columns of the review table.
var promoDiscounts = map[domain.Channel]decimal.Decimal{
	domain.ChannelXapuri: decimal.RequireFromString("0.10"),
	domain.ChannelEpita:  decimal.RequireFromString("0.15"),
}

// ProfitScenario is the promotional-discount outcome for one channel.
type ProfitScenario struct {
	Channel        domain.Channel  `json:"channel"`
	Discount       decimal.Decimal `json:"discount"`
	EffectivePrice decimal.Decimal `json:"effectivePrice"`
	Profit         decimal.Decimal `json:"profit"`
}

// ProfitColumns are the display-only scenario metrics for one priced row.
type ProfitColumns struct {
	Code   string         `json:"code"`
	Xapuri ProfitScenario `json:"xapuri"`
	Epita  ProfitScenario `json:"epita"`
}

// ProfitService derives display metrics for already-priced rows. It reuses
// the PricingService formulas for net cost and sale price so the scenario
// figures can never drift from the stored ones.
type ProfitService struct {
	pricing *PricingService
}

// NewProfitService creates a new profit service
func NewProfitService(pricing *PricingService) *ProfitService {
	return &ProfitService{pricing: pricing}
}

// Columns recomputes net cost and the undiscounted channel prices from the
// row's raw fields, applies the fixed promotional discount per channel and
// reports effective price minus net cost as the scenario profit.
func (s *ProfitService) Columns(row domain.PricedProduct, params domain.PricingParameters) ProfitColumns {
	netCost := s.pricing.NetCost(row.UnitPrice, params)

	return ProfitColumns{
		Code:   row.Code,
		Xapuri: s.scenario(netCost, params, domain.ChannelXapuri),
		Epita:  s.scenario(netCost, params, domain.ChannelEpita),
	}
}

// ColumnsAll derives scenario metrics for every row in order.
func (s *ProfitService) ColumnsAll(rows []domain.PricedProduct, params domain.PricingParameters) []ProfitColumns {
	columns := make([]ProfitColumns, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, s.Columns(row, params))
	}
	return columns
}

func (s *ProfitService) scenario(netCost decimal.Decimal, params domain.PricingParameters, ch domain.Channel) ProfitScenario {
	discount := promoDiscounts[ch]

	salePrice := params.Rounding.Apply(s.pricing.ChannelPrice(netCost, params, ch))
	effective := salePrice.Mul(one.Sub(discount)).Round(2)

	return ProfitScenario{
		Channel:        ch,
		Discount:       discount,
		EffectivePrice: effective,
		Profit:         effective.Sub(netCost).Round(2),
	}
}
