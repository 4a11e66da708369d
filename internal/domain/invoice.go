package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawProduct is one invoice line item exactly as decoded from the NFE XML.
// Fields here are the audit trail: derived figures live on PricedProduct and
// never overwrite these values.
type RawProduct struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	NCM         string          `json:"ncm"`
	CFOP        string          `json:"cfop"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`

	// ICMS/IPI triples are carried as opaque figures for display; the
	// pricing pipeline never recomputes them.
	ICMSBase  decimal.Decimal `json:"icmsBase"`
	ICMSValue decimal.Decimal `json:"icmsValue"`
	ICMSRate  decimal.Decimal `json:"icmsRate"`
	IPIBase   decimal.Decimal `json:"ipiBase"`
	IPIValue  decimal.Decimal `json:"ipiValue"`
	IPIRate   decimal.Decimal `json:"ipiRate"`
}

// Invoice is a parsed NFE document: header fields plus the ordered line items.
type Invoice struct {
	// Key is the 44-character access key from the infNFe Id attribute with
	// the "NFe" prefix stripped. Falls back to Number when the attribute
	// is absent.
	Key       string          `json:"key"`
	Number    string          `json:"number"`
	IssueDate time.Time       `json:"issueDate"`
	Supplier  string          `json:"supplier"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	Products  []RawProduct    `json:"products"`
}

// PricedProduct is a RawProduct enriched with the figures computed by the
// pricing pipeline and the size/color tokens inferred from its description.
type PricedProduct struct {
	RawProduct

	NetCost     decimal.Decimal `json:"netCost"`
	PriceXapuri decimal.Decimal `json:"priceXapuri"`
	PriceEpita  decimal.Decimal `json:"priceEpita"`
	Rounding    RoundingPolicy  `json:"rounding"`

	Size  string `json:"size"`
	Color string `json:"color"`
}
