package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Channel identifies one of the two sales outlets, each with its own markup.
type Channel string

const (
	ChannelXapuri Channel = "xapuri"
	ChannelEpita  Channel = "epita"
)

// RoundingPolicy is the closed set of price-rounding rules applied to channel
// sale prices.
type RoundingPolicy int

const (
	// RoundNone leaves the computed price untouched.
	RoundNone RoundingPolicy = iota
	// RoundEnding90 rounds up to the nearest price ending in .90.
	RoundEnding90
	// RoundEnding50 rounds up to the nearest price ending in .50.
	RoundEnding50
)

var (
	ending90 = decimal.RequireFromString("0.90")
	ending50 = decimal.RequireFromString("0.50")
	oneUnit  = decimal.NewFromInt(1)
)

// Apply evaluates the policy against a price. For the .90/.50 variants the
// result always ends in the target fraction, is never below the input price,
// and is less than one whole currency unit above it. Already-conforming
// prices are returned unchanged.
func (p RoundingPolicy) Apply(price decimal.Decimal) decimal.Decimal {
	switch p {
	case RoundEnding90:
		return roundUpToEnding(price, ending90)
	case RoundEnding50:
		return roundUpToEnding(price, ending50)
	default:
		return price
	}
}

// roundUpToEnding places the target ending on the price's integer part and
// advances one whole unit when that lands below the input price.
func roundUpToEnding(price, ending decimal.Decimal) decimal.Decimal {
	candidate := price.Truncate(0).Add(ending)
	if candidate.LessThan(price) {
		candidate = candidate.Add(oneUnit)
	}
	return candidate
}

// String renders the policy in the form used by configuration and the API.
func (p RoundingPolicy) String() string {
	switch p {
	case RoundEnding90:
		return "90"
	case RoundEnding50:
		return "50"
	default:
		return "none"
	}
}

// ParseRoundingPolicy converts the configuration/API form back to a policy.
func ParseRoundingPolicy(s string) (RoundingPolicy, error) {
	switch s {
	case "", "none":
		return RoundNone, nil
	case "90", ".90":
		return RoundEnding90, nil
	case "50", ".50":
		return RoundEnding50, nil
	default:
		return RoundNone, fmt.Errorf("%w: unknown rounding policy %q", ErrInvalidParameters, s)
	}
}

// MarshalJSON keeps the wire form aligned with ParseRoundingPolicy.
func (p RoundingPolicy) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", p.String())), nil
}

// UnmarshalJSON accepts the same forms as ParseRoundingPolicy.
func (p *RoundingPolicy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRoundingPolicy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// PricingParameters is the per-request pricing configuration. It is supplied
// by the caller and never persisted per item.
type PricingParameters struct {
	// EntryTaxPercent is added on top of the unit price (12 means +12%).
	EntryTaxPercent decimal.Decimal `json:"entryTaxPercent"`
	// MarkupXapuri and MarkupEpita express the full sale price as a
	// percentage of net cost (160 means the sale price is 160% of cost).
	MarkupXapuri decimal.Decimal `json:"markupXapuri"`
	MarkupEpita  decimal.Decimal `json:"markupEpita"`
	Rounding     RoundingPolicy  `json:"rounding"`
	// FreightShare is the per-item freight allocation, already expressed
	// in currency units. Optional; zero when freight is not apportioned.
	FreightShare decimal.Decimal `json:"freightShare"`
}

// Markup returns the markup percentage for a channel.
func (p PricingParameters) Markup(ch Channel) decimal.Decimal {
	if ch == ChannelEpita {
		return p.MarkupEpita
	}
	return p.MarkupXapuri
}

// Validate rejects negative percentages. Zero values are legal: a zero markup
// prices the channel at zero, which the review table surfaces to the operator.
func (p PricingParameters) Validate() error {
	if p.EntryTaxPercent.IsNegative() {
		return fmt.Errorf("%w: entry tax percent must not be negative", ErrInvalidParameters)
	}
	if p.MarkupXapuri.IsNegative() || p.MarkupEpita.IsNegative() {
		return fmt.Errorf("%w: markup percentages must not be negative", ErrInvalidParameters)
	}
	if p.FreightShare.IsNegative() {
		return fmt.Errorf("%w: freight share must not be negative", ErrInvalidParameters)
	}
	switch p.Rounding {
	case RoundNone, RoundEnding90, RoundEnding50:
		return nil
	default:
		return fmt.Errorf("%w: unknown rounding policy %d", ErrInvalidParameters, p.Rounding)
	}
}
