package models

import "github.com/shopspring/decimal"

// Status reports how a card's cap affected the reward computation.
type Status string

const (
	// StatusExcluded means the matching rule yields no reward.
	StatusExcluded Status = "excluded"
	// StatusCapReached means the monthly cap was already consumed.
	StatusCapReached Status = "cap_reached"
	// StatusPartialCap means only part of the purchase was still eligible.
	StatusPartialCap Status = "partial_cap"
	// StatusWithinCap means the full purchase fit under the monthly cap.
	StatusWithinCap Status = "within_cap"
	// StatusNoCap means the rule has no monthly cap.
	StatusNoCap Status = "no_cap"
)

// Purchase is the ephemeral input to a recommendation: a merchant name and
// a positive amount. It is never persisted.
type Purchase struct {
	Merchant string
	Amount   decimal.Decimal
}

// Recommendation is the per-card outcome of a ranking call. Values are
// created fresh on every call and never mutated afterwards.
type Recommendation struct {
	CardID      string          `json:"card_id"`
	DisplayName string          `json:"name"`
	Issuer      string          `json:"issuer"`
	Reward      decimal.Decimal `json:"reward"`
	Status      Status          `json:"status"`
	RateNote    string          `json:"rate_note"`
	AnnualFee   int64           `json:"annual_fee"`
}
