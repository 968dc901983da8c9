// Package models provides the data structures used throughout the application.
package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// RewardType identifies the mechanics of a reward rule. Each type carries
// its own computation; see engine.Evaluator.
type RewardType string

const (
	// RewardPercentage pays rate% of the eligible spend.
	RewardPercentage RewardType = "percentage"
	// RewardFixedCredit pays a flat credit (the rule's rate is a currency
	// amount, not a percentage), never exceeding the eligible spend.
	// Models BOGO-style promotions.
	RewardFixedCredit RewardType = "fixed_credit"
	// RewardDiscountCapped pays rate% of the eligible spend, clamped to the
	// rule's discount ceiling.
	RewardDiscountCapped RewardType = "discount_capped"
	// RewardSurchargeWaiver is a fee-waiver benefit valued at a nominal 1%
	// of the eligible spend so it ranks on the same scale as cashback.
	RewardSurchargeWaiver RewardType = "surcharge_waiver"
	// RewardExcluded always yields zero.
	RewardExcluded RewardType = "excluded"
)

// CategoryOther is the sentinel fallback category. Every card must define a
// rule for it.
const CategoryOther = "other"

// RewardRule describes the reward mechanics for one (card, category) pair.
type RewardRule struct {
	Type RewardType `yaml:"type"`

	// Rate is a percentage point value, except for RewardFixedCredit where
	// it is the flat credit amount in currency units.
	Rate decimal.Decimal `yaml:"rate"`

	// MonthlyCap limits the spend amount eligible for reward in this
	// category per billing cycle. Nil means unlimited.
	MonthlyCap *decimal.Decimal `yaml:"monthly_cap,omitempty"`

	// DiscountCeiling clamps the computed reward for RewardDiscountCapped.
	DiscountCeiling *decimal.Decimal `yaml:"discount_ceiling,omitempty"`

	// Partners restricts the rule to merchants whose name contains one of
	// these keywords. When none matches, the card's "other" rule applies
	// instead.
	Partners []string `yaml:"partners,omitempty"`

	Description string `yaml:"description,omitempty"`
}

// UnmarshalYAML decodes a rule, parsing monetary scalars through
// decimal.NewFromString so configured rates keep their exact decimal value
// instead of round-tripping through a binary float.
func (r *RewardRule) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Type            RewardType `yaml:"type"`
		Rate            string     `yaml:"rate"`
		MonthlyCap      *string    `yaml:"monthly_cap"`
		DiscountCeiling *string    `yaml:"discount_ceiling"`
		Partners        []string   `yaml:"partners"`
		Description     string     `yaml:"description"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	r.Type = raw.Type
	r.Partners = raw.Partners
	r.Description = raw.Description

	var err error
	if raw.Rate == "" {
		r.Rate = decimal.Zero
	} else if r.Rate, err = decimal.NewFromString(raw.Rate); err != nil {
		return fmt.Errorf("bad rate %q: %w", raw.Rate, err)
	}
	if r.MonthlyCap, err = parseOptionalDecimal(raw.MonthlyCap, "monthly_cap"); err != nil {
		return err
	}
	if r.DiscountCeiling, err = parseOptionalDecimal(raw.DiscountCeiling, "discount_ceiling"); err != nil {
		return err
	}
	return nil
}

func parseOptionalDecimal(raw *string, field string) (*decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, fmt.Errorf("bad %s %q: %w", field, *raw, err)
	}
	return &d, nil
}

// Validate checks the rule invariants for the given category.
func (r RewardRule) Validate(category string) error {
	switch r.Type {
	case RewardPercentage, RewardFixedCredit, RewardDiscountCapped,
		RewardSurchargeWaiver, RewardExcluded:
	case "":
		return fmt.Errorf("category %q: missing reward type", category)
	default:
		return fmt.Errorf("category %q: unknown reward type %q", category, r.Type)
	}
	if r.Rate.IsNegative() {
		return fmt.Errorf("category %q: negative rate %s", category, r.Rate)
	}
	if r.MonthlyCap != nil && r.MonthlyCap.IsNegative() {
		return fmt.Errorf("category %q: negative monthly cap %s", category, r.MonthlyCap)
	}
	if r.Type == RewardDiscountCapped && r.DiscountCeiling == nil {
		return fmt.Errorf("category %q: discount_capped rule requires a discount ceiling", category)
	}
	if r.DiscountCeiling != nil && r.DiscountCeiling.IsNegative() {
		return fmt.Errorf("category %q: negative discount ceiling %s", category, r.DiscountCeiling)
	}
	for _, p := range r.Partners {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("category %q: blank partner keyword", category)
		}
	}
	return nil
}

// Note returns a short human-readable description of the rule, used as the
// rate note on recommendations when no explicit description is configured.
func (r RewardRule) Note() string {
	if r.Description != "" {
		return r.Description
	}
	switch r.Type {
	case RewardFixedCredit:
		return fmt.Sprintf("flat %s credit", r.Rate)
	case RewardSurchargeWaiver:
		return "surcharge waiver (1% equivalent)"
	case RewardExcluded:
		return "excluded"
	default:
		return fmt.Sprintf("%s%% (%s)", r.Rate, r.Type)
	}
}

// CardProduct is one payment-card product from the catalog.
type CardProduct struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"name"`
	Issuer      string `yaml:"issuer"`

	// AnnualFee in whole currency units. Used only as a ranking tie-breaker.
	AnnualFee int64 `yaml:"annual_fee"`

	// CategoryRules maps a category tag to exactly one reward rule. A rule
	// for CategoryOther is mandatory; it is the fallback for unknown
	// categories and failed partner matches.
	CategoryRules map[string]RewardRule `yaml:"categories"`

	// Perks are presentation-only marketing strings.
	Perks []string `yaml:"perks,omitempty"`
}

// Validate checks the card invariants. Cards are validated eagerly at
// catalog-load time so malformed configuration never reaches a ranking call.
func (c CardProduct) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("card %q: missing id", c.DisplayName)
	}
	if c.AnnualFee < 0 {
		return fmt.Errorf("card %q: negative annual fee %d", c.ID, c.AnnualFee)
	}
	if _, ok := c.CategoryRules[CategoryOther]; !ok {
		return fmt.Errorf("card %q: missing %q fallback rule", c.ID, CategoryOther)
	}
	for category, rule := range c.CategoryRules {
		if err := rule.Validate(category); err != nil {
			return fmt.Errorf("card %q: %w", c.ID, err)
		}
	}
	return nil
}

// Rule returns the rule for the given category, falling back to the card's
// "other" rule when the category has no dedicated entry.
func (c CardProduct) Rule(category string) (RewardRule, bool) {
	if rule, ok := c.CategoryRules[category]; ok {
		return rule, true
	}
	rule, ok := c.CategoryRules[CategoryOther]
	return rule, ok
}

// MerchantMapping is one entry of the ordered merchant-to-category table.
// Table order is significant: the first keyword contained in the merchant
// name wins.
type MerchantMapping struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// Validate checks a single mapping entry.
func (m MerchantMapping) Validate() error {
	if strings.TrimSpace(m.Keyword) == "" {
		return fmt.Errorf("merchant mapping: blank keyword")
	}
	if strings.TrimSpace(m.Category) == "" {
		return fmt.Errorf("merchant mapping %q: blank category", m.Keyword)
	}
	return nil
}
