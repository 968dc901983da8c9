package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func validCard() CardProduct {
	return CardProduct{
		ID:          "axis_ace",
		DisplayName: "Axis ACE",
		Issuer:      "Axis Bank",
		AnnualFee:   499,
		CategoryRules: map[string]RewardRule{
			"utilities":   {Type: RewardPercentage, Rate: dec("5"), MonthlyCap: decPtr("500")},
			CategoryOther: {Type: RewardPercentage, Rate: dec("1.5")},
		},
	}
}

func TestCardValidate(t *testing.T) {
	assert.NoError(t, validCard().Validate())
}

func TestCardValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CardProduct)
	}{
		{name: "MissingID", mutate: func(c *CardProduct) { c.ID = " " }},
		{name: "NegativeFee", mutate: func(c *CardProduct) { c.AnnualFee = -1 }},
		{name: "MissingOtherRule", mutate: func(c *CardProduct) {
			delete(c.CategoryRules, CategoryOther)
		}},
		{name: "NegativeRate", mutate: func(c *CardProduct) {
			c.CategoryRules["dining"] = RewardRule{Type: RewardPercentage, Rate: dec("-1")}
		}},
		{name: "NegativeCap", mutate: func(c *CardProduct) {
			c.CategoryRules["dining"] = RewardRule{Type: RewardPercentage, Rate: dec("1"), MonthlyCap: decPtr("-5")}
		}},
		{name: "UnknownRewardType", mutate: func(c *CardProduct) {
			c.CategoryRules["dining"] = RewardRule{Type: "mystery", Rate: dec("1")}
		}},
		{name: "MissingRewardType", mutate: func(c *CardProduct) {
			c.CategoryRules["dining"] = RewardRule{Rate: dec("1")}
		}},
		{name: "DiscountWithoutCeiling", mutate: func(c *CardProduct) {
			c.CategoryRules["movies"] = RewardRule{Type: RewardDiscountCapped, Rate: dec("25")}
		}},
		{name: "BlankPartner", mutate: func(c *CardProduct) {
			c.CategoryRules["ecommerce"] = RewardRule{Type: RewardPercentage, Rate: dec("5"), Partners: []string{" "}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := validCard()
			tt.mutate(&card)
			assert.Error(t, card.Validate())
		})
	}
}

func TestCardRuleFallback(t *testing.T) {
	card := validCard()

	rule, ok := card.Rule("utilities")
	require.True(t, ok)
	assert.Equal(t, "5", rule.Rate.String())

	rule, ok = card.Rule("travel")
	require.True(t, ok)
	assert.Equal(t, "1.5", rule.Rate.String())

	card.CategoryRules = map[string]RewardRule{}
	_, ok = card.Rule("travel")
	assert.False(t, ok)
}

func TestRewardRuleUnmarshalYAML(t *testing.T) {
	input := `
type: percentage
rate: "6.6"
monthly_cap: "1000"
partners: [flipkart, myntra]
description: weekend dining
`
	var rule RewardRule
	require.NoError(t, yaml.Unmarshal([]byte(input), &rule))

	assert.Equal(t, RewardPercentage, rule.Type)
	assert.True(t, rule.Rate.Equal(dec("6.6")))
	require.NotNil(t, rule.MonthlyCap)
	assert.True(t, rule.MonthlyCap.Equal(dec("1000")))
	assert.Nil(t, rule.DiscountCeiling)
	assert.Equal(t, []string{"flipkart", "myntra"}, rule.Partners)
	assert.Equal(t, "weekend dining", rule.Description)
}

func TestRewardRuleUnmarshalYAMLUnquotedScalars(t *testing.T) {
	// Plain scalars parse through the same decimal path as quoted ones.
	var rule RewardRule
	require.NoError(t, yaml.Unmarshal([]byte("type: fixed_credit\nrate: 500\n"), &rule))
	assert.True(t, rule.Rate.Equal(dec("500")))
	assert.Nil(t, rule.MonthlyCap)
}

func TestRewardRuleUnmarshalYAMLBadRate(t *testing.T) {
	var rule RewardRule
	assert.Error(t, yaml.Unmarshal([]byte("type: percentage\nrate: lots\n"), &rule))
}

func TestRewardRuleNote(t *testing.T) {
	tests := []struct {
		name     string
		rule     RewardRule
		expected string
	}{
		{name: "ExplicitDescription", rule: RewardRule{Type: RewardPercentage, Rate: dec("5"), Description: "5% GPay utilities"}, expected: "5% GPay utilities"},
		{name: "Percentage", rule: RewardRule{Type: RewardPercentage, Rate: dec("6.6")}, expected: "6.6% (percentage)"},
		{name: "FixedCredit", rule: RewardRule{Type: RewardFixedCredit, Rate: dec("500")}, expected: "flat 500 credit"},
		{name: "Waiver", rule: RewardRule{Type: RewardSurchargeWaiver, Rate: dec("1")}, expected: "surcharge waiver (1% equivalent)"},
		{name: "Excluded", rule: RewardRule{Type: RewardExcluded}, expected: "excluded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rule.Note())
		})
	}
}

func TestMerchantMappingValidate(t *testing.T) {
	assert.NoError(t, MerchantMapping{Keyword: "swiggy", Category: "dining"}.Validate())
	assert.Error(t, MerchantMapping{Keyword: " ", Category: "dining"}.Validate())
	assert.Error(t, MerchantMapping{Keyword: "swiggy", Category: ""}.Validate())
}
