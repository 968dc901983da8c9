package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"cardrec/internal/logging"
	"cardrec/internal/models"
)

// Evaluation is the outcome of evaluating one card against one purchase.
type Evaluation struct {
	Reward   decimal.Decimal
	RateNote string
	Status   models.Status
}

// Evaluator computes the reward one card yields for a purchase, given the
// card's rule for the resolved category, its monthly cap and the spend
// already accumulated in that (card, category) pair this billing cycle.
type Evaluator struct {
	log logging.Logger
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(log logging.Logger) *Evaluator {
	return &Evaluator{log: log}
}

// surchargeWaiverRate is the nominal cashback-equivalent applied to
// surcharge-waiver benefits so they rank on the same scale as cashback.
var surchargeWaiverRate = decimal.NewFromInt(1)

// Evaluate computes the reward for a single card. amount must be positive
// and spentSoFar non-negative; violations are rejected with
// InvalidInputError before any rule is consulted. A card without an "other"
// fallback rule is a ConfigError.
func (e *Evaluator) Evaluate(card models.CardProduct, category, merchant string, amount, spentSoFar decimal.Decimal) (Evaluation, error) {
	if !amount.IsPositive() {
		return Evaluation{}, &InvalidInputError{Field: "amount", Reason: "must be positive"}
	}
	if spentSoFar.IsNegative() {
		return Evaluation{}, &InvalidInputError{Field: "spent", Reason: "must not be negative"}
	}

	rule, ok := card.Rule(category)
	if !ok {
		return Evaluation{}, &ConfigError{CardID: card.ID, Reason: "missing \"other\" fallback rule"}
	}

	// A partner-restricted rule applies only when the merchant name contains
	// one of its keywords; otherwise the card's general rule takes over. The
	// fallback is always "other", never another category.
	if len(rule.Partners) > 0 && !matchesPartner(merchant, rule.Partners) {
		fallback, ok := card.CategoryRules[models.CategoryOther]
		if !ok {
			return Evaluation{}, &ConfigError{CardID: card.ID, Reason: "missing \"other\" fallback rule"}
		}
		e.log.WithFields(
			logging.Field{Key: logging.FieldCard, Value: card.ID},
			logging.Field{Key: logging.FieldMerchant, Value: merchant},
			logging.Field{Key: logging.FieldCategory, Value: category},
		).Debug("Partner mismatch, falling back to general rule")
		rule = fallback
	}

	if rule.Type == models.RewardExcluded || rule.Rate.IsZero() {
		return Evaluation{Reward: decimal.Zero, RateNote: rule.Note(), Status: models.StatusExcluded}, nil
	}

	eligible := amount
	status := models.StatusNoCap
	if rule.MonthlyCap != nil {
		remaining := rule.MonthlyCap.Sub(spentSoFar)
		if !remaining.IsPositive() {
			return Evaluation{Reward: decimal.Zero, RateNote: "cap reached", Status: models.StatusCapReached}, nil
		}
		eligible = models.MinDecimal(amount, remaining)
		if eligible.LessThan(amount) {
			status = models.StatusPartialCap
		} else {
			status = models.StatusWithinCap
		}
	}

	var reward decimal.Decimal
	switch rule.Type {
	case models.RewardFixedCredit:
		reward = models.MinDecimal(rule.Rate, eligible)
	case models.RewardDiscountCapped:
		reward = models.MinDecimal(models.RoundMoney(models.PercentOf(eligible, rule.Rate)), *rule.DiscountCeiling)
	case models.RewardSurchargeWaiver:
		reward = models.RoundMoney(models.PercentOf(eligible, surchargeWaiverRate))
	default:
		reward = models.RoundMoney(models.PercentOf(eligible, rule.Rate))
	}

	return Evaluation{Reward: models.RoundMoney(reward), RateNote: rule.Note(), Status: status}, nil
}

func matchesPartner(merchant string, partners []string) bool {
	name := strings.ToLower(merchant)
	for _, p := range partners {
		if strings.Contains(name, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
