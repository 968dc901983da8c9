package engine

import (
	"sort"
	"strings"

	"cardrec/internal/ledger"
	"cardrec/internal/logging"
	"cardrec/internal/models"
)

// Recommender is the strategy interface for producing a ranked list of
// recommendations. Ranker is the rule-based implementation; alternative
// strategies can slot in behind the same shape without callers noticing.
type Recommender interface {
	Recommend(cardIDs []string, purchase models.Purchase, snap ledger.Snapshot) ([]models.Recommendation, error)
	Name() string
}

// Ranker resolves the purchase category once, evaluates every candidate
// card against it and returns the results in deterministic order: reward
// descending, then annual fee ascending, then card id ascending.
type Ranker struct {
	cards     map[string]models.CardProduct
	resolver  *Resolver
	evaluator *Evaluator
	log       logging.Logger
}

// NewRanker creates a Ranker over the given card catalog.
func NewRanker(cards map[string]models.CardProduct, resolver *Resolver, evaluator *Evaluator, log logging.Logger) *Ranker {
	return &Ranker{cards: cards, resolver: resolver, evaluator: evaluator, log: log}
}

// Name returns the strategy name for logging.
func (r *Ranker) Name() string {
	return "RuleBased"
}

// Category exposes the resolver's verdict for presentation purposes.
func (r *Ranker) Category(merchant string) string {
	return r.resolver.Resolve(merchant)
}

// Recommend ranks the candidate cards for a single purchase. Unknown card
// ids are skipped with a warning so one bad id does not block the rest; an
// empty candidate list yields an empty result, not an error. The ledger
// snapshot is read-only.
func (r *Ranker) Recommend(cardIDs []string, purchase models.Purchase, snap ledger.Snapshot) ([]models.Recommendation, error) {
	if strings.TrimSpace(purchase.Merchant) == "" {
		return nil, &InvalidInputError{Field: "merchant", Reason: "must not be blank"}
	}
	if !purchase.Amount.IsPositive() {
		return nil, &InvalidInputError{Field: "amount", Reason: "must be positive"}
	}

	category := r.resolver.Resolve(purchase.Merchant)
	recs := make([]models.Recommendation, 0, len(cardIDs))
	for _, id := range cardIDs {
		card, ok := r.cards[id]
		if !ok {
			r.log.WithField(logging.FieldCard, id).Warn("Skipping unknown card id")
			continue
		}
		spent := snap.Get(card.ID, category)
		eval, err := r.evaluator.Evaluate(card, category, purchase.Merchant, purchase.Amount, spent)
		if err != nil {
			return nil, err
		}
		recs = append(recs, models.Recommendation{
			CardID:      card.ID,
			DisplayName: card.DisplayName,
			Issuer:      card.Issuer,
			Reward:      eval.Reward,
			Status:      eval.Status,
			RateNote:    eval.RateNote,
			AnnualFee:   card.AnnualFee,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if cmp := recs[i].Reward.Cmp(recs[j].Reward); cmp != 0 {
			return cmp > 0
		}
		if recs[i].AnnualFee != recs[j].AnnualFee {
			return recs[i].AnnualFee < recs[j].AnnualFee
		}
		return recs[i].CardID < recs[j].CardID
	})

	r.log.WithFields(
		logging.Field{Key: logging.FieldMerchant, Value: purchase.Merchant},
		logging.Field{Key: logging.FieldCategory, Value: category},
		logging.Field{Key: "candidates", Value: len(cardIDs)},
		logging.Field{Key: "ranked", Value: len(recs)},
	).Debug("Ranked candidate cards")
	return recs, nil
}
