// Package engine implements the reward recommendation core: merchant
// category resolution, per-card reward evaluation under caps and partner
// restrictions, and deterministic ranking of candidate cards. Everything in
// this package is synchronous pure computation over its inputs; the engine
// never mutates the spend ledger it is handed.
package engine

import (
	"strings"

	"cardrec/internal/logging"
	"cardrec/internal/models"
)

// Resolver maps a free-text merchant name to a category tag using an
// ordered keyword table. Matching is substring containment on the
// lowercased merchant name; the first table entry whose keyword is
// contained wins, so table order is significant and preserved exactly as
// configured.
type Resolver struct {
	mappings []models.MerchantMapping
	log      logging.Logger
}

// NewResolver creates a Resolver over the given ordered mapping table.
func NewResolver(mappings []models.MerchantMapping, log logging.Logger) *Resolver {
	return &Resolver{mappings: mappings, log: log}
}

// Resolve returns the category for the merchant name, or
// models.CategoryOther when no keyword matches. It is total: it never fails
// and has no side effects.
func (r *Resolver) Resolve(merchant string) string {
	name := strings.ToLower(strings.TrimSpace(merchant))
	for _, m := range r.mappings {
		if strings.Contains(name, strings.ToLower(m.Keyword)) {
			r.log.WithFields(
				logging.Field{Key: logging.FieldMerchant, Value: merchant},
				logging.Field{Key: "keyword", Value: m.Keyword},
				logging.Field{Key: logging.FieldCategory, Value: m.Category},
			).Debug("Merchant resolved by keyword")
			return m.Category
		}
	}
	return models.CategoryOther
}
