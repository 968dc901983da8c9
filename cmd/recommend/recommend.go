// Package recommend implements the recommend command: rank the candidate
// cards for a single purchase and print the best picks.
package recommend

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"cardrec/cmd/root"
	"cardrec/internal/engine"
	"cardrec/internal/ledger"
	"cardrec/internal/models"
)

var (
	merchant string
	amount   string
	cards    []string
	spent    []string
	topN     int

	// Cmd is the recommend command
	Cmd = &cobra.Command{
		Use:   "recommend",
		Short: "Recommend the best card for a purchase",
		Long: `Rank the given candidate cards for a purchase at a merchant and print
the top picks with their expected reward. Accumulated monthly spend can be
supplied with --spent cardID:category=amount (repeatable).`,
		Run: recommendFunc,
	}
)

func init() {
	Cmd.Flags().StringVarP(&merchant, "merchant", "m", "", "Merchant name (required)")
	Cmd.Flags().StringVarP(&amount, "amount", "a", "", "Purchase amount (required)")
	Cmd.Flags().StringSliceVarP(&cards, "card", "c", nil, "Candidate card id (repeatable, required)")
	Cmd.Flags().StringSliceVar(&spent, "spent", nil, "Accumulated spend as cardID:category=amount")
	Cmd.Flags().IntVar(&topN, "top", 0, "How many picks to print (default from config)")
	_ = Cmd.MarkFlagRequired("merchant")
	_ = Cmd.MarkFlagRequired("amount")
	_ = Cmd.MarkFlagRequired("card")
}

func recommendFunc(cmd *cobra.Command, args []string) {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		root.Log.WithError(err).Fatal("Invalid amount")
	}

	snap, err := parseSpentFlags(spent)
	if err != nil {
		root.Log.WithError(err).Fatal("Invalid --spent value")
	}

	cat, err := root.LoadCatalog()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load catalog")
	}
	ranker := root.NewRanker(cat)

	recs, err := ranker.Recommend(cards, models.Purchase{Merchant: merchant, Amount: amt}, snap)
	if err != nil {
		if engine.IsInvalidInput(err) {
			root.Log.WithError(err).Fatal("Invalid input")
		}
		root.Log.WithError(err).Fatal("Recommendation failed")
	}
	if len(recs) == 0 {
		fmt.Println("No known cards among the candidates.")
		return
	}

	limit := topN
	if limit <= 0 {
		limit = root.Cfg.Recommend.TopN
	}
	if limit > len(recs) {
		limit = len(recs)
	}

	fmt.Printf("Merchant: %s (category: %s)\n", merchant, ranker.Category(merchant))
	for i, rec := range recs[:limit] {
		fmt.Printf("%d. %-28s reward %8s  (%s)  annual fee %d\n",
			i+1, rec.DisplayName, rec.Reward.StringFixed(2), rec.RateNote, rec.AnnualFee)
	}
}

// parseSpentFlags turns repeated cardID:category=amount flags into a
// ledger snapshot.
func parseSpentFlags(entries []string) (ledger.Snapshot, error) {
	snap := make(ledger.Snapshot, len(entries))
	for _, entry := range entries {
		keyPart, amountPart, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("bad spent entry %q: want cardID:category=amount", entry)
		}
		cardID, category, ok := strings.Cut(keyPart, ":")
		if !ok {
			return nil, fmt.Errorf("bad spent key %q: want cardID:category", keyPart)
		}
		amt, err := decimal.NewFromString(amountPart)
		if err != nil {
			return nil, fmt.Errorf("bad spent amount %q: %w", amountPart, err)
		}
		snap[ledger.Key{CardID: cardID, Category: category}] = amt
	}
	return snap, nil
}
