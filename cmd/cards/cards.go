// Package cards implements the cards command: list the card catalog.
package cards

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cardrec/cmd/root"
)

// Cmd is the cards command
var Cmd = &cobra.Command{
	Use:   "cards",
	Short: "List the card catalog",
	Long:  `List every card in the catalog with its issuer, annual fee and perks.`,
	Run:   cardsFunc,
}

func cardsFunc(cmd *cobra.Command, args []string) {
	cat, err := root.LoadCatalog()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load catalog")
	}

	fmt.Printf("%-22s %-28s %-20s %10s\n", "ID", "NAME", "ISSUER", "ANNUAL FEE")
	for _, card := range cat.Cards() {
		fmt.Printf("%-22s %-28s %-20s %10d\n", card.ID, card.DisplayName, card.Issuer, card.AnnualFee)
		if len(card.Perks) > 0 {
			fmt.Printf("%-22s %s\n", "", strings.Join(card.Perks, ", "))
		}
	}
}
