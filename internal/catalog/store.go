// Package catalog loads the card catalog and the ordered merchant-category
// table from YAML files. Both are loaded once at process start and treated
// as read-only afterwards; malformed configuration fails the load rather
// than surfacing later inside a ranking call.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"cardrec/internal/engine"
	"cardrec/internal/logging"
	"cardrec/internal/models"
)

// Store locates and loads catalog configuration files.
type Store struct {
	CardsFile     string
	MerchantsFile string
	log           logging.Logger
}

// NewStore creates a Store for the given file names. Empty names fall back
// to the defaults cards.yaml and merchant-categories.yaml.
func NewStore(cardsFile, merchantsFile string, log logging.Logger) *Store {
	return &Store{CardsFile: cardsFile, MerchantsFile: merchantsFile, log: log}
}

// Catalog is the loaded, validated card catalog plus the merchant table.
type Catalog struct {
	cards    map[string]models.CardProduct
	order    []string
	mappings []models.MerchantMapping
}

// Card returns the card with the given id.
func (c *Catalog) Card(id string) (models.CardProduct, bool) {
	card, ok := c.cards[id]
	return card, ok
}

// CardMap returns the id-keyed card map consumed by the engine.
func (c *Catalog) CardMap() map[string]models.CardProduct {
	return c.cards
}

// Cards returns all cards in catalog-file order.
func (c *Catalog) Cards() []models.CardProduct {
	cards := make([]models.CardProduct, 0, len(c.order))
	for _, id := range c.order {
		cards = append(cards, c.cards[id])
	}
	return cards
}

// Mappings returns the ordered merchant-category table.
func (c *Catalog) Mappings() []models.MerchantMapping {
	return c.mappings
}

type cardsFile struct {
	Cards []models.CardProduct `yaml:"cards"`
}

type merchantsFile struct {
	Mappings []models.MerchantMapping `yaml:"mappings"`
}

// Load reads and validates both configuration files.
func (s *Store) Load() (*Catalog, error) {
	cardsPath, err := s.resolveConfigFile(s.CardsFile, "cards.yaml")
	if err != nil {
		return nil, err
	}
	merchantsPath, err := s.resolveConfigFile(s.MerchantsFile, "merchant-categories.yaml")
	if err != nil {
		return nil, err
	}

	var cf cardsFile
	if err := readYAML(cardsPath, &cf); err != nil {
		return nil, err
	}
	var mf merchantsFile
	if err := readYAML(merchantsPath, &mf); err != nil {
		return nil, err
	}

	catalog := &Catalog{
		cards:    make(map[string]models.CardProduct, len(cf.Cards)),
		mappings: mf.Mappings,
	}
	for _, card := range cf.Cards {
		if err := card.Validate(); err != nil {
			return nil, &engine.ConfigError{CardID: card.ID, Reason: err.Error()}
		}
		if _, exists := catalog.cards[card.ID]; exists {
			return nil, &engine.ConfigError{CardID: card.ID, Reason: "duplicate card id"}
		}
		catalog.cards[card.ID] = card
		catalog.order = append(catalog.order, card.ID)
	}
	for _, m := range mf.Mappings {
		if err := m.Validate(); err != nil {
			return nil, &engine.ConfigError{Reason: err.Error()}
		}
	}

	s.log.WithFields(
		logging.Field{Key: "cards", Value: len(catalog.cards)},
		logging.Field{Key: "mappings", Value: len(catalog.mappings)},
	).Debug("Catalog loaded")
	return catalog, nil
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// resolveConfigFile locates a configuration file, checking the standard
// locations when the name is relative.
func (s *Store) resolveConfigFile(filename, fallback string) (string, error) {
	if filename == "" {
		filename = fallback
	}
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", fmt.Errorf("configuration file not found: %s", filename)
		}
		return filename, nil
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "cardrec", filename))
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	s.log.WithField("file", filename).Warn("Configuration file not found in standard locations")
	return "", fmt.Errorf("configuration file not found: %s", filename)
}
