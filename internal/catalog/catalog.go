// internal/catalog/catalog.go
package catalog

import (
	"fmt"
	"math/rand/v2"

	"magick-cards/internal/common/config"
	"magick-cards/internal/common/errors"
	"magick-cards/internal/models"
)

// Catalog is the immutable card corpus and business catalog.
type Catalog struct {
	decks      []models.Deck
	cards      []models.Card
	cardIndex  map[string]int
	deckIndex  map[string]int
	businesses []models.Business
}

// Load builds a catalog from the configured files, using the built-in data
// for any path left empty.
func Load(cfg config.CatalogConfig) (*Catalog, error) {
	decks, err := LoadDecks(cfg.CardsPath)
	if err != nil {
		return nil, err
	}
	businesses, err := LoadBusinesses(cfg.BusinessesPath)
	if err != nil {
		return nil, err
	}
	return New(decks, businesses)
}

// New indexes decks and businesses. Card, deck and business ids must be
// unique; a card without a deck inherits the id of the deck holding it.
func New(decks []models.Deck, businesses []models.Business) (*Catalog, error) {
	c := &Catalog{
		decks:      make([]models.Deck, len(decks)),
		cardIndex:  make(map[string]int),
		deckIndex:  make(map[string]int, len(decks)),
		businesses: make([]models.Business, len(businesses)),
	}

	var problems []string
	for i, d := range decks {
		if _, dup := c.deckIndex[d.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate deck id %q", d.ID))
			continue
		}
		c.deckIndex[d.ID] = i

		cards := make([]models.Card, len(d.Cards))
		for j, card := range d.Cards {
			if card.Deck == "" {
				card.Deck = d.ID
			}
			if _, dup := c.cardIndex[card.ID]; dup {
				problems = append(problems, fmt.Sprintf("duplicate card id %q", card.ID))
				continue
			}
			c.cardIndex[card.ID] = len(c.cards)
			c.cards = append(c.cards, card)
			cards[j] = card
		}
		d.Cards = cards
		c.decks[i] = d
	}

	seen := make(map[string]struct{}, len(businesses))
	for i, b := range businesses {
		if _, dup := seen[b.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate business id %q", b.ID))
		}
		seen[b.ID] = struct{}{}
		if !b.Source.Valid() {
			problems = append(problems, fmt.Sprintf("business %q has unknown source %q", b.ID, b.Source))
		}
		c.businesses[i] = b
	}

	if len(problems) > 0 {
		return nil, errors.NewCatalogInvalidError("catalog", problems)
	}
	return c, nil
}

func (c *Catalog) Decks() []models.Deck {
	out := make([]models.Deck, len(c.decks))
	copy(out, c.decks)
	return out
}

// Cards returns every card, deck by deck, in catalog order. This is the daily
// card corpus.
func (c *Catalog) Cards() []models.Card {
	out := make([]models.Card, len(c.cards))
	copy(out, c.cards)
	return out
}

func (c *Catalog) Businesses() []models.Business {
	out := make([]models.Business, len(c.businesses))
	copy(out, c.businesses)
	return out
}

func (c *Catalog) Card(id string) (models.Card, error) {
	i, ok := c.cardIndex[id]
	if !ok {
		return models.Card{}, errors.NewCardNotFoundError(id)
	}
	return c.cards[i], nil
}

func (c *Catalog) Deck(id string) (models.Deck, error) {
	i, ok := c.deckIndex[id]
	if !ok {
		return models.Deck{}, errors.NewDeckNotFoundError(id)
	}
	return c.decks[i], nil
}

// Draw picks a card uniformly at random from the deck. A nil rng uses the
// package-level source.
func (c *Catalog) Draw(deckID string, rng *rand.Rand) (models.Card, error) {
	deck, err := c.Deck(deckID)
	if err != nil {
		return models.Card{}, err
	}
	if len(deck.Cards) == 0 {
		return models.Card{}, errors.NewInvalidArgumentError(fmt.Sprintf("deck %q has no cards", deckID))
	}

	var i int
	if rng != nil {
		i = rng.IntN(len(deck.Cards))
	} else {
		i = rand.IntN(len(deck.Cards))
	}
	return deck.Cards[i], nil
}
