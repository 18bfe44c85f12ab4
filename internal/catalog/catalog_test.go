// internal/catalog/catalog_test.go
package catalog

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"magick-cards/internal/common/config"
	"magick-cards/internal/common/errors"
	"magick-cards/internal/common/logger"
	"magick-cards/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// ==========================
// Loading
// ==========================

func TestLoad_BuiltIn(t *testing.T) {
	c, err := Load(config.CatalogConfig{})
	require.NoError(t, err)

	decks := c.Decks()
	require.NotEmpty(t, decks)

	total := 0
	for _, d := range decks {
		total += len(d.Cards)
	}
	assert.Len(t, c.Cards(), total)
	assert.Equal(t, decks[0].Cards[0].ID, c.Cards()[0].ID, "corpus is flattened in deck order")
	assert.NotEmpty(t, c.Businesses())

	card, err := c.Card("datenight-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"restaurant"}, card.BusinessCategories)
	assert.Equal(t, 3, card.Intensity)
}

func TestLoadDecks_JSON(t *testing.T) {
	path := writeFile(t, "decks.json", `{
  "decks": [{
    "id": "spark", "name": "Spark", "description": "", "color": "#fff", "icon": "bolt",
    "cards": [
      {"id": "s1", "text": "Ask me anything.", "type": "question", "tags": ["fun"], "isAtHome": true},
      {"id": "s2", "text": "Go bowling.", "type": "mission", "deck": "spark", "tags": [], "intensity": 4}
    ]
  }]
}`)

	decks, err := LoadDecks(path)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	require.Len(t, decks[0].Cards, 2)
	assert.True(t, decks[0].Cards[0].IsAtHome)
	assert.Equal(t, 4, decks[0].Cards[1].Intensity)
}

func TestLoadBusinesses_YAML(t *testing.T) {
	path := writeFile(t, "biz.yml", `
businesses:
  - id: b1
    name: Corner Cafe
    category: cafe
    tags: [cozy]
    location: {latitude: 30.1, longitude: -81.5, address: "1 Main"}
    source: sponsor
    rating: 4
`)

	businesses, err := LoadBusinesses(path)
	require.NoError(t, err)
	require.Len(t, businesses, 1)
	assert.Equal(t, models.MonetizationSponsor, businesses[0].Source)
	require.NotNil(t, businesses[0].Rating)
	assert.Equal(t, 4.0, *businesses[0].Rating)
	assert.Equal(t, 30.1, businesses[0].Location.Latitude)
}

func TestLoad_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		load func(string) error
	}{
		{
			name: "unknown card type",
			file: "decks.json",
			body: `{"decks":[{"id":"d","name":"D","cards":[{"id":"c","text":"t","type":"dare","tags":[]}]}]}`,
			load: func(p string) error { _, err := LoadDecks(p); return err },
		},
		{
			name: "intensity out of range",
			file: "decks.yaml",
			body: "decks:\n  - id: d\n    name: D\n    cards:\n      - {id: c, text: t, type: mission, tags: [], intensity: 9}\n",
			load: func(p string) error { _, err := LoadDecks(p); return err },
		},
		{
			name: "unknown business source",
			file: "biz.json",
			body: `{"businesses":[{"id":"b","name":"B","category":"bar","tags":[],"location":{"latitude":1,"longitude":2},"source":"referral"}]}`,
			load: func(p string) error { _, err := LoadBusinesses(p); return err },
		},
		{
			name: "latitude out of range",
			file: "biz.json",
			body: `{"businesses":[{"id":"b","name":"B","category":"bar","tags":[],"location":{"latitude":100,"longitude":2},"source":"sponsor"}]}`,
			load: func(p string) error { _, err := LoadBusinesses(p); return err },
		},
		{
			name: "malformed json",
			file: "biz.json",
			body: `{"businesses":[`,
			load: func(p string) error { _, err := LoadBusinesses(p); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.load(writeFile(t, tt.file, tt.body))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeCatalogInvalid), err.Error())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(config.CatalogConfig{CardsPath: filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)
}

// ==========================
// Indexing & Lookup
// ==========================

func TestNew_Duplicates(t *testing.T) {
	decks := []models.Deck{
		{ID: "a", Cards: []models.Card{{ID: "c1"}}},
		{ID: "b", Cards: []models.Card{{ID: "c1"}}},
	}
	_, err := New(decks, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate card id "c1"`)

	_, err = New(nil, []models.Business{
		{ID: "x", Source: models.MonetizationSponsor},
		{ID: "x", Source: models.MonetizationSponsor},
	})
	assert.Error(t, err)
}

func TestNew_CardInheritsDeck(t *testing.T) {
	c, err := New([]models.Deck{{ID: "a", Cards: []models.Card{{ID: "c1"}}}}, nil)
	require.NoError(t, err)

	card, err := c.Card("c1")
	require.NoError(t, err)
	assert.Equal(t, "a", card.Deck)
}

func TestCatalog_NotFound(t *testing.T) {
	c, err := New(nil, nil)
	require.NoError(t, err)

	_, err = c.Card("missing")
	assert.True(t, errors.IsCode(err, errors.ErrCodeCardNotFound))
	_, err = c.Deck("missing")
	assert.True(t, errors.IsCode(err, errors.ErrCodeDeckNotFound))
}

// ==========================
// Draw
// ==========================

func TestCatalog_Draw(t *testing.T) {
	c, err := New([]models.Deck{
		{ID: "a", Cards: []models.Card{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}}},
		{ID: "empty"},
	}, nil)
	require.NoError(t, err)

	seen := map[string]bool{}
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		card, err := c.Draw("a", rng)
		require.NoError(t, err)
		assert.Equal(t, "a", card.Deck)
		seen[card.ID] = true
	}
	assert.Len(t, seen, 3)

	first, _ := c.Draw("a", rand.New(rand.NewPCG(7, 7)))
	again, _ := c.Draw("a", rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, first, again, "same seed draws the same card")

	_, err = c.Draw("a", nil)
	assert.NoError(t, err)

	_, err = c.Draw("empty", rng)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))

	_, err = c.Draw("nope", rng)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDeckNotFound))
}

// ==========================
// Business cache
// ==========================

type memoryBusinessCache struct {
	list    []models.Business
	outcome errors.Outcome
	writes  int
}

func (m *memoryBusinessCache) CachedBusinesses(ctx context.Context) ([]models.Business, errors.Outcome) {
	if m.list == nil {
		return []models.Business{}, errors.OutcomeDefault
	}
	return m.list, m.outcome
}

func (m *memoryBusinessCache) CacheBusinesses(ctx context.Context, businesses []models.Business) errors.Outcome {
	m.writes++
	m.list = businesses
	m.outcome = errors.OutcomeOK
	return errors.OutcomeOK
}

func TestLoadCached_WritesCacheOnSuccess(t *testing.T) {
	cache := &memoryBusinessCache{}

	c, err := LoadCached(context.Background(), config.CatalogConfig{}, cache, logger.NewTestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, 1, cache.writes)
	assert.Equal(t, c.Businesses(), cache.list)
}

func TestLoadCached_FallsBackToCache(t *testing.T) {
	broken := writeFile(t, "businesses.yaml", "businesses: [{id: x}]\n")
	cached := []models.Business{{
		ID: "biz-cached", Name: "Cached Cafe", Category: "cafe",
		Location: models.BusinessLocation{Latitude: 30.33, Longitude: -81.65},
		Source:   models.MonetizationSponsor,
	}}

	cache := &memoryBusinessCache{list: cached, outcome: errors.OutcomeOK}
	c, err := LoadCached(context.Background(), config.CatalogConfig{BusinessesPath: broken}, cache, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, cached, c.Businesses())
	assert.Zero(t, cache.writes)

	_, err = LoadCached(context.Background(), config.CatalogConfig{BusinessesPath: broken}, &memoryBusinessCache{}, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCatalogInvalid))
}
