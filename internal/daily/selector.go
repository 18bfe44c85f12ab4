// internal/daily/selector.go
package daily

import (
	"time"

	"magick-cards/internal/common/errors"
	"magick-cards/internal/models"
)

// DateLayout is the canonical day key persisted under daily_card_date.
const DateLayout = "2006-01-02"

// DateKey returns the canonical day key of t in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Seed hashes a day key with a 31-multiplier polynomial over its bytes.
func Seed(dateKey string) uint32 {
	var h uint32
	for i := 0; i < len(dateKey); i++ {
		h = h*31 + uint32(dateKey[i])
	}
	return h
}

// Selection is the card of the day and the day it belongs to.
type Selection struct {
	Card    models.Card `json:"card"`
	Date    string      `json:"date"`
	NewDate bool        `json:"-"`
}

type Selector struct{}

// SelectDaily picks the card of the day for date from corpus. The choice
// depends only on the day key and the corpus, so repeated calls within one day
// agree. NewDate reports whether the day differs from lastComputedDate.
func (Selector) SelectDaily(corpus []models.Card, date time.Time, lastComputedDate string) (Selection, error) {
	if len(corpus) == 0 {
		return Selection{}, errors.NewInvalidArgumentError("daily card corpus is empty")
	}

	key := DateKey(date)
	idx := int(Seed(key) % uint32(len(corpus)))

	return Selection{
		Card:    corpus[idx],
		Date:    key,
		NewDate: key != lastComputedDate,
	}, nil
}
