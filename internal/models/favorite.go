// internal/models/favorite.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FavoriteRecord marks one favorited card. Timestamp is Unix milliseconds.
type FavoriteRecord struct {
	CardID    string `json:"cardId"`
	Timestamp int64  `json:"timestamp"`
}

// FavoriteList is the persisted favorites blob. Older installs stored a bare
// list of card ids; both shapes decode, records are always written.
type FavoriteList []FavoriteRecord

func (l *FavoriteList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(FavoriteList, 0, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var id string
			if err := json.Unmarshal(item, &id); err != nil {
				return err
			}
			out = append(out, FavoriteRecord{CardID: id})
			continue
		}

		var rec FavoriteRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return fmt.Errorf("favorite %d: %w", i, err)
		}
		if rec.CardID == "" {
			return fmt.Errorf("favorite %d: missing cardId", i)
		}
		out = append(out, rec)
	}

	*l = out
	return nil
}
