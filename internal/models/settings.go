// internal/models/settings.go
package models

import (
	"encoding/json"

	"magick-cards/internal/common/errors"
)

type MonetizationMode string

const (
	MonetizationAffiliate MonetizationMode = "affiliate"
	MonetizationSponsor   MonetizationMode = "sponsor"
)

// Valid reports whether m is one of the two accepted modes.
func (m MonetizationMode) Valid() bool {
	return m == MonetizationAffiliate || m == MonetizationSponsor
}

// ParseMonetizationMode converts s into a MonetizationMode, rejecting anything
// other than "affiliate" or "sponsor".
func ParseMonetizationMode(s string) (MonetizationMode, error) {
	m := MonetizationMode(s)
	if !m.Valid() {
		return "", errors.NewUnknownMonetizationModeError(s)
	}
	return m, nil
}

// UnmarshalJSON leaves m untouched for a JSON null.
func (m *MonetizationMode) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMonetizationMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m MonetizationMode) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return nil, errors.NewUnknownMonetizationModeError(string(m))
	}
	return json.Marshal(string(m))
}

type LocationData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
}

// UserSettings is the per-device settings record. Location stays nil until a
// location provider has answered at least once.
type UserSettings struct {
	DarkMode         bool             `json:"darkMode"`
	MonetizationMode MonetizationMode `json:"monetizationMode"`
	Location         *LocationData    `json:"location"`
}

func DefaultSettings() UserSettings {
	return UserSettings{
		DarkMode:         false,
		MonetizationMode: MonetizationAffiliate,
		Location:         nil,
	}
}

// Clone returns a copy that shares no pointers with s.
func (s UserSettings) Clone() UserSettings {
	out := s
	if s.Location != nil {
		loc := *s.Location
		out.Location = &loc
	}
	return out
}

// SettingsPatch is a partial update; nil fields are left untouched.
type SettingsPatch struct {
	DarkMode         *bool             `json:"darkMode,omitempty"`
	MonetizationMode *MonetizationMode `json:"monetizationMode,omitempty"`
	Location         *LocationData     `json:"location,omitempty"`
}

// Apply returns s with the non-nil fields of p shallowly overwritten.
func (p SettingsPatch) Apply(s UserSettings) UserSettings {
	out := s.Clone()
	if p.DarkMode != nil {
		out.DarkMode = *p.DarkMode
	}
	if p.MonetizationMode != nil {
		out.MonetizationMode = *p.MonetizationMode
	}
	if p.Location != nil {
		loc := *p.Location
		out.Location = &loc
	}
	return out
}
