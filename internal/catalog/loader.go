// internal/catalog/loader.go
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"magick-cards/internal/common/errors"
	"magick-cards/internal/common/validation"
	"magick-cards/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var defaultFS embed.FS

const (
	defaultDecksFile      = "data/decks.yaml"
	defaultBusinessesFile = "data/businesses.yaml"
)

type decksDocument struct {
	Decks []models.Deck `json:"decks" yaml:"decks"`
}

type businessesDocument struct {
	Businesses []models.Business `json:"businesses" yaml:"businesses"`
}

// LoadDecks reads a decks document from path, or the built-in decks when
// path is empty. Files ending in .yaml or .yml are YAML, anything else JSON.
func LoadDecks(path string) ([]models.Deck, error) {
	data, source, err := readSource(path, defaultDecksFile)
	if err != nil {
		return nil, err
	}
	var doc decksDocument
	if err := decode(data, source, decksSchema, &doc); err != nil {
		return nil, err
	}
	return doc.Decks, nil
}

// LoadBusinesses reads a businesses document from path, or the built-in
// catalog when path is empty.
func LoadBusinesses(path string) ([]models.Business, error) {
	data, source, err := readSource(path, defaultBusinessesFile)
	if err != nil {
		return nil, err
	}
	var doc businessesDocument
	if err := decode(data, source, businessesSchema, &doc); err != nil {
		return nil, err
	}
	return doc.Businesses, nil
}

func readSource(path, fallback string) ([]byte, string, error) {
	if path == "" {
		data, err := defaultFS.ReadFile(fallback)
		if err != nil {
			return nil, "", fmt.Errorf("read built-in catalog %s: %w", fallback, err)
		}
		return data, fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read catalog %s: %w", path, err)
	}
	return data, path, nil
}

func isYAML(source string) bool {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// decode validates data against schema before decoding it into dst.
func decode(data []byte, source string, schema *validation.Schema, dst interface{}) error {
	var generic interface{}
	var err error
	if isYAML(source) {
		err = yaml.Unmarshal(data, &generic)
	} else {
		err = json.Unmarshal(data, &generic)
	}
	if err != nil {
		return errors.NewCatalogInvalidError(source, []string{err.Error()})
	}

	result, err := schema.Validate(generic)
	if err != nil {
		return errors.NewCatalogInvalidError(source, []string{err.Error()})
	}
	if !result.Valid {
		return errors.NewCatalogInvalidError(source, result.GetErrorMessages())
	}

	if isYAML(source) {
		err = yaml.Unmarshal(data, dst)
	} else {
		err = json.Unmarshal(data, dst)
	}
	if err != nil {
		return errors.NewCatalogInvalidError(source, []string{err.Error()})
	}
	return nil
}
