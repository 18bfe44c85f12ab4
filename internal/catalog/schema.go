// internal/catalog/schema.go
package catalog

import "magick-cards/internal/common/validation"

const cardSchema = `{
  "type": "object",
  "required": ["id", "text", "type", "tags"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "text": {"type": "string", "minLength": 1},
    "type": {"type": "string", "enum": ["question", "mission"]},
    "deck": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "recommendationType": {"type": "string"},
    "businessCategories": {"type": "array", "items": {"type": "string"}},
    "mood": {"type": "string"},
    "intensity": {"type": "integer", "minimum": 1, "maximum": 5},
    "isAtHome": {"type": "boolean"}
  }
}`

var decksSchema = validation.MustCompileSchema(`{
  "type": "object",
  "required": ["decks"],
  "properties": {
    "decks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "cards"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "color": {"type": "string"},
          "icon": {"type": "string"},
          "cards": {"type": "array", "items": ` + cardSchema + `}
        }
      }
    }
  }
}`)

var businessesSchema = validation.MustCompileSchema(`{
  "type": "object",
  "required": ["businesses"],
  "properties": {
    "businesses": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "category", "tags", "location", "source"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "category": {"type": "string"},
          "tags": {"type": "array", "items": {"type": "string"}},
          "location": {
            "type": "object",
            "required": ["latitude", "longitude"],
            "properties": {
              "latitude": {"type": "number", "minimum": -90, "maximum": 90},
              "longitude": {"type": "number", "minimum": -180, "maximum": 180},
              "address": {"type": "string"}
            }
          },
          "source": {"type": "string", "enum": ["affiliate", "sponsor"]},
          "description": {"type": "string"},
          "rating": {"type": "number", "minimum": 0, "maximum": 5}
        }
      }
    }
  }
}`)
