package payload

import (
	"encoding/json"
	"fmt"

	"github.com/avvvet/n8n-conversation/internal/models"
	"github.com/tmc/langchaingo/jsonschema"
)

// ConvertStructure turns selector-based structure fields into a JSON Schema object
func ConvertStructure(fields []models.StructureField) (json.RawMessage, error) {
	schema := jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: make(map[string]jsonschema.Definition, len(fields)),
	}

	for _, field := range fields {
		if field.Name == "" {
			return nil, fmt.Errorf("structure field without a name")
		}

		def, err := selectorSchema(field.Selector)
		if err != nil {
			return nil, fmt.Errorf("structure field %s: %w", field.Name, err)
		}
		def.Description = field.Description

		schema.Properties[field.Name] = def
		if field.Required {
			schema.Required = append(schema.Required, field.Name)
		}
	}

	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode structure: %w", err)
	}
	return data, nil
}

// selectorConfig holds the selector options that change the schema
type selectorConfig struct {
	Multiple bool              `json:"multiple"`
	Options  []json.RawMessage `json:"options"`
}

type selectOption struct {
	Value string `json:"value"`
}

func selectorSchema(selector map[string]json.RawMessage) (jsonschema.Definition, error) {
	if len(selector) != 1 {
		return jsonschema.Definition{}, fmt.Errorf("expected exactly one selector, got %d", len(selector))
	}

	var kind string
	var raw json.RawMessage
	for k, v := range selector {
		kind, raw = k, v
	}

	var cfg selectorConfig
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return jsonschema.Definition{}, fmt.Errorf("invalid %s selector: %w", kind, err)
		}
	}

	def := jsonschema.Definition{Type: jsonschema.String}
	switch kind {
	case "number":
		def.Type = jsonschema.Number
	case "boolean":
		def.Type = jsonschema.Boolean
	case "object":
		def.Type = jsonschema.Object
	case "select":
		enum, err := optionValues(cfg.Options)
		if err != nil {
			return jsonschema.Definition{}, err
		}
		def.Enum = enum
	}

	if cfg.Multiple {
		item := def
		return jsonschema.Definition{Type: jsonschema.Array, Items: &item}, nil
	}
	return def, nil
}

// optionValues accepts both plain string options and {"value", "label"} options
func optionValues(options []json.RawMessage) ([]string, error) {
	values := make([]string, 0, len(options))
	for _, raw := range options {
		var value string
		if err := json.Unmarshal(raw, &value); err == nil {
			values = append(values, value)
			continue
		}

		var opt selectOption
		if err := json.Unmarshal(raw, &opt); err != nil {
			return nil, fmt.Errorf("invalid select option %s", string(raw))
		}
		values = append(values, opt.Value)
	}
	return values, nil
}
