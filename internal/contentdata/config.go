package contentdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-sitecms/internal/validation"
)

var (
	// ErrConfigNotObject is returned when a schema document is not a JSON object.
	ErrConfigNotObject = errors.New("contentdata: schema must be a JSON object")
	// ErrDuplicateBlockKey is returned when a schema declares the same block key twice.
	ErrDuplicateBlockKey = errors.New("contentdata: duplicate block key")
)

// Config maps block keys to block classes. Lookups are by key; declaration
// order is preserved for listing and encoding.
type Config struct {
	keys   []string
	blocks map[string]BlockClass
}

// NewConfig returns an empty config ready for With calls.
func NewConfig() *Config {
	return &Config{blocks: map[string]BlockClass{}}
}

// With declares (or replaces) a block and returns the config for chaining.
func (c *Config) With(key string, block BlockClass) *Config {
	if c.blocks == nil {
		c.blocks = map[string]BlockClass{}
	}
	if _, exists := c.blocks[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.blocks[key] = block
	return c
}

// Without removes a block declaration.
func (c *Config) Without(key string) *Config {
	if _, exists := c.blocks[key]; !exists {
		return c
	}
	delete(c.blocks, key)
	keys := c.keys[:0]
	for _, existing := range c.keys {
		if existing != key {
			keys = append(keys, existing)
		}
	}
	c.keys = keys
	return c
}

// Block looks up a block class by key.
func (c *Config) Block(key string) (BlockClass, bool) {
	if c == nil || c.blocks == nil {
		return BlockClass{}, false
	}
	block, ok := c.blocks[key]
	return block, ok
}

// Keys returns the declared block keys in order.
func (c *Config) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Len returns the number of declared blocks.
func (c *Config) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// MarshalJSON encodes the config as an object in declaration order.
func (c Config) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		encodedBlock, err := json.Marshal(c.blocks[key])
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedBlock)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of block classes keeping key order.
func (c *Config) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	c.keys = nil
	c.blocks = map[string]BlockClass{}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrConfigNotObject
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return ErrConfigNotObject
		}
		var block BlockClass
		if err := dec.Decode(&block); err != nil {
			return fmt.Errorf("contentdata: block %q: %w", key, err)
		}
		if _, exists := c.blocks[key]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateBlockKey, key)
		}
		c.keys = append(c.keys, key)
		c.blocks[key] = block
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

var configValidator = validation.MustCompile("contentdata-config.json", configSchema())

// ParseConfig decodes a schema document. Only structure is checked: blocks
// must be objects with a fields array and each field needs a string key.
func ParseConfig(raw []byte) (*Config, error) {
	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("contentdata: parse schema: %w", err)
	}
	if _, ok := document.(map[string]any); !ok {
		return nil, ErrConfigNotObject
	}
	if err := configValidator.Validate(document); err != nil {
		return nil, fmt.Errorf("contentdata: invalid schema: %w", err)
	}
	cfg := NewConfig()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configSchema() map[string]any {
	return map[string]any{
		"$defs": map[string]any{
			"field": map[string]any{
				"type":     "object",
				"required": []any{"key"},
				"properties": map[string]any{
					"label":   map[string]any{"type": "string"},
					"key":     map[string]any{"type": "string", "minLength": 1},
					"type":    map[string]any{"type": "string"},
					"isArray": map[string]any{"type": "boolean"},
					"help":    map[string]any{"type": "string"},
					"variants": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"nestedSetCodes": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"nested": map[string]any{
						"type":  "array",
						"items": map[string]any{"$ref": "#/$defs/field"},
					},
				},
			},
			"block": map[string]any{
				"type":     "object",
				"required": []any{"fields"},
				"properties": map[string]any{
					"label": map[string]any{"type": "string"},
					"group": map[string]any{"type": "string"},
					"fields": map[string]any{
						"type":  "array",
						"items": map[string]any{"$ref": "#/$defs/field"},
					},
				},
			},
		},
		"type":                 "object",
		"additionalProperties": map[string]any{"$ref": "#/$defs/block"},
	}
}
