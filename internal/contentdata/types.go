package contentdata

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FieldType tags a schema field. The reconciler treats it as opaque except for
// FieldTypeComposite.
type FieldType string

const (
	FieldTypeImage     FieldType = "image"
	FieldTypeString    FieldType = "string"
	FieldTypeRichText  FieldType = "rich_text"
	FieldTypePageLink  FieldType = "page_link"
	FieldTypeComposite FieldType = "composite"
)

// Known reports whether the type is one of the enumerated field types.
func (t FieldType) Known() bool {
	switch t {
	case FieldTypeImage, FieldTypeString, FieldTypeRichText, FieldTypePageLink, FieldTypeComposite:
		return true
	default:
		return false
	}
}

// FieldClass describes a single field slot declared by a block schema.
type FieldClass struct {
	Label          string          `json:"label"`
	Key            string          `json:"key"`
	Type           FieldType       `json:"type"`
	Variants       []string        `json:"variants,omitempty"`
	IsArray        bool            `json:"isArray,omitempty"`
	Nested         []FieldClass    `json:"nested,omitempty"`
	NestedSets     json.RawMessage `json:"nestedSets,omitempty"`
	NestedSetCodes []string        `json:"nestedSetCodes,omitempty"`
	Help           string          `json:"help,omitempty"`
}

// IsComposite reports whether the field nests declared sub-fields.
func (f FieldClass) IsComposite() bool {
	return f.Type == FieldTypeComposite && len(f.Nested) > 0
}

// BlockClass describes a reusable block and the fields it carries.
type BlockClass struct {
	Label  string       `json:"label"`
	Group  string       `json:"group,omitempty"`
	Fields []FieldClass `json:"fields"`
}

// Field is a stored field value. Which payload is populated depends on the
// owning schema field type; Nested is only used by composite fields.
type Field struct {
	StringValue   string                `json:"stringValue,omitempty"`
	RichTextValue string                `json:"richTextValue,omitempty"`
	ImageSrc      string                `json:"imageSrc,omitempty"`
	ImageAlt      string                `json:"imageAlt,omitempty"`
	PageID        string                `json:"pageId,omitempty"`
	Nested        map[string]FieldValue `json:"nested,omitempty"`
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	if f.Nested != nil {
		out.Nested = make(map[string]FieldValue, len(f.Nested))
		for key, value := range f.Nested {
			out.Nested[key] = value.Clone()
		}
	}
	return out
}

// IsEmpty reports whether no payload is populated, recursing through nested values.
func (f Field) IsEmpty() bool {
	for _, payload := range []string{f.StringValue, f.RichTextValue, f.ImageSrc, f.ImageAlt, f.PageID} {
		if strings.TrimSpace(payload) != "" {
			return false
		}
	}
	for _, value := range f.Nested {
		if !value.IsEmpty() {
			return false
		}
	}
	return true
}

// FieldValue holds either a single Field or a list of Fields. A value with a
// non-nil Items slice is an array value, even when the slice is empty.
type FieldValue struct {
	Item  *Field
	Items []Field
}

// Single wraps one field value.
func Single(field Field) FieldValue {
	return FieldValue{Item: &field}
}

// List wraps an array value. List() yields an empty, non-nil array.
func List(fields ...Field) FieldValue {
	items := make([]Field, len(fields))
	copy(items, fields)
	return FieldValue{Items: items}
}

// IsArray reports whether the value has array shape.
func (v FieldValue) IsArray() bool {
	return v.Items != nil
}

// IsZero reports whether the value is absent.
func (v FieldValue) IsZero() bool {
	return v.Item == nil && v.Items == nil
}

// Clone returns a deep copy of the value.
func (v FieldValue) Clone() FieldValue {
	var out FieldValue
	if v.Item != nil {
		item := v.Item.Clone()
		out.Item = &item
	}
	if v.Items != nil {
		out.Items = make([]Field, len(v.Items))
		for i, item := range v.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// IsEmpty reports whether neither the single item nor any array item carries a payload.
func (v FieldValue) IsEmpty() bool {
	if v.Item != nil && !v.Item.IsEmpty() {
		return false
	}
	for _, item := range v.Items {
		if !item.IsEmpty() {
			return false
		}
	}
	return true
}

// MarshalJSON encodes arrays as JSON arrays and single values as objects.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.Items != nil:
		return json.Marshal(v.Items)
	case v.Item != nil:
		return json.Marshal(v.Item)
	default:
		return []byte("{}"), nil
	}
}

// UnmarshalJSON accepts either an object or an array.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*v = FieldValue{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		items := []Field{}
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		v.Items = items
		return nil
	}
	var item Field
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return err
	}
	v.Item = &item
	return nil
}

// Block is one instantiated block inside a content array.
type Block struct {
	Key    string                `json:"key"`
	Fields map[string]FieldValue `json:"fields"`
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	out := Block{Key: b.Key}
	if b.Fields != nil {
		out.Fields = make(map[string]FieldValue, len(b.Fields))
		for key, value := range b.Fields {
			out.Fields[key] = value.Clone()
		}
	}
	return out
}

// ContentData is an ordered list of blocks. Order is display order.
type ContentData []Block

// Clone returns a deep copy of the content.
func (c ContentData) Clone() ContentData {
	if c == nil {
		return nil
	}
	out := make(ContentData, len(c))
	for i, block := range c {
		out[i] = block.Clone()
	}
	return out
}

// Keys lists the block keys in order.
func (c ContentData) Keys() []string {
	keys := make([]string, 0, len(c))
	for _, block := range c {
		keys = append(keys, block.Key)
	}
	return keys
}

// ParseContentData decodes stored content. Empty input yields an empty slice.
func ParseContentData(raw []byte) (ContentData, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ContentData{}, nil
	}
	var data ContentData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = ContentData{}
	}
	return data, nil
}
