package contentdata

// Reconcile reshapes stored content so it matches the current schema.
//
// Blocks whose key is no longer declared are dropped. Every declared field is
// present in the output, defaulting to an empty object or an empty array
// according to the current isArray flag. Composite values keep only the nested
// keys the schema still declares. The stored field type is never checked: a
// key reused for a different type keeps its old payload.
//
// The input is never mutated and the result shares no memory with it.
func Reconcile(config *Config, existing ContentData) ContentData {
	out := make(ContentData, 0, len(existing))
	for _, block := range existing {
		class, ok := config.Block(block.Key)
		if !ok {
			continue
		}
		out = append(out, reconcileBlock(block.Key, class, block.Fields))
	}
	return out
}

// NewBlock instantiates an empty block for a declared schema block.
func NewBlock(key string, class BlockClass) Block {
	return reconcileBlock(key, class, nil)
}

// Append returns a copy of content with a new empty block added at the end.
// Unknown keys are ignored and the content is returned unchanged.
func Append(config *Config, content ContentData, key string) ContentData {
	out := content.Clone()
	class, ok := config.Block(key)
	if !ok {
		return out
	}
	return append(out, NewBlock(key, class))
}

func reconcileBlock(key string, class BlockClass, stored map[string]FieldValue) Block {
	block := Block{
		Key:    key,
		Fields: make(map[string]FieldValue, len(class.Fields)),
	}
	for _, field := range class.Fields {
		block.Fields[field.Key] = reconcileValue(field, stored[field.Key])
	}
	return block
}

func reconcileValue(class FieldClass, stored FieldValue) FieldValue {
	if class.IsArray {
		items := make([]Field, 0, len(stored.Items))
		for _, item := range stored.Items {
			items = append(items, reconcileItem(class, item))
		}
		return FieldValue{Items: items}
	}
	if stored.Item == nil {
		return FieldValue{Item: &Field{}}
	}
	item := reconcileItem(class, *stored.Item)
	return FieldValue{Item: &item}
}

func reconcileItem(class FieldClass, stored Field) Field {
	if !class.IsComposite() {
		return stored.Clone()
	}
	nested := make(map[string]FieldValue, len(class.Nested))
	for _, sub := range class.Nested {
		nested[sub.Key] = reconcileValue(sub, stored.Nested[sub.Key])
	}
	return Field{Nested: nested}
}
