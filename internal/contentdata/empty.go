package contentdata

// IsEmptyBlock reports whether a block carries no editor-entered value. Array
// items and nested composite values are inspected; whitespace-only strings
// count as empty.
func IsEmptyBlock(block Block) bool {
	for _, value := range block.Fields {
		if !value.IsEmpty() {
			return false
		}
	}
	return true
}

// WithoutEmptyBlocks returns the blocks that carry at least one value.
func WithoutEmptyBlocks(content ContentData) ContentData {
	out := make(ContentData, 0, len(content))
	for _, block := range content {
		if IsEmptyBlock(block) {
			continue
		}
		out = append(out, block.Clone())
	}
	return out
}
