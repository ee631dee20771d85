package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// SplitFrontMatter strips a leading front matter block from source and
// returns its values plus the remaining Markdown body. Source without a
// front matter block is returned unchanged with empty metadata.
func SplitFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	if !hasFrontMatter(source) {
		return interfaces.FrontMatter{}, source, nil
	}
	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return interfaces.FrontMatter(normalizeKeys(meta)), body, nil
}

// frontMatterKey matches the first entry of a YAML (key:) or TOML (key =)
// block.
var frontMatterKey = map[string]*regexp.Regexp{
	"---": regexp.MustCompile(`^[A-Za-z0-9_"'][^:]*:(\s|$)`),
	"+++": regexp.MustCompile(`^[A-Za-z0-9_"'][^=]*=`),
	";;;": regexp.MustCompile(`^\S`),
}

// hasFrontMatter requires an opening delimiter line, a key on the very next
// line and a closing delimiter line. A leading thematic break stays Markdown.
func hasFrontMatter(source []byte) bool {
	text := strings.ReplaceAll(strings.TrimPrefix(string(source), "\ufeff"), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return false
	}
	delim := strings.TrimRight(lines[0], " \t")
	keyLine, ok := frontMatterKey[delim]
	if !ok || !keyLine.MatchString(lines[1]) {
		return false
	}
	for _, line := range lines[2:] {
		if strings.TrimRight(line, " \t") == delim {
			return true
		}
	}
	return false
}

// normalizeKeys turns map[any]any values from TOML/YAML decoders into
// map[string]any so the data survives JSON encoding into template contexts.
func normalizeKeys(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return normalizeKeys(typed)
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, nested := range typed {
			out[fmt.Sprint(key)] = normalizeValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, nested := range typed {
			out[i] = normalizeValue(nested)
		}
		return out
	default:
		return value
	}
}
