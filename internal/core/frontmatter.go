package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// plainKeyValue matches a bare `key: value` line as written in a
// hand-edited header block.
var plainKeyValue = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_ -]*:(?:\s|$)`)

// document is a markdown file split into its optional frontmatter block
// and the remaining body lines.
type document struct {
	path           string
	frontmatter    []string
	hasFrontmatter bool
	body           []string

	// meta is the decoded block, nil when it was not valid YAML.
	meta map[string]any
}

// splitDocument separates a leading `---` fenced block from the body. A
// fence that is never closed, or a fenced block that is neither a YAML
// mapping nor plain `key: value` lines, is ordinary body text.
func splitDocument(path, content string) document {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\uFEFF")
	lines := strings.Split(content, "\n")

	doc := document{path: path, body: lines}

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start >= len(lines) || strings.TrimSpace(lines[start]) != "---" {
		return doc
	}
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			block := lines[start+1 : i]
			meta, ok := decodeFrontmatter(block)
			if !ok {
				return doc
			}
			doc.frontmatter = block
			doc.meta = meta
			doc.hasFrontmatter = true
			doc.body = lines[i+1:]
			return doc
		}
	}
	return doc
}

// decodeFrontmatter decodes a fenced block. A YAML mapping is returned as
// is. Otherwise the block counts as frontmatter only when every non-blank
// line is a plain `key: value` pair; markdown between two horizontal rules
// is rejected.
func decodeFrontmatter(block []string) (map[string]any, bool) {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(block, "\n")), &raw); err == nil && raw != nil {
		return raw, true
	}
	for _, line := range block {
		line = strings.TrimSpace(line)
		if line != "" && !plainKeyValue.MatchString(line) {
			return nil, false
		}
	}
	return nil, true
}

// frontmatterSource extracts fields from the structured key-value block.
type frontmatterSource struct{}

func (frontmatterSource) encoding() encoding { return encodingFrontmatter }

func (frontmatterSource) extract(doc document) docFields {
	fields := newDocFields()
	if !doc.hasFrontmatter {
		return fields
	}

	if doc.meta != nil {
		for label, value := range doc.meta {
			applyYAMLValue(fields, canonicalKey(label), value)
		}
		return fields
	}

	// The block is plain `key: value` lines that are not valid YAML as a
	// whole. Read it line by line so one bad line does not discard the rest.
	for _, line := range doc.frontmatter {
		label, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		key := canonicalKey(label)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
			fields.setList(key, splitInlineList(value))
			continue
		}
		fields.setScalar(key, unquote(value))
	}
	return fields
}

// applyYAMLValue stores one decoded YAML value. Nested maps and nulls are
// ignored.
func applyYAMLValue(fields docFields, key string, value any) {
	if key == "" {
		return
	}
	switch v := value.(type) {
	case nil:
		return
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := yamlScalar(item); ok {
				items = append(items, s)
			}
		}
		fields.setList(key, items)
	case map[string]any:
		return
	default:
		s, ok := yamlScalar(v)
		if !ok {
			return
		}
		if listKeys[key] {
			fields.setList(key, splitInlineList(s))
			return
		}
		fields.setScalar(key, s)
	}
}

func yamlScalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(t), true
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02"), true
		}
		return t.Format(time.RFC3339), true
	default:
		return "", false
	}
}
