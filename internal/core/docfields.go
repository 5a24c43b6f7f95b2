package core

import (
	"strings"
	"unicode"
)

// Canonical field keys shared by both document encodings.
const (
	keyID           = "id"
	keyTitle        = "title"
	keyName         = "name"
	keyFeature      = "feature"
	keyType         = "type"
	keyPriority     = "priority"
	keyStatus       = "status"
	keyEffort       = "effort"
	keyDescription  = "description"
	keyAcceptance   = "acceptance"
	keyDependencies = "dependencies"
	keyUserStories  = "stories"
)

// fieldAliases maps a normalized field label to its canonical key.
var fieldAliases = map[string]string{
	"id":                 keyID,
	"taskid":             keyID,
	"title":              keyTitle,
	"name":               keyName,
	"featurename":        keyName,
	"feature":            keyFeature,
	"featureid":          keyFeature,
	"featureref":         keyFeature,
	"parentfeature":      keyFeature,
	"type":               keyType,
	"tasktype":           keyType,
	"kind":               keyType,
	"priority":           keyPriority,
	"status":             keyStatus,
	"state":              keyStatus,
	"estimatedeffort":    keyEffort,
	"effort":             keyEffort,
	"estimate":           keyEffort,
	"estimation":         keyEffort,
	"description":        keyDescription,
	"desc":               keyDescription,
	"summary":            keyDescription,
	"overview":           keyDescription,
	"acceptancecriteria": keyAcceptance,
	"acceptance":         keyAcceptance,
	"criteria":           keyAcceptance,
	"dependencies":       keyDependencies,
	"dependency":         keyDependencies,
	"deps":               keyDependencies,
	"dependson":          keyDependencies,
	"blockedby":          keyDependencies,
	"userstories":        keyUserStories,
	"userstory":          keyUserStories,
	"stories":            keyUserStories,
}

// listKeys are the canonical keys whose values are ordered lists.
var listKeys = map[string]bool{
	keyAcceptance:   true,
	keyDependencies: true,
	keyUserStories:  true,
}

// canonicalKey normalizes a field label ("Feature ID", "feature_id",
// "featureId") and returns its canonical key, or "" if the label is unknown.
func canonicalKey(label string) string {
	var b strings.Builder
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return fieldAliases[b.String()]
}

// encoding identifies which document strategy produced a set of fields.
type encoding int

const (
	encodingFrontmatter encoding = iota
	encodingLegacy
)

func (e encoding) String() string {
	switch e {
	case encodingFrontmatter:
		return "frontmatter"
	case encodingLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// docFields holds the fields one strategy extracted from a document.
// A key present in lists with an empty slice was explicitly set empty.
type docFields struct {
	scalars map[string]string
	lists   map[string][]string
}

func newDocFields() docFields {
	return docFields{
		scalars: make(map[string]string),
		lists:   make(map[string][]string),
	}
}

func (f docFields) has(key string) bool {
	if listKeys[key] {
		_, ok := f.lists[key]
		return ok
	}
	_, ok := f.scalars[key]
	return ok
}

func (f docFields) scalar(key string) string {
	return f.scalars[key]
}

// list returns a copy of the list for key, never nil.
func (f docFields) list(key string) []string {
	out := make([]string, 0, len(f.lists[key]))
	return append(out, f.lists[key]...)
}

// setScalar records a scalar value unless the key is already set or the
// value is blank.
func (f docFields) setScalar(key, value string) {
	value = strings.TrimSpace(value)
	if key == "" || value == "" || f.has(key) {
		return
	}
	if listKeys[key] {
		f.lists[key] = splitInlineList(value)
		return
	}
	f.scalars[key] = value
}

// setList records a list value unless the key is already set.
func (f docFields) setList(key string, items []string) {
	if key == "" || f.has(key) {
		return
	}
	if !listKeys[key] {
		f.scalars[key] = strings.TrimSpace(strings.Join(items, ", "))
		if f.scalars[key] == "" {
			delete(f.scalars, key)
		}
		return
	}
	clean := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			clean = append(clean, item)
		}
	}
	f.lists[key] = clean
}

// appendItem adds one item to a list key that is being collected.
func (f docFields) appendItem(key, item string) {
	item = strings.TrimSpace(item)
	if item == "" {
		return
	}
	f.lists[key] = append(f.lists[key], item)
}

// fillFrom copies every field of other that f does not already have.
func (f docFields) fillFrom(other docFields) {
	for k, v := range other.scalars {
		if !f.has(k) {
			f.scalars[k] = v
		}
	}
	for k, v := range other.lists {
		if !f.has(k) {
			f.lists[k] = append([]string{}, v...)
		}
	}
}

// splitInlineList splits "a, b, c" or "[a, b]" into items. "None", "N/A"
// and "-" mean an empty list.
func splitInlineList(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")
	if isNoneMarker(value) {
		return []string{}
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = unquote(strings.TrimSpace(p))
		if p != "" && !isNoneMarker(p) {
			items = append(items, p)
		}
	}
	return items
}

func isNoneMarker(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "n/a", "na", "-", "nil", "null":
		return true
	}
	return false
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
