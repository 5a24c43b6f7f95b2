package core

import (
	"regexp"
	"strings"
)

var (
	headerPattern     = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*$`)
	boldFieldPattern  = regexp.MustCompile(`^(?:[-*+]\s+)?\*\*([^*]+?):?\*\*\s*:?\s*(.*)$`)
	plainFieldPattern = regexp.MustCompile(`^[-*+]\s+([A-Za-z][A-Za-z0-9 _/-]{0,40}?)\s*:\s*(.*)$`)
	listItemPattern   = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+(.*)$`)
	checkboxPattern   = regexp.MustCompile(`^\[[ xX~-]?\]\s*`)
)

// legacySource extracts fields from the older markdown convention: bullet
// field lines (`- Field: value`, `- **Field:** value`) and `## Section`
// blocks holding lists or free text.
type legacySource struct{}

func (legacySource) encoding() encoding { return encodingLegacy }

// legacySection is the section currently being collected.
type legacySection struct {
	key   string
	level int
	list  bool
	text  []string
}

func (legacySource) extract(doc document) docFields {
	fields := newDocFields()

	var sec *legacySection
	var capture string

	closeSection := func() {
		if sec != nil && !sec.list {
			fields.setScalar(sec.key, sectionText(sec.key, sec.text))
		}
		sec = nil
	}

	for _, raw := range doc.body {
		line := strings.TrimSpace(raw)

		if m := headerPattern.FindStringSubmatch(line); m != nil {
			level := len(m[1])
			// Sub-headings group items without ending the section.
			if sec != nil && level > sec.level {
				continue
			}
			closeSection()
			capture = ""

			key := canonicalKey(m[2])
			if key == "" || level < 2 || fields.has(key) {
				continue
			}
			sec = &legacySection{key: key, level: level, list: listKeys[key]}
			if sec.list {
				fields.lists[key] = []string{}
			}
			continue
		}

		if sec != nil {
			if sec.list {
				if m := listItemPattern.FindStringSubmatch(line); m != nil {
					fields.appendItem(sec.key, cleanItem(m[1]))
				}
				continue
			}
			sec.text = append(sec.text, line)
			continue
		}

		if label, value, ok := parseFieldLine(line); ok && (canonicalKey(label) != "" || capture == "") {
			key := canonicalKey(label)
			capture = ""
			if key == "" {
				continue
			}
			if listKeys[key] && strings.TrimSpace(value) == "" {
				if !fields.has(key) {
					fields.lists[key] = []string{}
					capture = key
				}
				continue
			}
			fields.setScalar(key, cleanItem(value))
			continue
		}

		if capture != "" {
			if m := listItemPattern.FindStringSubmatch(line); m != nil {
				fields.appendItem(capture, cleanItem(m[1]))
			} else if line != "" {
				capture = ""
			}
		}
	}
	closeSection()

	return fields
}

// parseFieldLine recognizes `- **Field:** value`, `**Field**: value` and
// `- Field: value`.
func parseFieldLine(line string) (label, value string, ok bool) {
	if m := boldFieldPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
	if m := plainFieldPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
	return "", "", false
}

// cleanItem strips checkbox markers, emphasis and code ticks from a list
// item or field value.
func cleanItem(s string) string {
	s = strings.TrimSpace(s)
	s = checkboxPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**") && len(s) > 4 {
		s = s[2 : len(s)-2]
	}
	if strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`") && len(s) > 2 {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

// sectionText reduces the lines of a free-text section to a value. The
// description keeps every paragraph; other keys take the first line.
func sectionText(key string, lines []string) string {
	if key == keyDescription {
		return strings.TrimSpace(strings.Join(lines, "\n"))
	}
	for _, line := range lines {
		if line == "" {
			continue
		}
		if m := listItemPattern.FindStringSubmatch(line); m != nil {
			return cleanItem(m[1])
		}
		return cleanItem(line)
	}
	return ""
}
