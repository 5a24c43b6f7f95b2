package core

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

var (
	philosophyLabel    = `(?:design\s+)?philosophy`
	animationTierLabel = `animation\s+tier`
	animationTierLoose = regexp.MustCompile(`(?i)animation\s+tier\s*[:\-–—]?\s*([A-Za-z0-9][\w ()/+-]*)`)
)

// ProbeDesignSystem reads specs/design/design-system.md and pulls out the
// design philosophy, the animation tier and the level-2 section titles.
func ProbeDesignSystem(root string) models.DesignSystemInfo {
	full := filepath.Join(root, designSystemPath)
	data, err := os.ReadFile(full)
	if err != nil {
		return models.DesignSystemInfo{Sections: []string{}}
	}
	doc := splitDocument(full, string(data))

	info := models.DesignSystemInfo{
		Exists:     true,
		Path:       filepath.ToSlash(designSystemPath),
		Philosophy: labeledValue(doc, philosophyLabel),
		Sections:   []string{},
	}

	info.AnimationTier = labeledValue(doc, animationTierLabel)
	if info.AnimationTier == "" {
		if m := animationTierLoose.FindStringSubmatch(strings.Join(doc.body, "\n")); m != nil {
			info.AnimationTier = strings.TrimSpace(m[1])
		}
	}

	for _, line := range doc.body {
		if m := headerPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil && len(m[1]) == 2 {
			info.Sections = append(info.Sections, strings.TrimSpace(m[2]))
		}
	}
	return info
}

// labeledValue finds a value introduced by label in free text. It accepts,
// in order: a frontmatter key, a heading carrying the value ("## Design
// Philosophy: Calm"), a bold or plain field line, and a heading followed by
// its first paragraph line.
func labeledValue(doc document, label string) string {
	keyRe := regexp.MustCompile(`(?i)^\s*` + label + `\s*:\s*(.+)$`)
	for _, line := range doc.frontmatter {
		if m := keyRe.FindStringSubmatch(line); m != nil {
			return cleanItem(unquote(strings.TrimSpace(m[1])))
		}
	}

	headingWithValue := regexp.MustCompile(`(?i)^#{1,6}\s*(?:\d+\.\s*)?` + label + `\s*[:\-–—]\s*(.+)$`)
	boldField := regexp.MustCompile(`(?i)^(?:[-*+]\s+)?\*\*` + label + `:?\*\*\s*:?\s*(.+)$`)
	plainField := regexp.MustCompile(`(?i)^(?:[-*+]\s+)?` + label + `\s*:\s*(.+)$`)
	headingOnly := regexp.MustCompile(`(?i)^#{1,6}\s*(?:\d+\.\s*)?` + label + `\s*$`)

	for _, raw := range doc.body {
		line := strings.TrimSpace(raw)
		for _, re := range []*regexp.Regexp{headingWithValue, boldField, plainField} {
			if m := re.FindStringSubmatch(line); m != nil {
				return cleanItem(m[1])
			}
		}
	}

	for i, raw := range doc.body {
		if !headingOnly.MatchString(strings.TrimSpace(raw)) {
			continue
		}
		for _, next := range doc.body[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" {
				continue
			}
			if strings.HasPrefix(next, "#") {
				return ""
			}
			if m := listItemPattern.FindStringSubmatch(next); m != nil {
				return cleanItem(m[1])
			}
			return cleanItem(strings.Trim(next, "*_"))
		}
	}
	return ""
}
