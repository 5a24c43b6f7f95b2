package core

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// fieldSource is one document encoding strategy.
type fieldSource interface {
	encoding() encoding
	extract(doc document) docFields
}

// fieldSources lists the strategies in priority order. Fields set by an
// earlier source are never overwritten by a later one.
var fieldSources = []fieldSource{frontmatterSource{}, legacySource{}}

// extractFields runs every strategy over the document and merges the
// results by priority.
func extractFields(doc document) docFields {
	merged := newDocFields()
	for _, src := range fieldSources {
		merged.fillFrom(src.extract(doc))
	}
	return merged
}

var (
	taskIDPattern      = regexp.MustCompile(`(?i)^(TASK-\d+)`)
	featureIDPattern   = regexp.MustCompile(`(?i)^(FTR-\d+)`)
	headingFeatureID   = regexp.MustCompile(`(?i)\b(FTR-\d+)\b`)
	dependencyIDsRegex = regexp.MustCompile(`(?i)\bTASK-\d+\b`)
	// The id prefix is tried first so "TASK-003: x" is not read as a
	// "Task-" kind prefix.
	titlePrefixes      = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:TASK|FTR|EPIC)-\d+[A-Za-z0-9]*\s*[:\-–—]?\s*`),
		regexp.MustCompile(`(?i)^(?:task|feature|spec|specification|epic|story)\s*(?::|\s[\-–—])\s*`),
	}
)

// ParseTask reads and parses a task document. It returns nil when the file
// cannot be read or when no task id can be resolved.
func ParseTask(path string) *models.Task {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return ParseTaskContent(path, string(data))
}

// ParseTaskContent parses task document text. path is used for the
// filename id fallback and recorded as the task's source.
func ParseTaskContent(path, content string) *models.Task {
	doc := splitDocument(path, content)
	fields := extractFields(doc)

	id := fields.scalar(keyID)
	if id == "" {
		id = idFromName(taskIDPattern, "TASK-", strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	if id == "" {
		return nil
	}

	title := fields.scalar(keyTitle)
	if title == "" {
		title = fields.scalar(keyName)
	}
	if title == "" {
		title = headingTitle(doc)
	}
	if title == "" {
		title = id
	}

	return &models.Task{
		ID:                 id,
		Title:              title,
		FeatureID:          fields.scalar(keyFeature),
		Type:               fields.scalar(keyType),
		Priority:           fields.scalar(keyPriority),
		Status:             NormalizeTaskStatus(fields.scalar(keyStatus)),
		EstimatedEffort:    fields.scalar(keyEffort),
		Description:        fields.scalar(keyDescription),
		AcceptanceCriteria: fields.list(keyAcceptance),
		Dependencies:       normalizeDependencies(fields.list(keyDependencies)),
		SourcePath:         path,
	}
}

// ParseFeature reads and parses specs/features/<dir>/spec.md. When the file
// cannot be read the feature falls back to its folder-derived id; nil is
// returned only when no id resolves at all.
func ParseFeature(path string) *models.Feature {
	data, err := os.ReadFile(path)
	if err != nil {
		id := featureIDFromDir(path)
		if id == "" {
			return nil
		}
		f := &models.Feature{ID: id, Name: id, UserStories: []string{}, SourcePath: path}
		attachDesignSpec(f, path)
		return f
	}
	return ParseFeatureContent(path, string(data))
}

// ParseFeatureContent parses feature document text.
func ParseFeatureContent(path, content string) *models.Feature {
	doc := splitDocument(path, content)
	fields := extractFields(doc)

	id := fields.scalar(keyID)
	if id == "" {
		if ref := fields.scalar(keyFeature); featureIDPattern.MatchString(ref) {
			id = ref
		}
	}
	if id == "" {
		if h := firstHeading(doc); h != "" {
			if m := headingFeatureID.FindStringSubmatch(h); m != nil {
				id = strings.ToUpper(m[1])
			}
		}
	}
	if id == "" {
		id = featureIDFromDir(path)
	}
	if id == "" {
		return nil
	}

	name := fields.scalar(keyName)
	if name == "" {
		name = fields.scalar(keyTitle)
	}
	if name == "" {
		name = headingTitle(doc)
	}
	if name == "" {
		name = id
	}

	f := &models.Feature{
		ID:          id,
		Name:        name,
		Status:      strings.ToLower(fields.scalar(keyStatus)),
		Priority:    fields.scalar(keyPriority),
		Description: fields.scalar(keyDescription),
		UserStories: fields.list(keyUserStories),
		SourcePath:  path,
	}
	attachDesignSpec(f, path)
	return f
}

// attachDesignSpec records a sibling design-spec.md if one exists.
func attachDesignSpec(f *models.Feature, specPath string) {
	designPath := filepath.Join(filepath.Dir(specPath), "design-spec.md")
	if info, err := os.Stat(designPath); err == nil && !info.IsDir() {
		f.HasDesignSpec = true
		f.DesignSpecPath = designPath
	}
}

// NormalizeTaskStatus maps the many inline spellings onto the four task
// states. Unknown or empty values are pending.
func NormalizeTaskStatus(s string) models.TaskStatus {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	switch norm {
	case "completed", "complete", "done", "finished", "verified", "closed":
		return models.StatusCompleted
	case "active", "in progress", "inprogress", "started", "wip", "doing", "review", "in review":
		return models.StatusActive
	case "blocked", "on hold", "waiting":
		return models.StatusBlocked
	default:
		return models.StatusPending
	}
}

// idFromName derives an id from a file or folder name: "TASK-012-login"
// becomes "TASK-012"; a prefixed name without digits is used whole.
func idFromName(pattern *regexp.Regexp, prefix, name string) string {
	if m := pattern.FindStringSubmatch(name); m != nil {
		return strings.ToUpper(m[1])
	}
	if len(name) > len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
		return prefix + name[len(prefix):]
	}
	return ""
}

func featureIDFromDir(specPath string) string {
	dir := filepath.Base(filepath.Dir(specPath))
	return idFromName(featureIDPattern, "FTR-", dir)
}

// firstHeading returns the text of the first level-1 heading in the body.
func firstHeading(doc document) string {
	for _, line := range doc.body {
		line = strings.TrimSpace(line)
		if m := headerPattern.FindStringSubmatch(line); m != nil && len(m[1]) == 1 {
			return strings.TrimSpace(m[2])
		}
	}
	return ""
}

// headingTitle returns the first level-1 heading with id and kind prefixes
// stripped.
func headingTitle(doc document) string {
	title := firstHeading(doc)
	for changed := true; changed && title != ""; {
		changed = false
		for _, p := range titlePrefixes {
			if stripped := p.ReplaceAllString(title, ""); stripped != title {
				title = strings.TrimSpace(stripped)
				changed = true
			}
		}
	}
	return title
}

// normalizeDependencies reduces dependency items to task ids where the
// item mentions any, keeping free-text items as written.
func normalizeDependencies(items []string) []string {
	deps := make([]string, 0, len(items))
	for _, item := range items {
		if isNoneMarker(item) {
			continue
		}
		ids := dependencyIDsRegex.FindAllString(item, -1)
		if len(ids) == 0 {
			deps = append(deps, item)
			continue
		}
		for _, id := range ids {
			deps = append(deps, strings.ToUpper(id))
		}
	}
	return deps
}
