package core

import (
	"path/filepath"
	"regexp"
	"time"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// sessionNamePattern matches <TYPE>-<YYYYMMDDhhmmss>.
var sessionNamePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*?)-(\d{14})$`)

const sessionTimestampLayout = "20060102150405"

// ProbeResearch lists research/project files and research/sessions folders.
func ProbeResearch(root string) models.ResearchInfo {
	info := models.ResearchInfo{
		ProjectFiles: relPaths(researchProjectDir, listFiles(filepath.Join(root, researchProjectDir), nil)),
		Sessions:     []models.ResearchSession{},
	}

	sessionsBase := filepath.Join(root, researchSessionDir)
	for _, name := range listDirs(sessionsBase) {
		s := ParseResearchSessionName(name)
		rel := filepath.Join(researchSessionDir, name)
		s.Path = filepath.ToSlash(rel)
		s.Files = relPaths(rel, listFiles(filepath.Join(sessionsBase, name), nil))
		info.Sessions = append(info.Sessions, s)
	}

	info.Exists = len(info.ProjectFiles) > 0 || len(info.Sessions) > 0
	return info
}

// ParseResearchSessionName splits a session folder name into id, type and
// timestamp. Names that do not follow the convention keep the folder name
// as id with type UNKNOWN and a zero timestamp.
func ParseResearchSessionName(name string) models.ResearchSession {
	s := models.ResearchSession{ID: name, Type: models.ResearchTypeUnknown, Files: []string{}}
	m := sessionNamePattern.FindStringSubmatch(name)
	if m == nil {
		return s
	}
	s.Type = m[1]
	if ts, err := time.ParseInLocation(sessionTimestampLayout, m[2], time.UTC); err == nil {
		s.Timestamp = ts
	}
	return s
}
