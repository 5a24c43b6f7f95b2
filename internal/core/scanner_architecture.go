package core

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

var (
	adrNamePattern     = regexp.MustCompile(`(?i)^(adr|decision)[-_ ]?\d*|^\d{3,4}[-_]`)
	diagramNamePattern = regexp.MustCompile(`(?i)(diagram|^c4[-_]|[-_]c4$|sequence|topology)`)
	overviewNames      = map[string]bool{
		"overview":        true,
		"readme":          true,
		"index":           true,
		"architecture":    true,
		"system-overview": true,
		"system-design":   true,
	}
	adrDirNames     = map[string]bool{"adr": true, "adrs": true, "decisions": true, "decision-records": true}
	diagramDirNames = map[string]bool{"diagram": true, "diagrams": true, "c4": true}
	overviewDirs    = map[string]bool{"overview": true, "overviews": true}
)

// ProbeArchitecture walks specs/architecture at any depth and classifies
// every markdown file as overview, adr, diagram or generic.
func ProbeArchitecture(root string) models.ArchitectureInfo {
	base := filepath.Join(root, architectureDir)
	info := models.ArchitectureInfo{
		Docs: []models.ArchitectureDoc{},
		Counts: map[models.ArchitectureDocKind]int{
			models.ArchOverview: 0,
			models.ArchADR:      0,
			models.ArchDiagram:  0,
			models.ArchGeneric:  0,
		},
	}
	if !isDir(base) {
		return info
	}

	_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isMarkdown(d.Name()) {
			return nil
		}
		kind := ClassifyArchitectureDoc(relPath(base, path))
		info.Docs = append(info.Docs, models.ArchitectureDoc{
			Path:  relPath(root, path),
			Title: markdownTitle(path),
			Kind:  kind,
		})
		info.Counts[kind]++
		return nil
	})

	info.Exists = len(info.Docs) > 0
	return info
}

// ClassifyArchitectureDoc classifies a path relative to specs/architecture.
// The filename is checked first, then the enclosing directories from the
// nearest outwards.
func ClassifyArchitectureDoc(rel string) models.ArchitectureDocKind {
	rel = filepath.ToSlash(rel)
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel)))

	switch {
	case adrNamePattern.MatchString(name):
		return models.ArchADR
	case diagramNamePattern.MatchString(name):
		return models.ArchDiagram
	case overviewNames[name] || strings.Contains(name, "overview"):
		return models.ArchOverview
	}

	parts := strings.Split(rel, "/")
	for i := len(parts) - 2; i >= 0; i-- {
		dir := strings.ToLower(parts[i])
		switch {
		case adrDirNames[dir]:
			return models.ArchADR
		case diagramDirNames[dir]:
			return models.ArchDiagram
		case overviewDirs[dir]:
			return models.ArchOverview
		}
	}
	return models.ArchGeneric
}
