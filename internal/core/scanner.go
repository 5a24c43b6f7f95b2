package core

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// ProbeText reads an optional text document such as specs/PRD.md. It
// returns nil when the file is absent or unreadable.
func ProbeText(root, rel string) *string {
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

// ProbePRD reads specs/PRD.md.
func ProbePRD(root string) *string { return ProbeText(root, prdPath) }

// ProbeConstitution reads specs/constitution.md.
func ProbeConstitution(root string) *string { return ProbeText(root, constitutionPath) }

// ProbeDocument reports whether a single markdown document exists and
// records its first heading.
func ProbeDocument(root, rel string) models.DocumentInfo {
	full := filepath.Join(root, rel)
	if !isFile(full) {
		return models.DocumentInfo{}
	}
	return models.DocumentInfo{
		Exists: true,
		Path:   filepath.ToSlash(rel),
		Title:  markdownTitle(full),
	}
}

// ProbeUXResearch checks specs/design/ux-research.md.
func ProbeUXResearch(root string) models.DocumentInfo { return ProbeDocument(root, uxResearchPath) }

// ProbeFinalReport checks progress/final-report.md.
func ProbeFinalReport(root string) models.DocumentInfo { return ProbeDocument(root, finalReportPath) }

// ProbeFileSet lists the files directly inside a directory.
func ProbeFileSet(root, relDir string, keep func(string) bool) models.FileSetInfo {
	names := listFiles(filepath.Join(root, relDir), keep)
	files := relPaths(relDir, names)
	return models.FileSetInfo{
		Exists: len(files) > 0,
		Files:  files,
		Count:  len(files),
	}
}

// ProbeDesignTokens lists specs/design/tokens/*.
func ProbeDesignTokens(root string) models.FileSetInfo {
	return ProbeFileSet(root, designTokensDir, nil)
}

// ProbeComponentSpecs lists specs/design/components/*.md.
func ProbeComponentSpecs(root string) models.FileSetInfo {
	return ProbeFileSet(root, componentSpecsDir, isMarkdown)
}

var epicIDPattern = regexp.MustCompile(`(?i)^(EPIC-\d+)`)

// ProbeEpics lists specs/epics/*.md with their ids and titles.
func ProbeEpics(root string) models.EpicsInfo {
	dir := filepath.Join(root, epicsDir)
	names := listFiles(dir, isMarkdown)
	info := models.EpicsInfo{Epics: make([]models.Epic, 0, len(names))}
	for _, name := range names {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		id := idFromName(epicIDPattern, "EPIC-", stem)
		if id == "" {
			id = stem
		}
		title := markdownTitle(filepath.Join(dir, name))
		if title == "" {
			title = stem
		}
		info.Epics = append(info.Epics, models.Epic{
			ID:    id,
			Title: title,
			Path:  filepath.ToSlash(filepath.Join(epicsDir, name)),
		})
	}
	info.Exists = len(info.Epics) > 0
	return info
}

var e2eTestFilePattern = regexp.MustCompile(`(?i)\.(spec|test)\.[a-z0-9]+$`)

// ProbeE2ETests walks tests/e2e for *.spec.* and *.test.* files and notes
// the fixtures/ and features/ subfolders.
func ProbeE2ETests(root string) models.E2ETestsInfo {
	base := filepath.Join(root, e2eTestsDir)
	info := models.E2ETestsInfo{
		TestFiles:    []string{},
		FeatureFiles: []string{},
		HasFixtures:  isDir(filepath.Join(base, "fixtures")),
		HasFeatures:  isDir(filepath.Join(base, "features")),
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
		if strings.HasPrefix(relPath(base, path), "features/") {
			info.FeatureFiles = append(info.FeatureFiles, relPath(root, path))
		}
		if e2eTestFilePattern.MatchString(d.Name()) {
			info.TestFiles = append(info.TestFiles, relPath(root, path))
		}
		return nil
	})

	info.Exists = len(info.TestFiles) > 0
	return info
}
