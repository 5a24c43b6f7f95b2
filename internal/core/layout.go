package core

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Project layout, relative to the project root.
var (
	prdPath            = filepath.Join("specs", "PRD.md")
	constitutionPath   = filepath.Join("specs", "constitution.md")
	featuresDir        = filepath.Join("specs", "features")
	designSystemPath   = filepath.Join("specs", "design", "design-system.md")
	designTokensDir    = filepath.Join("specs", "design", "tokens")
	uxResearchPath     = filepath.Join("specs", "design", "ux-research.md")
	componentSpecsDir  = filepath.Join("specs", "design", "components")
	architectureDir    = filepath.Join("specs", "architecture")
	epicsDir           = filepath.Join("specs", "epics")
	tasksDir           = "tasks"
	statusPath         = filepath.Join("progress", "status.json")
	checkpointPath     = filepath.Join("progress", "checkpoint.json")
	qaReportPath       = filepath.Join("progress", "qa-report.json")
	reviewReportPath   = filepath.Join("progress", "review-report.json")
	metricsPath        = filepath.Join("progress", "metrics.json")
	tokenUsageDir      = filepath.Join("progress", "token-usage")
	finalReportPath    = filepath.Join("progress", "final-report.md")
	configPath         = filepath.Join("progress", "cc-config.json")
	researchProjectDir = filepath.Join("research", "project")
	researchSessionDir = filepath.Join("research", "sessions")
	e2eTestsDir        = filepath.Join("tests", "e2e")
)

// CheckpointPath returns the checkpoint file location for a project root.
func CheckpointPath(root string) string {
	return filepath.Join(root, checkpointPath)
}

// WatchedDirs returns the top-level directories whose contents feed a
// snapshot.
func WatchedDirs(root string) []string {
	return []string{
		filepath.Join(root, "specs"),
		filepath.Join(root, tasksDir),
		filepath.Join(root, "progress"),
		filepath.Join(root, "research"),
		filepath.Join(root, "tests"),
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// listFiles returns the sorted names of regular, non-hidden files directly
// inside dir that satisfy keep. A missing directory yields nil.
func listFiles(dir string, keep func(name string) bool) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if keep == nil || keep(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// listDirs returns the sorted names of non-hidden subdirectories of dir.
func listDirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func isMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}

func isJSON(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

// relPath returns path relative to root with forward slashes, or path
// unchanged when it is not under root.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// relPaths joins each name onto relDir and returns forward-slash paths.
func relPaths(relDir string, names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, filepath.ToSlash(filepath.Join(relDir, n)))
	}
	return out
}

// markdownTitle returns the first level-1 heading of a markdown file, or ""
// when the file is unreadable or has none.
func markdownTitle(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return firstHeading(splitDocument(path, string(data)))
}
